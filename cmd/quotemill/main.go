package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	var root = &cobra.Command{Use: "quotemill"}

	root.AddCommand(runCMD(), migrateCMD(), serveCMD(), searchCMD())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
