package harvest

import "errors"

// Failure classes for the harvester protocol. All of them are acceptable
// source failures at the pipeline level: they end or narrow a harvest, never
// abort the run.
var (
	// ErrUnavailable: no endpoint variant answered the probe.
	ErrUnavailable = errors.New("source unavailable")

	// ErrNotFound: the page does not exist at any URL variant.
	ErrNotFound = errors.New("page not found")

	// ErrRateLimited: the source signalled too-many-requests twice for the
	// same unit of work.
	ErrRateLimited = errors.New("rate limited")

	// ErrStructureChanged: pages load but yield no extractable elements.
	ErrStructureChanged = errors.New("site structure changed")
)

// Early-stop reasons recorded on a HarvestRun.
const (
	StopUnavailable      = "unavailable"
	StopNotFound         = "not-found"
	StopStructureChanged = "structure-changed"
	StopNoContent        = "no-content"
	StopBudget           = "budget-exhausted"
)
