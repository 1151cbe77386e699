// Package enrich derives secondary attributes for quotations: topical
// categories from keyword matching and translations via an external service.
package enrich

import (
	"sort"
	"strings"
)

// categoryKeywords maps a category to its trigger words in both harvest
// languages. Matching is on lowercased whole text, substring semantics.
var categoryKeywords = map[string][]string{
	"wisdom":     {"wisdom", "wise", "knowledge", "truth", "мудрость", "мудрый", "знание", "истина"},
	"life":       {"life", "live", "living", "жизнь", "жить", "живи"},
	"success":    {"success", "achieve", "goal", "успех", "достичь", "цель"},
	"love":       {"love", "heart", "любовь", "сердце", "любить"},
	"work":       {"work", "labor", "effort", "работа", "труд", "усилие"},
	"time":       {"time", "moment", "hour", "время", "момент", "час"},
	"friendship": {"friend", "friendship", "друг", "дружба"},
	"courage":    {"courage", "brave", "fear", "смелость", "храбрость", "страх"},
	"happiness":  {"happiness", "happy", "joy", "счастье", "счастлив", "радость"},
	"philosophy": {"philosophy", "soul", "mind", "философия", "душа", "разум"},
}

// Categorize tags a quotation with every category whose keywords appear in
// it, falling back to "general" when nothing matches. The result is sorted
// so repeated runs store identical arrays.
func Categorize(text string) []string {
	lower := strings.ToLower(text)
	var cats []string
	for cat, words := range categoryKeywords {
		for _, w := range words {
			if strings.Contains(lower, w) {
				cats = append(cats, cat)
				break
			}
		}
	}
	if len(cats) == 0 {
		return []string{"general"}
	}
	sort.Strings(cats)
	return cats
}
