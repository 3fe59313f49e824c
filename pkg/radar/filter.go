package radar

import (
	"strings"

	"github.com/samber/lo"
)

// FilterCompanies keeps the items used by at least one of companies.
// An empty selection keeps everything. Matching ignores case.
func FilterCompanies(items []Item, companies []string) []Item {
	if len(companies) == 0 {
		return items
	}
	want := lo.SliceToMap(companies, func(c string) (string, struct{}) {
		return strings.ToLower(strings.TrimSpace(c)), struct{}{}
	})
	return lo.Filter(items, func(it Item, _ int) bool {
		return lo.SomeBy(it.Companies, func(c string) bool {
			_, ok := want[strings.ToLower(c)]
			return ok
		})
	})
}
