package pipeline

import (
	"encoding/json"

	"github.com/matzehuels/techradar/pkg/cache"
	radario "github.com/matzehuels/techradar/pkg/io"
	"github.com/matzehuels/techradar/pkg/radar"
)

// Selection is the input of the layout stage: the chart configuration and
// the items left after filtering.
type Selection struct {
	Config   radar.Config
	Items    []radar.Item
	Skipped  int
	Filtered int
}

// Select applies the company filter to def.
func Select(def *radario.Definition, companies []string) Selection {
	items := radar.FilterCompanies(def.Items, companies)
	return Selection{
		Config:   def.Config,
		Items:    items,
		Skipped:  def.Skipped,
		Filtered: len(def.Items) - len(items),
	}
}

// Hash returns the content hash of the selection. Two selections with the
// same hash lay out identically under the same options.
func (s Selection) Hash() string {
	data, _ := json.Marshal(struct {
		Config radar.Config `json:"config"`
		Items  []radar.Item `json:"items"`
	}{s.Config, s.Items})
	return cache.Hash(data)
}
