package store

import (
	"sort"

	"github.com/Protocol-Lattice/go-assistant/src/memory/model"
)

// rankByScore sorts records by descending similarity score in place.
func rankByScore(records []model.Record) {
	sort.Slice(records, func(i, j int) bool { return records[i].Score > records[j].Score })
}
