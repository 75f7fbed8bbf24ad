// Package freq builds the flat report: how often each enter location text
// occurs in the log.
package freq

import (
	"sort"

	"github.com/mattn/go-runewidth"
)

// Row is one line of the flat report.
type Row struct {
	Location   string `json:"location" yaml:"location" msgpack:"location"`
	Count      int    `json:"count" yaml:"count" msgpack:"count"`
	Cumulative int    `json:"cumulative" yaml:"cumulative" msgpack:"cumulative"`
}

// Table is the sorted flat report.
type Table struct {
	Rows  []Row
	Total int
	// MaxWidth is the display width of the widest location text.
	MaxWidth int
}

// Counter tallies location texts verbatim. The zero value is ready to use.
type Counter struct {
	counts map[string]int
	total  int
}

// Add records one occurrence of fragment.
func (c *Counter) Add(fragment string) {
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	c.counts[fragment]++
	c.total++
}

// Total returns the number of recorded occurrences.
func (c *Counter) Total() int { return c.total }

// Distinct returns the number of distinct texts.
func (c *Counter) Distinct() int { return len(c.counts) }

// Table returns the rows sorted by count descending, then by text, with a
// running cumulative count.
func (c *Counter) Table() Table {
	t := Table{Rows: make([]Row, 0, len(c.counts)), Total: c.total}
	for loc, n := range c.counts {
		t.Rows = append(t.Rows, Row{Location: loc, Count: n})
	}
	sort.Slice(t.Rows, func(i, j int) bool {
		if t.Rows[i].Count != t.Rows[j].Count {
			return t.Rows[i].Count > t.Rows[j].Count
		}
		return t.Rows[i].Location < t.Rows[j].Location
	})
	cum := 0
	for i := range t.Rows {
		cum += t.Rows[i].Count
		t.Rows[i].Cumulative = cum
		if w := runewidth.StringWidth(t.Rows[i].Location); w > t.MaxWidth {
			t.MaxWidth = w
		}
	}
	return t
}
