package retrieval

import (
	"cmp"
	"slices"

	"github.com/roman-kulish/gnss-reflectometry/internal/gnss"
	"github.com/roman-kulish/gnss-reflectometry/internal/snr"
)

// passes returns the rows of satellite sat grouped into passes. Rows are
// ordered by time and a gap longer than maxGap seconds starts a new pass.
func passes(b *snr.Batch, sat gnss.SatID, maxGap float64) [][]int {
	rows := b.Rows(sat)
	slices.SortStableFunc(rows, func(i, j int) int {
		return cmp.Compare(b.Seconds[i], b.Seconds[j])
	})

	var out [][]int
	start := 0
	for k := 1; k <= len(rows); k++ {
		if k == len(rows) || b.Seconds[rows[k]]-b.Seconds[rows[k-1]] > maxGap {
			out = append(out, rows[start:k])
			start = k
		}
	}
	return out
}
