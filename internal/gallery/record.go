// Package gallery holds the client-side ordering model for one user's images:
// the in-memory store, the reorder engine, the paginated view and the drag
// gesture that ties them together.
package gallery

import "sort"

// Record is one user-owned gallery entry as returned by the images API.
type Record struct {
	ID           uint   `json:"id"`
	Title        string `json:"title"`
	ImageURL     string `json:"imageUrl"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
	UserID       uint   `json:"userId"`
	Order        int    `json:"order"`
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
}

// OrderEntry is one element of the bulk order payload.
type OrderEntry struct {
	ID    uint `json:"id"`
	Order int  `json:"order"`
}

// OrderEntries maps a display sequence to id/position pairs. The order values
// are always the permutation 0..len(seq)-1 in sequence order.
func OrderEntries(seq []Record) []OrderEntry {
	entries := make([]OrderEntry, 0, len(seq))
	for index, record := range seq {
		entries = append(entries, OrderEntry{ID: record.ID, Order: index})
	}
	return entries
}

// SortByOrder returns a copy of records sorted by Order ascending. Ties keep
// the order in which the source returned them.
func SortByOrder(records []Record) []Record {
	sorted := clone(records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Order < sorted[j].Order
	})
	return sorted
}

func clone(seq []Record) []Record {
	out := make([]Record, len(seq))
	copy(out, seq)
	return out
}
