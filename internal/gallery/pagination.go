package gallery

// DefaultPageSize is used when a store is created without a usable size.
const DefaultPageSize = 12

// PageCount returns how many pages of size pageSize cover total records.
// An empty collection still has one (empty) page.
func PageCount(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}

// PageStart is the global index of the first slot of page (1-indexed).
func PageStart(page, pageSize int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * pageSize
}

// PageBounds returns the half-open range [start, end) of global indices shown
// on page, clipped to total.
func PageBounds(page, pageSize, total int) (int, int) {
	start := PageStart(page, pageSize)
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return start, end
}

// PageOf returns the 1-indexed page that shows the record at index.
func PageOf(index, pageSize int) int {
	if pageSize <= 0 || index < 0 {
		return 1
	}
	return index/pageSize + 1
}
