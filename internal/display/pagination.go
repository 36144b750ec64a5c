package display

// Ellipsis marks a gap in a pagination window.
const Ellipsis = -1

// PageWindow computes the page links to render under the user table:
// the first and last page, the current page with two neighbors on each side,
// and Ellipsis markers for the gaps. Pages are zero-based; a non-positive
// page count yields an empty window.
func PageWindow(current, totalPages int) []int {
	if totalPages <= 0 {
		return nil
	}
	if current < 0 {
		current = 0
	}
	if current >= totalPages {
		current = totalPages - 1
	}

	// Small enough to show everything.
	if totalPages <= 7 {
		pages := make([]int, totalPages)
		for i := range pages {
			pages[i] = i
		}
		return pages
	}

	lo := current - 2
	hi := current + 2
	if lo < 1 {
		lo = 1
	}
	if hi > totalPages-2 {
		hi = totalPages - 2
	}

	pages := []int{0}
	if lo > 1 {
		pages = append(pages, Ellipsis)
	}
	for i := lo; i <= hi; i++ {
		pages = append(pages, i)
	}
	if hi < totalPages-2 {
		pages = append(pages, Ellipsis)
	}
	return append(pages, totalPages-1)
}

// PageCount returns the number of pages needed for total items at the given
// page size.
func PageCount(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
