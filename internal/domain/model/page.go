package model

// NoLimit disables truncation in a Page.
const NoLimit int64 = -1

// Page selects a contiguous window of the natural record order.
type Page struct {
	Offset int64
	Limit  int64
}

// AllPages is the default listing window: everything from the start.
func AllPages() Page {
	return Page{Offset: 0, Limit: NoLimit}
}

// Bounded reports whether the page truncates results.
func (p Page) Bounded() bool {
	return p.Limit >= 0
}

// Window returns the [start, end) slice bounds of p over total records.
func (p Page) Window(total int) (int, int) {
	start := int(p.Offset)
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := total
	if p.Bounded() && p.Limit < int64(total-start) {
		end = start + int(p.Limit)
	}
	return start, end
}
