package service

import "errors"

// LastPage asks a listing for its final page.
const LastPage = -1

// ErrPageOutOfRange is returned when a listing is asked for a page it does not have.
var ErrPageOutOfRange = errors.New("page out of range")

// Page describes one page of a listing.
type Page struct {
	Number     int
	PerPage    int
	Total      int64
	TotalPages int
}

// HasPrevious reports whether a page precedes this one.
func (p Page) HasPrevious() bool { return p.Number > 1 }

// HasNext reports whether a page follows this one.
func (p Page) HasNext() bool { return p.Number < p.TotalPages }

// Previous returns the previous page number.
func (p Page) Previous() int { return p.Number - 1 }

// Next returns the next page number.
func (p Page) Next() int { return p.Number + 1 }

// Offset is the number of rows skipped before this page.
func (p Page) Offset() int { return (p.Number - 1) * p.PerPage }

// resolvePage validates the requested page number against total rows.
// An empty listing still has a first page.
func resolvePage(requested, perPage int, total int64) (Page, error) {
	perPage = normalizePerPage(perPage, 10)
	p := Page{
		PerPage:    perPage,
		Total:      total,
		TotalPages: calculateTotalPages(total, perPage),
	}

	switch {
	case requested == LastPage:
		p.Number = p.TotalPages
	case requested < 1 || requested > p.TotalPages:
		return p, ErrPageOutOfRange
	default:
		p.Number = requested
	}
	return p, nil
}

func normalizePerPage(perPage, fallback int) int {
	if perPage <= 0 {
		return fallback
	}
	return perPage
}

func calculateTotalPages(total int64, perPage int) int {
	if total == 0 {
		return 1
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}
