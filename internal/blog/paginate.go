package blog

import (
	"errors"
	"strconv"
	"strings"
)

// DefaultPageSize is the number of posts per listing page.
const DefaultPageSize = 10

// LastPage asks Paginate for the final page.
const LastPage = -1

// ErrInvalidPage is returned for page numbers that are not numbers or fall outside the
// listing. Listings answer it with 404.
var ErrInvalidPage = errors.New("invalid page")

// ParsePageNumber reads the ?page= query value: empty means 1, "last" means LastPage.
func ParsePageNumber(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	switch raw {
	case "":
		return 1, nil
	case "last":
		return LastPage, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, ErrInvalidPage
	}
	return n, nil
}

// Page is one window of a listing.
type Page struct {
	Number   int
	Size     int
	Total    int64
	NumPages int
}

// Paginate resolves number against a listing of total items. Page 1 always exists, even
// for an empty listing.
func Paginate(number, size int, total int64) (Page, error) {
	if size <= 0 {
		size = DefaultPageSize
	}
	numPages := int((total + int64(size) - 1) / int64(size))
	if numPages < 1 {
		numPages = 1
	}
	if number == LastPage {
		number = numPages
	}
	if number < 1 || number > numPages {
		return Page{}, ErrInvalidPage
	}
	return Page{Number: number, Size: size, Total: total, NumPages: numPages}, nil
}

// Offset is the number of items before this page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

func (p Page) HasPrevious() bool { return p.Number > 1 }
func (p Page) HasNext() bool     { return p.Number < p.NumPages }
func (p Page) HasOtherPages() bool {
	return p.HasPrevious() || p.HasNext()
}
func (p Page) PreviousNumber() int { return p.Number - 1 }
func (p Page) NextNumber() int     { return p.Number + 1 }

// Range lists page numbers around the current one for navigation, at most width each side.
func (p Page) Range(width int) []int {
	lo, hi := p.Number-width, p.Number+width
	if lo < 1 {
		lo = 1
	}
	if hi > p.NumPages {
		hi = p.NumPages
	}
	out := make([]int, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		out = append(out, i)
	}
	return out
}
