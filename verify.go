package pagepdf

import (
	"bytes"
	"fmt"

	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/pagetree"
)

// countPages parses a PDF and returns its page count.
func countPages(data []byte) (int, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), nil)
	if err != nil {
		return 0, fmt.Errorf("%w: unreadable PDF: %v", ErrIncompletePagination, err)
	}
	defer r.Close()

	n, err := pagetree.NumPages(r)
	if err != nil {
		return 0, fmt.Errorf("%w: reading page tree: %v", ErrIncompletePagination, err)
	}
	return n, nil
}

// verifyPageCount checks that data parses and holds want pages. A want of
// zero only requires at least one page.
func verifyPageCount(data []byte, want int) (int, error) {
	got, err := countPages(data)
	if err != nil {
		return 0, err
	}
	if got == 0 || (want > 0 && got != want) {
		return got, fmt.Errorf("%w: expected %d pages, found %d", ErrIncompletePagination, want, got)
	}
	return got, nil
}
