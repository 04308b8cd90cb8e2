package shelf

import (
	"math/bits"

	"github.com/five82/shelf/internal/booktracker"
)

// Progress returns round(100*pagesRead/totalPages) as a whole percentage.
// pagesRead is clamped to [0, totalPages] first and a non-positive total
// yields 0. Halves round up.
func Progress(pagesRead, totalPages int) int {
	if totalPages <= 0 {
		return 0
	}
	p := uint64(min(max(pagesRead, 0), totalPages))
	t := uint64(totalPages)
	// (200p + t) / 2t in 128 bits; the quotient is at most 100.
	hi, lo := bits.Mul64(p, 200)
	lo, carry := bits.Add64(lo, t, 0)
	q, _ := bits.Div64(hi+carry, lo, 2*t)
	return int(q)
}

// BookProgress is Progress applied to a book's page counters.
func BookProgress(b booktracker.Book) int {
	return Progress(b.PagesRead, b.TotalPages)
}
