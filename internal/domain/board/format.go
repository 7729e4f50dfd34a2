package board

import (
	"fmt"
	"math"
	"strconv"

	"github.com/okian/lineup/internal/domain/model"
)

// FormatRating renders a rating with the fewest digits that round-trip,
// so 5 prints as "5" and 3.5 as "3.5".
func FormatRating(r float64) string {
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// CardLabel renders a numbered team card.
func CardLabel(ordinal int, e model.PlayerEntry) string {
	return fmt.Sprintf("%d. %s (%s) - %s", ordinal, e.Name, e.Position, FormatRating(e.Rating))
}

// BenchLabel renders an unnumbered bench card.
func BenchLabel(e model.PlayerEntry) string {
	return fmt.Sprintf("%s (%s) - %s", e.Name, e.Position, FormatRating(e.Rating))
}

// HeaderLabel renders a team header with the total to one decimal place.
func HeaderLabel(label string, total float64) string {
	return fmt.Sprintf("%s (Total: %s)", label, FormatTotal(total))
}

// FormatTotal renders total with one decimal. The nearest value wins; an
// exact tie such as 6.25 rounds away from zero.
func FormatTotal(total float64) string {
	scaled := total * 10
	// scaled is exact only when the FMA residual is zero; otherwise the
	// correctly rounded 'f' formatting below already picks the nearest digit.
	if math.FMA(total, 10, -scaled) == 0 && math.Abs(scaled-math.Trunc(scaled)) == 0.5 {
		total = math.Round(scaled) / 10
	}
	return strconv.FormatFloat(total, 'f', 1, 64)
}
