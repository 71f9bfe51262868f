// Package rating maintains the (average, count) rating pair for a
// professional. The pair is the source of truth exposed to listings; the
// underlying reviews remain available for recomputation.
package rating

import (
	"math"

	"github.com/vagadeeshwar/household-services-sub000/platform/apperr"
)

// MinRating and MaxRating bound the accepted review scores.
const (
	MinRating = 1
	MaxRating = 5
)

// Aggregate is the running (average, count) pair for one professional.
// Average carries full float precision everywhere, including on the
// professional row; rounding to one decimal happens only where the value
// is presented, via Rounded.
type Aggregate struct {
	Average float64
	Count   int
}

// Add folds a new rating into the aggregate.
func (a Aggregate) Add(rating int) (Aggregate, error) {
	if rating < MinRating || rating > MaxRating {
		return a, apperr.Validation("rating must be between 1 and 5")
	}
	total := a.Average*float64(a.Count) + float64(rating)
	next := Aggregate{Count: a.Count + 1}
	next.Average = total / float64(next.Count)
	return next, nil
}

// Remove subtracts a previously counted rating from the aggregate.
// Removing from an empty aggregate is a caller bug and returns an error.
// When the last rating is removed the pair resets to (0, 0).
func (a Aggregate) Remove(rating int) (Aggregate, error) {
	if rating < MinRating || rating > MaxRating {
		return a, apperr.Validation("rating must be between 1 and 5")
	}
	if a.Count == 0 {
		return a, apperr.Conflict("no ratings to remove")
	}
	if a.Count == 1 {
		return Aggregate{}, nil
	}
	total := a.Average*float64(a.Count) - float64(rating)
	next := Aggregate{Count: a.Count - 1}
	next.Average = total / float64(next.Count)
	return next, nil
}

// Rounded returns the average rounded to one decimal place, the precision
// shown in listings. The stored average keeps full precision; feeding a
// rounded value back into Add or Remove compounds the error.
func (a Aggregate) Rounded() float64 {
	return math.Round(a.Average*10) / 10
}

// FromRatings recomputes the aggregate from scratch. Used to cross-check
// the running pair against the surviving review set.
func FromRatings(ratings []int) Aggregate {
	if len(ratings) == 0 {
		return Aggregate{}
	}
	var total float64
	for _, r := range ratings {
		total += float64(r)
	}
	return Aggregate{Average: total / float64(len(ratings)), Count: len(ratings)}
}
