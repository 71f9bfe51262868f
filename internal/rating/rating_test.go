package rating

import (
	"math"
	"testing"
)

func TestAddMatchesGroundTruth(t *testing.T) {
	ratings := []int{5, 3, 4, 4, 1, 5, 2, 3, 5, 4}

	var agg Aggregate
	var err error
	live := make([]int, 0, len(ratings))
	for _, r := range ratings {
		agg, err = agg.Add(r)
		if err != nil {
			t.Fatalf("Add(%d) returned error: %v", r, err)
		}
		live = append(live, r)

		truth := FromRatings(live)
		if agg.Count != truth.Count {
			t.Fatalf("count = %d, want %d", agg.Count, truth.Count)
		}
		if math.Abs(agg.Average-truth.Average) > 1e-9 {
			t.Fatalf("average = %v, want %v after %d ratings", agg.Average, truth.Average, len(live))
		}
	}
}

func TestRemoveMatchesGroundTruth(t *testing.T) {
	ratings := []int{5, 3, 4, 4, 1, 5}

	var agg Aggregate
	var err error
	for _, r := range ratings {
		if agg, err = agg.Add(r); err != nil {
			t.Fatalf("Add(%d): %v", r, err)
		}
	}

	// Remove in a different order than inserted.
	removeOrder := []int{4, 5, 1, 3, 5, 4}
	live := map[int]int{1: 1, 3: 1, 4: 2, 5: 2}
	for _, r := range removeOrder {
		if agg, err = agg.Remove(r); err != nil {
			t.Fatalf("Remove(%d): %v", r, err)
		}
		live[r]--

		var flat []int
		for v, n := range live {
			for i := 0; i < n; i++ {
				flat = append(flat, v)
			}
		}
		truth := FromRatings(flat)
		if agg.Count != truth.Count {
			t.Fatalf("count = %d, want %d", agg.Count, truth.Count)
		}
		if math.Abs(agg.Average-truth.Average) > 1e-9 {
			t.Fatalf("average = %v, want %v", agg.Average, truth.Average)
		}
	}

	if agg.Count != 0 || agg.Average != 0 {
		t.Fatalf("empty aggregate = %+v, want (0, 0)", agg)
	}
}

func TestAddRejectsOutOfRange(t *testing.T) {
	var agg Aggregate
	for _, r := range []int{0, -1, 6, 100} {
		if _, err := agg.Add(r); err == nil {
			t.Errorf("Add(%d) accepted out-of-range rating", r)
		}
	}
}

func TestRemoveFromEmptyFails(t *testing.T) {
	var agg Aggregate
	if _, err := agg.Remove(3); err == nil {
		t.Fatal("Remove on empty aggregate should fail")
	}
}

// The aggregate round-trips through a stored (average, count) pair between
// every update, exactly as the professional row persists it. Storing the
// rounded average instead would drift from the ground-truth mean within a
// handful of operations (e.g. [1,2,1,1] stores 1.2 where the true mean
// 1.25 rounds to 1.3).
func TestAggregateSurvivesStorageRoundTrip(t *testing.T) {
	ops := []struct {
		rating int
		add    bool
	}{
		{1, true}, {2, true}, {1, true}, {1, true},
		{3, true}, {2, false}, {5, true}, {4, true},
		{1, false}, {5, true}, {3, false}, {2, true},
	}

	var stored Aggregate
	var live []int
	for i, op := range ops {
		// Read back what the row holds, update, store again.
		agg := Aggregate{Average: stored.Average, Count: stored.Count}
		var err error
		if op.add {
			agg, err = agg.Add(op.rating)
			live = append(live, op.rating)
		} else {
			agg, err = agg.Remove(op.rating)
			for j, r := range live {
				if r == op.rating {
					live = append(live[:j], live[j+1:]...)
					break
				}
			}
		}
		if err != nil {
			t.Fatalf("op %d: %v", i, err)
		}
		stored = agg

		truth := FromRatings(live)
		if stored.Count != truth.Count {
			t.Fatalf("op %d: count = %d, want %d", i, stored.Count, truth.Count)
		}
		if math.Abs(stored.Average-truth.Average) > 1e-9 {
			t.Fatalf("op %d: stored average %v drifted from ground truth %v", i, stored.Average, truth.Average)
		}
		if stored.Rounded() != truth.Rounded() {
			t.Fatalf("op %d: presented average %v, want %v", i, stored.Rounded(), truth.Rounded())
		}
	}
}

func TestRounded(t *testing.T) {
	tests := []struct {
		ratings []int
		want    float64
	}{
		{[]int{5, 4}, 4.5},
		{[]int{5, 4, 4}, 4.3},  // 4.333...
		{[]int{5, 5, 4}, 4.7},  // 4.666...
		{[]int{1}, 1.0},
		{nil, 0.0},
	}

	for _, tt := range tests {
		got := FromRatings(tt.ratings).Rounded()
		if got != tt.want {
			t.Errorf("Rounded(%v) = %v, want %v", tt.ratings, got, tt.want)
		}
	}
}
