package split

import (
	"fmt"
	"math"
	"sort"

	"voxver/internal/dataset"
)

// Ratios holds the configured train/val/test proportions.
type Ratios struct {
	Train float64
	Val   float64
	Test  float64
}

// Validate rejects ratios outside [0,1] or not summing to 1.
func (r Ratios) Validate() error {
	for name, value := range map[string]float64{"train": r.Train, "val": r.Val, "test": r.Test} {
		if value < 0 || value > 1 {
			return fmt.Errorf("%s ratio must be between 0 and 1, got %v", name, value)
		}
	}
	if total := r.Train + r.Val + r.Test; math.Abs(total-1.0) > 1e-3 {
		return fmt.Errorf("split ratios must sum to 1.0, got %v", total)
	}
	return nil
}

// Assign labels every row with its duration bin and split. The assignment is
// a pure function of (rows, ratios, bins): within each bin, rows sort by
// pair_sha256 — a uniformly distributed content-derived key that stands in
// for randomness — and split boundaries fall on deterministic per-bin counts.
// The returned slice is ordered by manifest_row_index and leaves the input
// untouched.
func Assign(rows []dataset.Row, bins Bins, ratios Ratios) ([]dataset.Row, error) {
	return AssignWithPins(rows, bins, ratios, nil)
}

// AssignWithPins behaves like Assign but forces every row whose pair_sha256
// appears in pinnedTest into the test split before stratifying the rest.
// Pinned rows consume their bin's test quota first; when a bin holds more
// pinned rows than its quota the extras stay in test and the train share
// shrinks. This is how identities frozen by earlier versions keep their seat.
func AssignWithPins(rows []dataset.Row, bins Bins, ratios Ratios, pinnedTest map[string]struct{}) ([]dataset.Row, error) {
	if err := ratios.Validate(); err != nil {
		return nil, err
	}

	out := make([]dataset.Row, len(rows))
	copy(out, rows)

	byBin := make(map[string][]int)
	for i := range out {
		label := bins.Label(out[i].DurationSec)
		out[i].DurationBin = label
		byBin[label] = append(byBin[label], i)
	}

	for _, indices := range byBin {
		sort.Slice(indices, func(a, b int) bool {
			ia, ib := out[indices[a]], out[indices[b]]
			if ia.PairSHA256 != ib.PairSHA256 {
				return ia.PairSHA256 < ib.PairSHA256
			}
			return ia.ManifestRowIndex < ib.ManifestRowIndex
		})

		var free []int
		pinned := 0
		for _, idx := range indices {
			if _, ok := pinnedTest[out[idx].PairSHA256]; ok {
				out[idx].Split = dataset.SplitTest
				pinned++
				continue
			}
			free = append(free, idx)
		}

		_, nVal, nTest := counts(len(indices), ratios)
		freeTest := max(0, nTest-pinned)
		freeVal := min(nVal, len(free)-freeTest)
		freeTrain := len(free) - freeVal - freeTest

		for pos, idx := range free {
			switch {
			case pos < freeTrain:
				out[idx].Split = dataset.SplitTrain
			case pos < freeTrain+freeVal:
				out[idx].Split = dataset.SplitVal
			default:
				out[idx].Split = dataset.SplitTest
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].ManifestRowIndex < out[j].ManifestRowIndex
	})
	return out, nil
}

// counts rounds fractional split boundaries for a bin of n samples: train and
// val take the floor of their shares and test absorbs the remainder, so every
// non-empty bin contributes at least one test sample once n*test >= 1 rounds
// up through the leftover.
func counts(n int, ratios Ratios) (nTrain, nVal, nTest int) {
	nTrain = int(math.Floor(float64(n) * ratios.Train))
	nVal = int(math.Floor(float64(n) * ratios.Val))
	nTest = n - nTrain - nVal
	return nTrain, nVal, nTest
}
