package split_test

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/rand"
	"testing"

	"voxver/internal/dataset"
	"voxver/internal/identity"
	"voxver/internal/inventory"
	"voxver/internal/split"
)

func defaultRatios() split.Ratios {
	return split.Ratios{Train: 0.8, Val: 0.1, Test: 0.1}
}

func makeRow(index int64, duration float64) dataset.Row {
	sum := sha256.Sum256([]byte(fmt.Sprintf("pair-%d", index)))
	return dataset.Row{
		Sample: inventory.Sample{
			ManifestRowIndex: index,
			FileName:         fmt.Sprintf("s%04d.wav", index),
			DurationSec:      duration,
			DurationValid:    true,
			AudioReadOK:      true,
		},
		Identity: identity.Identity{PairSHA256: hex.EncodeToString(sum[:])},
	}
}

func TestAssignPartitionTotality(t *testing.T) {
	var rows []dataset.Row
	for i := int64(0); i < 137; i++ {
		rows = append(rows, makeRow(i, float64(i%40)+0.5))
	}

	assigned, err := split.Assign(rows, split.Default(), defaultRatios())
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if len(assigned) != len(rows) {
		t.Fatalf("lost rows: %d vs %d", len(assigned), len(rows))
	}

	counts := map[dataset.Split]int{}
	for _, row := range assigned {
		switch row.Split {
		case dataset.SplitTrain, dataset.SplitVal, dataset.SplitTest:
			counts[row.Split]++
		default:
			t.Fatalf("row %d unassigned: %q", row.ManifestRowIndex, row.Split)
		}
		if row.DurationBin == "" {
			t.Fatalf("row %d has no duration bin", row.ManifestRowIndex)
		}
	}
	if counts[dataset.SplitTrain]+counts[dataset.SplitVal]+counts[dataset.SplitTest] != len(rows) {
		t.Fatalf("split counts do not partition the set: %v", counts)
	}
}

func TestAssignScenarioHundredSamplesOneBin(t *testing.T) {
	var rows []dataset.Row
	for i := int64(0); i < 100; i++ {
		rows = append(rows, makeRow(i, 5.0)) // all in (3, 10]
	}

	assigned, err := split.Assign(rows, split.Default(), defaultRatios())
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}

	counts := map[dataset.Split]int{}
	for _, row := range assigned {
		counts[row.Split]++
	}
	if got := counts[dataset.SplitTrain]; got < 79 || got > 81 {
		t.Fatalf("train count out of bounds: %d", got)
	}
	if got := counts[dataset.SplitVal]; got < 9 || got > 11 {
		t.Fatalf("val count out of bounds: %d", got)
	}
	if got := counts[dataset.SplitTest]; got < 9 || got > 11 {
		t.Fatalf("test count out of bounds: %d", got)
	}
}

func TestAssignDeterministicUnderShuffle(t *testing.T) {
	var rows []dataset.Row
	for i := int64(0); i < 60; i++ {
		rows = append(rows, makeRow(i, float64(i%12)+0.25))
	}

	first, err := split.Assign(rows, split.Default(), defaultRatios())
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}

	shuffled := make([]dataset.Row, len(rows))
	copy(shuffled, rows)
	rand.New(rand.NewSource(7)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	second, err := split.Assign(shuffled, split.Default(), defaultRatios())
	if err != nil {
		t.Fatalf("Assign shuffled: %v", err)
	}

	for i := range first {
		if first[i].ManifestRowIndex != second[i].ManifestRowIndex {
			t.Fatalf("output order differs at %d", i)
		}
		if first[i].Split != second[i].Split || first[i].DurationBin != second[i].DurationBin {
			t.Fatalf("assignment depends on input order at row %d", first[i].ManifestRowIndex)
		}
	}
}

func TestAssignSmallBinRemainderGoesToTest(t *testing.T) {
	var rows []dataset.Row
	for i := int64(0); i < 7; i++ {
		rows = append(rows, makeRow(i, 2.0))
	}

	assigned, err := split.Assign(rows, split.Default(), defaultRatios())
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	counts := map[dataset.Split]int{}
	for _, row := range assigned {
		counts[row.Split]++
	}
	// floor(7*.8)=5 train, floor(7*.1)=0 val, remainder 2 test.
	if counts[dataset.SplitTrain] != 5 || counts[dataset.SplitVal] != 0 || counts[dataset.SplitTest] != 2 {
		t.Fatalf("unexpected small-bin rounding: %v", counts)
	}
}

func TestAssignWithPinsKeepsFrozenIdentitiesInTest(t *testing.T) {
	var rows []dataset.Row
	for i := int64(0); i < 100; i++ {
		rows = append(rows, makeRow(i, 5.0))
	}

	base, err := split.Assign(rows, split.Default(), defaultRatios())
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	pinned := map[string]struct{}{}
	for _, row := range base {
		if row.Split == dataset.SplitTest {
			pinned[row.PairSHA256] = struct{}{}
		}
	}

	// Grow the population; the frozen identities must keep their test seat.
	grown := make([]dataset.Row, len(rows))
	copy(grown, rows)
	for i := int64(100); i < 160; i++ {
		grown = append(grown, makeRow(i, 5.0))
	}

	assigned, err := split.AssignWithPins(grown, split.Default(), defaultRatios(), pinned)
	if err != nil {
		t.Fatalf("AssignWithPins: %v", err)
	}
	for _, row := range assigned {
		if _, ok := pinned[row.PairSHA256]; ok && row.Split != dataset.SplitTest {
			t.Fatalf("pinned identity %s moved to %s", row.PairSHA256[:8], row.Split)
		}
	}

	counts := map[dataset.Split]int{}
	for _, row := range assigned {
		counts[row.Split]++
	}
	if counts[dataset.SplitTrain]+counts[dataset.SplitVal]+counts[dataset.SplitTest] != 160 {
		t.Fatalf("pins broke partition totality: %v", counts)
	}
}

func TestAssignWithPinsOverflowStaysInTest(t *testing.T) {
	// 10 rows, 8 of them pinned: far beyond the test quota of 1.
	var rows []dataset.Row
	pinned := map[string]struct{}{}
	for i := int64(0); i < 10; i++ {
		row := makeRow(i, 5.0)
		if i < 8 {
			pinned[row.PairSHA256] = struct{}{}
		}
		rows = append(rows, row)
	}

	assigned, err := split.AssignWithPins(rows, split.Default(), defaultRatios(), pinned)
	if err != nil {
		t.Fatalf("AssignWithPins: %v", err)
	}
	counts := map[dataset.Split]int{}
	for _, row := range assigned {
		counts[row.Split]++
		if _, ok := pinned[row.PairSHA256]; ok && row.Split != dataset.SplitTest {
			t.Fatalf("pinned row left test: %v", row.Split)
		}
	}
	if counts[dataset.SplitTest] < 8 {
		t.Fatalf("overflow pins must stay in test: %v", counts)
	}
}

func TestAssignRejectsBadRatios(t *testing.T) {
	rows := []dataset.Row{makeRow(0, 1.0)}
	_, err := split.Assign(rows, split.Default(), split.Ratios{Train: 0.9, Val: 0.2, Test: 0.1})
	if err == nil {
		t.Fatal("expected ratio validation error")
	}
}

func TestAssignStratifiesPerBin(t *testing.T) {
	var rows []dataset.Row
	index := int64(0)
	for _, duration := range []float64{0.5, 2.0, 5.0} {
		for i := 0; i < 100; i++ {
			rows = append(rows, makeRow(index, duration))
			index++
		}
	}

	assigned, err := split.Assign(rows, split.Default(), defaultRatios())
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}

	perBin := map[string]map[dataset.Split]int{}
	for _, row := range assigned {
		if perBin[row.DurationBin] == nil {
			perBin[row.DurationBin] = map[dataset.Split]int{}
		}
		perBin[row.DurationBin][row.Split]++
	}
	for bin, counts := range perBin {
		if counts[dataset.SplitTrain] != 80 || counts[dataset.SplitVal] != 10 || counts[dataset.SplitTest] != 10 {
			t.Fatalf("bin %s not stratified: %v", bin, counts)
		}
	}
}
