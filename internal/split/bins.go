package split

import (
	"fmt"
	"strconv"
)

// Bins partitions audio duration into half-open intervals. Interior edges are
// configured; 0 and +inf bound the outer bins. A duration d falls in the bin
// whose interval (left, right] contains it.
type Bins struct {
	edges []float64
}

// NewBins validates interior edges (strictly increasing, positive) and returns
// the bin partition.
func NewBins(edges []float64) (Bins, error) {
	if len(edges) == 0 {
		return Bins{}, fmt.Errorf("duration bins need at least one edge")
	}
	prev := 0.0
	for _, edge := range edges {
		if edge <= prev {
			return Bins{}, fmt.Errorf("duration bin edges must be strictly increasing positive values, got %v", edges)
		}
		prev = edge
	}
	cp := make([]float64, len(edges))
	copy(cp, edges)
	return Bins{edges: cp}, nil
}

// Default returns the standard (0,1], (1,3], (3,10], (10,30], (30,inf] bins.
func Default() Bins {
	bins, _ := NewBins([]float64{1, 3, 10, 30})
	return bins
}

// Label returns the bin label for a duration. Durations at or below zero do
// not occur here: the exclusion filter removes them first.
func (b Bins) Label(durationSec float64) string {
	left := 0.0
	for _, edge := range b.edges {
		if durationSec <= edge {
			return intervalLabel(left, edge, false)
		}
		left = edge
	}
	return intervalLabel(left, 0, true)
}

// Edges returns a copy of the interior bin edges.
func (b Bins) Edges() []float64 {
	cp := make([]float64, len(b.edges))
	copy(cp, b.edges)
	return cp
}

// Labels returns every bin label in ascending duration order.
func (b Bins) Labels() []string {
	labels := make([]string, 0, len(b.edges)+1)
	left := 0.0
	for _, edge := range b.edges {
		labels = append(labels, intervalLabel(left, edge, false))
		left = edge
	}
	labels = append(labels, intervalLabel(left, 0, true))
	return labels
}

func intervalLabel(left, right float64, unbounded bool) string {
	if unbounded {
		return fmt.Sprintf("(%s, inf]", formatEdge(left))
	}
	return fmt.Sprintf("(%s, %s]", formatEdge(left), formatEdge(right))
}

func formatEdge(edge float64) string {
	return strconv.FormatFloat(edge, 'f', -1, 64)
}
