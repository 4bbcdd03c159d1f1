// Package splitcheck validates split adequacy before a version may be
// finalized.
//
// It enforces minimum sample counts and audio durations per split and warns
// when duration-bin proportions in val or test drift from train beyond the
// configured relative threshold. Failures block version creation unless the
// operator explicitly allows small splits, which demotes them to warnings
// recorded in the summary.
package splitcheck
