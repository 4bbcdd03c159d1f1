// Package dataset defines the row model shared by every pipeline stage:
// inventory samples joined with their content identities, split labels, and
// exclusion records.
package dataset
