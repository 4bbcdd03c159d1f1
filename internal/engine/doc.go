// Package engine orchestrates a dataset version build end to end: inventory
// loading, identity hashing, exclusion filtering, stratified splitting, the
// temporal audit, split validation, the lineage check, and artifact writing.
//
// The pipeline is all-or-nothing. Checks run before any artifact is written,
// artifacts are committed through atomic renames, and the registry entry
// reaches the frozen state only after every artifact exists on disk.
package engine
