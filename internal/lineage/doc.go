// Package lineage tracks dataset versions and enforces frozen test-set
// immutability across them.
//
// Every build registers in a SQLite-backed registry and walks a fixed
// lifecycle: building, validated, frozen. Freezing a version records the
// pair identity of each test sample; later versions must keep every frozen
// identity in their test split, which is what makes accuracy numbers
// comparable across dataset versions.
package lineage
