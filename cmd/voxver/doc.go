// Command voxver builds and inspects versioned speech dataset releases: it
// deduplicates an audio/transcript inventory, assigns deterministic stratified
// splits, audits for leakage, and freezes each version's test set so
// evaluation stays comparable across releases.
package main
