// Package exclusion removes unusable or duplicate rows under an explicit,
// ordered rule list.
//
// Precedence, first match wins: audio unreadable, zero/null duration, blank
// transcript, duplicate audio+transcript pair. Among exact duplicates the
// lowest manifest_row_index is kept. Rows sharing audio bytes but carrying a
// different transcript are never excluded here; they are flagged for review.
package exclusion
