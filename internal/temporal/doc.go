// Package temporal detects recording-session clusters that straddle split
// boundaries.
//
// The audit is advisory and read-only: it annotates the build summary but
// never changes an assignment. Samples recorded within the session gap of
// each other form one cluster; a cluster holding both train and test members
// suggests the evaluation set shares a session with training data.
package temporal
