// Package split partitions kept samples into train/val/test stratified by
// audio duration.
//
// Each duration bin independently receives approximately the configured
// ratios, preventing duration-driven evaluation bias. Assignment is
// deterministic: the content-derived pair hash orders samples within a bin,
// so re-running on identical inputs reproduces identical splits on any
// platform.
package split
