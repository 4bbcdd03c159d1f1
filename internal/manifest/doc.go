// Package manifest writes the published artifacts of a version build: the
// dataset manifest, the exclusion list, the summary JSON, and the markdown
// report. Every artifact is written through an atomic rename so readers never
// observe a partial file.
package manifest
