// Package types defines the data model shared across the indexing pipeline:
// text units produced by chunking, content fingerprints used for
// deduplication, embedding batches, and the indexed units persisted to the
// store. It also defines the error taxonomy for the pipeline.
package types
