// Package extract turns one decoded quarter document into flat records.
//
// Each category has one extractor variant. Sub-documents are located with
// compiled JSONPath expressions; fields are coerced through package normalize.
//
// Error scopes:
//   - a missing "data" object or category sub-key fails the whole document
//     (pulse.ErrExtraction, or pulse.ErrShapeMismatch for hover documents of
//     the other shape)
//   - an entry whose fields cannot be coerced is dropped and reported in
//     Result.Dropped
//   - a top-N entry without a region identifier is sparse data, counted in
//     Result.Sparse
//   - a document that intentionally carries nothing sets Result.Skipped
package extract
