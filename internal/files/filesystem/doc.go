// Package filesystem abstracts read access to the corpus.
//
// Implementations:
//   - OSFileSystemProvider: the local filesystem
//   - MemoryFileSystem: in-memory tree for tests
//   - S3FileSystem: objects in an S3 bucket, with "/" delimited prefixes as directories
package filesystem
