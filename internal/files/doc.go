// Package files groups the corpus access sub-packages:
//   - filesystem: read-only filesystem abstraction (OS, in-memory, S3)
//   - walker: ordered discovery of region/year/quarter.json files
package files
