// Package storage saves downloaded exam documents. FileSaver writes them to a
// local directory; S3Saver uploads them to an S3-compatible bucket such as
// MinIO.
package storage
