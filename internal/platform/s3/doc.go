// Package s3 manages the object storage bucket backing the log store.
//
// The bucket is created on first install in the cluster region with
// server-side encryption enabled by default.
package s3
