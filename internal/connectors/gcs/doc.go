// Package gcs implements a ContentSource over a Google Cloud Storage bucket.
//
// Objects below a prefix form the content root; their names follow the
// collection/subcollection/unit/document layout. When no prefix is set and
// the source has a tenant, the root is users/<tenant>/raw_data/.
//
// Credentials come from Application Default Credentials with a read-only
// storage scope.
package gcs
