// Package connectors provides ContentSource implementations for the places
// study material lives: a local directory tree, a Google Cloud Storage
// bucket and a GitHub repository.
//
// Every source exposes the same three-level layout below its root:
//
//	<collection>/<subcollection>/<unit>/<document>
//
// Sources that return flat listings (object storage, git trees) index them
// with Tree.
package connectors
