// Package github implements a ContentSource over a GitHub repository tree.
//
// The repository (optionally below a path prefix) holds study material in the
// same collection/subcollection/unit/document layout as a local content root.
// One recursive tree call lists every file; documents are fetched as blobs by
// SHA, so a listing and the reads that follow it always see the same commit.
//
// # Authentication
//
// A personal access token is optional for public repositories. Private
// repositories need a token with read access to contents. Authenticated
// requests get 5,000 API calls per hour, unauthenticated ones 60.
//
// # Rate Limiting
//
// Two strategies are combined:
//
//   - Proactive: a token bucket throttles requests (1.2 req/s by default)
//   - Reactive: X-RateLimit-Remaining headers pause requests until the quota
//     resets when fewer than 100 calls remain
package github
