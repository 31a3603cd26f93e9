// Package inmemorystore provides an ephemeral, thread-safe, in-memory
// store of queued tasks and index records.
//
// # Purpose
//
// It backs the local stand-in for the Taskcluster index and queue services,
// so a decision graph can be submitted and then reused by a later run
// without any network access.
//
// # Concurrency Model
//
// Tasks and index records are kept in two sync.Maps. Each task ID and each
// namespace is independent, and the HTTP server may handle several requests
// at once.
package inmemorystore
