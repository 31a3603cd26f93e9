// Package taskcluster holds the wire types and the HTTP client used to talk to
// the Taskcluster index and queue services.
//
// Only the two calls the decision task needs are implemented: looking up an
// indexed task by namespace, and creating a task with a given ID.
package taskcluster
