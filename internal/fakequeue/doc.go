// Package fakequeue serves a local stand-in for the Taskcluster index and
// queue services over HTTP.
//
// Submitted tasks are indexed on their `index.` routes as soon as they are
// created, rather than when they complete, so a second run against the same
// server reuses every indexed task of the first one.
package fakequeue
