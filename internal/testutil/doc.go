// Package testutil holds helpers shared by the integration tests: a
// goroutine-safe log buffer, a file tree writer, a fake index/queue server
// and a harness running the App against all of them.
package testutil
