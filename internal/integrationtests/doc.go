// Package integration_tests runs whole decision runs against a fake index
// and queue.
package integration_tests
