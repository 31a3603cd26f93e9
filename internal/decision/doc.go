// Package decision evaluates a decision graph definition into builder tasks.
//
// Declarations are evaluated one at a time, in dependency order, against an
// evaluation context exposing the repository identity and every task
// declared so far. Values read from other tasks carry cty marks naming the
// task and field they come from; after evaluation those marks are turned
// back into typed references, so the builder records each dependency even
// though the value itself is already substituted.
package decision
