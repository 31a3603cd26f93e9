// internal/nodeid/doc.go

/*
Package nodeid provides a structured representation for the names of
declared tasks, which are also the node identifiers of the decision graph.

A task declared without for_each is named by its identifier, e.g. `git`.
Each instance of a for_each task carries its key as a quoted index, the
way it is written in a reference: `hg["4.3"]`.

This package centralizes the formatting and parsing of these names.
*/
package nodeid
