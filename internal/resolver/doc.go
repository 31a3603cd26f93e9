// Package resolver substitutes references to other tasks' computed fields
// and records every referenced task as a dependency.
//
// References are typed values rather than text placeholders: a Handle names
// a previously declared task and a Field selects what to read from it. A
// Resolver is used for one task at a time; each referenced task is recorded
// once no matter how often it is referenced.
package resolver
