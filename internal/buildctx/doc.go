// Package buildctx computes content identities for the docker build contexts
// kept next to the decision files.
//
// Each context lives in a `docker-<name>` directory. Its leaf hash is the git
// tree hash of that directory, so it matches what `git write-tree` would
// report for the same files. A context whose Dockerfile starts from another
// context of the same repository (`FROM ${REPO_NAME}-<base>`) inherits the
// base's identity: its chain hash is a digest over the base's chain hash and
// its own leaf hash, so changing a base changes every context built on it.
package buildctx
