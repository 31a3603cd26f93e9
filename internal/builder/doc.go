/*
Package builder constructs the task graph of one decision run.

A Builder owns every task declared during the run, in declaration order. Tasks
are declared with Add, which turns a Spec into a complete task definition:

 1. Identity: when the Spec names an index key, the task ID comes from the
    index cache and may refer to an earlier run's task, which is then reused
    instead of submitted again. Otherwise a fresh ID is allocated.

 2. Resolution: references to earlier tasks in the command, environment,
    description and image are replaced by their current values, and every
    referenced task becomes a dependency.

 3. Artifacts: declared artifact paths become public URLs and the payload
    artifact declaration, whose shape depends on the worker type.

 4. Dependencies: the task group, the image task, mounted tasks, explicit
    dependencies and resolved references are merged, deduplicated and sorted.

Specs are validated before any index lookup, so configuration mistakes are
reported before network activity starts.
*/
package builder
