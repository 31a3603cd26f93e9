package resolver

import (
	"fmt"
	"strings"
)

// Handle identifies a declared task by its position in the builder.
type Handle int

// Field selects a computed value of a task.
type Field int

const (
	// FieldID is the task identifier.
	FieldID Field = iota
	// FieldArtifact is the URL of the task's only artifact.
	FieldArtifact
	// FieldArtifactAt is the URL of the artifact at Ref.Index.
	FieldArtifactAt
)

func (f Field) String() string {
	switch f {
	case FieldID:
		return "id"
	case FieldArtifact:
		return "artifact"
	case FieldArtifactAt:
		return "artifacts"
	default:
		return fmt.Sprintf("Field(%d)", int(f))
	}
}

// Ref is a reference to one field of a declared task.
type Ref struct {
	Task  Handle
	Field Field
	Index int
}

// ID references the identifier of task h.
func ID(h Handle) Ref { return Ref{Task: h, Field: FieldID} }

// Artifact references the only artifact URL of task h.
func Artifact(h Handle) Ref { return Ref{Task: h, Field: FieldArtifact} }

// ArtifactAt references the i-th artifact URL of task h.
func ArtifactAt(h Handle, i int) Ref { return Ref{Task: h, Field: FieldArtifactAt, Index: i} }

func (r Ref) String() string {
	if r.Field == FieldArtifactAt {
		return fmt.Sprintf("task#%d.%s[%d]", r.Task, r.Field, r.Index)
	}
	return fmt.Sprintf("task#%d.%s", r.Task, r.Field)
}

// Target is what references can read from a declared task.
type Target struct {
	Name      string
	ID        string
	Artifacts []string
}

// Source gives access to declared tasks.
type Source interface {
	Lookup(h Handle) (Target, bool)
}

// RefError reports a reference that cannot be resolved.
type RefError struct {
	Ref    Ref
	Reason string
}

func (e *RefError) Error() string {
	return fmt.Sprintf("unresolvable reference %s: %s", e.Ref, e.Reason)
}

// Resolver substitutes references for a single task and collects the IDs of
// the tasks it references.
type Resolver struct {
	src  Source
	deps []string
	seen map[string]bool
}

// New creates a resolver reading from src.
func New(src Source) *Resolver {
	return &Resolver{src: src, seen: make(map[string]bool)}
}

// Use records task h as a dependency and returns it.
func (r *Resolver) Use(h Handle) (Target, error) {
	target, ok := r.src.Lookup(h)
	if !ok {
		return Target{}, &RefError{Ref: ID(h), Reason: "no such task has been declared"}
	}
	r.record(target.ID)
	return target, nil
}

// Value returns the current value of ref and records its task as a
// dependency.
func (r *Resolver) Value(ref Ref) (string, error) {
	target, ok := r.src.Lookup(ref.Task)
	if !ok {
		return "", &RefError{Ref: ref, Reason: "no such task has been declared"}
	}

	var value string
	switch ref.Field {
	case FieldID:
		value = target.ID
	case FieldArtifact:
		if len(target.Artifacts) != 1 {
			return "", &RefError{Ref: ref, Reason: fmt.Sprintf("task %q declares %d artifacts, expected exactly one", target.Name, len(target.Artifacts))}
		}
		value = target.Artifacts[0]
	case FieldArtifactAt:
		if ref.Index < 0 || ref.Index >= len(target.Artifacts) {
			return "", &RefError{Ref: ref, Reason: fmt.Sprintf("task %q declares %d artifacts", target.Name, len(target.Artifacts))}
		}
		value = target.Artifacts[ref.Index]
	default:
		return "", &RefError{Ref: ref, Reason: "unknown field"}
	}

	r.record(target.ID)
	return value, nil
}

func (r *Resolver) record(id string) {
	if r.seen[id] {
		return
	}
	r.seen[id] = true
	r.deps = append(r.deps, id)
}

// Deps returns the IDs of referenced tasks in first-reference order.
func (r *Resolver) Deps() []string {
	return append([]string(nil), r.deps...)
}

// Template is a value that becomes a string once its references are
// resolved.
type Template interface {
	Resolve(r *Resolver) (string, error)
}

// Text is a template without references.
type Text string

func (t Text) Resolve(*Resolver) (string, error) { return string(t), nil }

// Part is a piece of a Parts template: literal text, or a reference when Ref
// is set.
type Part struct {
	Text string
	Ref  *Ref
}

// Lit is a literal part.
func Lit(s string) Part { return Part{Text: s} }

// At is a reference part.
func At(ref Ref) Part { return Part{Ref: &ref} }

// Parts concatenates literal text and references.
type Parts []Part

// Concat builds a Parts template.
func Concat(parts ...Part) Parts { return Parts(parts) }

func (p Parts) Resolve(r *Resolver) (string, error) {
	var sb strings.Builder
	for _, part := range p {
		if part.Ref == nil {
			sb.WriteString(part.Text)
			continue
		}
		v, err := r.Value(*part.Ref)
		if err != nil {
			return "", err
		}
		sb.WriteString(v)
	}
	return sb.String(), nil
}

// ResolveAll resolves templates in order.
func (r *Resolver) ResolveAll(templates []Template) ([]string, error) {
	out := make([]string, 0, len(templates))
	for i, t := range templates {
		s, err := t.Resolve(r)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, s)
	}
	return out, nil
}
