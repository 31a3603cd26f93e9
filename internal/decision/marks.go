package decision

import (
	"cmp"
	"slices"

	"github.com/digideskio/git-cinnabar/internal/resolver"
	"github.com/zclconf/go-cty/cty"
)

// taskMark is carried by values derived from a task object.
type taskMark struct {
	handle resolver.Handle
}

// refMark is carried by values derived from one field of a task.
type refMark struct {
	ref resolver.Ref
}

// splitMarks returns the references and task handles found in marks, in a
// stable order.
func splitMarks(marks cty.ValueMarks) ([]resolver.Ref, []resolver.Handle) {
	var refs []resolver.Ref
	var handles []resolver.Handle
	for m := range marks {
		switch m := m.(type) {
		case refMark:
			refs = append(refs, m.ref)
		case taskMark:
			handles = append(handles, m.handle)
		}
	}
	slices.SortFunc(refs, func(a, b resolver.Ref) int {
		return cmp.Or(cmp.Compare(a.Task, b.Task), cmp.Compare(a.Field, b.Field), cmp.Compare(a.Index, b.Index))
	})
	slices.Sort(handles)
	return refs, handles
}

// markedText is a template whose text is already substituted. Resolving it
// validates and records the references it was built from.
type markedText struct {
	text    string
	refs    []resolver.Ref
	handles []resolver.Handle
}

func (m markedText) Resolve(r *resolver.Resolver) (string, error) {
	for _, h := range m.handles {
		if _, err := r.Use(h); err != nil {
			return "", err
		}
	}
	for _, ref := range m.refs {
		if _, err := r.Value(ref); err != nil {
			return "", err
		}
	}
	return m.text, nil
}
