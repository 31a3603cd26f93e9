package dag

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// TaskRoot is the variable through which declarations reference each other.
const TaskRoot = "task"

// formatTraversal converts an hcl.Traversal to a human-readable string for logging.
func formatTraversal(t hcl.Traversal) string {
	var sb strings.Builder
	for i, part := range t {
		switch p := part.(type) {
		case hcl.TraverseRoot:
			sb.WriteString(p.Name)
		case hcl.TraverseAttr:
			sb.WriteRune('.')
			sb.WriteString(p.Name)
		case hcl.TraverseIndex:
			sb.WriteRune('[')
			switch {
			case p.Key.Type() == cty.String:
				sb.WriteString(fmt.Sprintf("%q", p.Key.AsString()))
			case p.Key.Type() == cty.Number:
				sb.WriteString(p.Key.AsBigFloat().Text('f', -1))
			default:
				sb.WriteString("...")
			}
			sb.WriteRune(']')
		default:
			if i > 0 {
				sb.WriteRune('.')
			}
			sb.WriteString("?")
		}
	}
	return sb.String()
}

// parseTaskTraversal returns the name of the declaration a traversal
// references. ok is false for traversals rooted elsewhere.
func parseTaskTraversal(t hcl.Traversal) (name string, ok bool, err error) {
	if t.RootName() != TaskRoot {
		return "", false, nil
	}
	if len(t) < 2 {
		return "", true, fmt.Errorf("%s: reference to %q must name a task", t.SourceRange(), TaskRoot)
	}
	switch p := t[1].(type) {
	case hcl.TraverseAttr:
		return p.Name, true, nil
	case hcl.TraverseIndex:
		if p.Key.Type() == cty.String && p.Key.IsKnown() && !p.Key.IsNull() {
			return p.Key.AsString(), true, nil
		}
	}
	return "", true, fmt.Errorf("%s: invalid task reference %s", t.SourceRange(), formatTraversal(t))
}
