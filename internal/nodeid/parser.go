// internal/nodeid/parser.go
package nodeid

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2/hclsyntax"
)

// Parse creates a new Address by parsing its canonical string representation.
func Parse(raw string) (Address, error) {
	if raw == "" {
		return Address{}, fmt.Errorf("task name cannot be empty")
	}

	name, rest, keyed := strings.Cut(raw, "[")
	if !hclsyntax.ValidIdentifier(name) {
		return Address{}, fmt.Errorf("invalid task name %q: %q is not a valid identifier", raw, name)
	}
	if !keyed {
		return Task(name), nil
	}

	quoted, ok := strings.CutSuffix(rest, "]")
	if !ok {
		return Address{}, fmt.Errorf("invalid task name %q: missing closing bracket", raw)
	}
	key, err := strconv.Unquote(quoted)
	if err != nil || !strings.HasPrefix(quoted, `"`) {
		return Address{}, fmt.Errorf("invalid task name %q: key must be a quoted string", raw)
	}
	return Instance(name, key), nil
}
