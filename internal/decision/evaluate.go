package decision

import (
	"errors"
	"fmt"
	"slices"

	"github.com/digideskio/git-cinnabar/internal/builder"
	"github.com/digideskio/git-cinnabar/internal/config"
	"github.com/digideskio/git-cinnabar/internal/resolver"
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

var errTaskReference = errors.New("must not reference other tasks")

// evaluator evaluates the attributes of one task into a builder.Spec.
type evaluator struct {
	decl    *config.TaskDecl
	name    string
	evalCtx *hcl.EvalContext
}

func (ev *evaluator) fail(attr string, err error) error {
	return &builder.ConfigError{Task: ev.name, Field: attr, Err: err}
}

// value evaluates attr. ok is false when the attribute is absent or null.
func (ev *evaluator) value(attr string) (cty.Value, bool, error) {
	expr, ok := ev.decl.Attrs[attr]
	if !ok {
		return cty.NilVal, false, nil
	}
	val, diags := expr.Value(ev.evalCtx)
	if diags.HasErrors() {
		return cty.NilVal, false, ev.fail(attr, diags)
	}
	if val.IsNull() {
		return cty.NilVal, false, nil
	}
	if !val.IsWhollyKnown() {
		return cty.NilVal, false, ev.fail(attr, errors.New("value is not known"))
	}
	return val, true, nil
}

func (ev *evaluator) spec() (builder.Spec, error) {
	spec := builder.Spec{Name: ev.name}
	var err error

	if spec.Index, err = ev.template(config.AttrIndex); err != nil {
		return spec, err
	}
	if spec.Description, err = ev.template(config.AttrDescription); err != nil {
		return spec, err
	}
	if spec.ExpiresIn, err = ev.plainString(config.AttrExpiresIn); err != nil {
		return spec, err
	}
	if spec.ProvisionerID, err = ev.plainString(config.AttrProvisionerID); err != nil {
		return spec, err
	}
	if spec.WorkerType, err = ev.plainString(config.AttrWorkerType); err != nil {
		return spec, err
	}
	if spec.MaxRunTime, err = ev.number(config.AttrMaxRunTime); err != nil {
		return spec, err
	}
	if spec.Image, err = ev.image(config.AttrImage); err != nil {
		return spec, err
	}
	if spec.Command, err = ev.templateList(config.AttrCommand); err != nil {
		return spec, err
	}
	if spec.Env, err = ev.templateMap(config.AttrEnv); err != nil {
		return spec, err
	}
	if spec.Artifact, err = ev.plainString(config.AttrArtifact); err != nil {
		return spec, err
	}
	if spec.Artifacts, err = ev.plainList(config.AttrArtifacts); err != nil {
		return spec, err
	}
	if spec.Scopes, err = ev.plainList(config.AttrScopes); err != nil {
		return spec, err
	}
	if spec.Mounts, err = ev.handles(config.AttrMounts); err != nil {
		return spec, err
	}
	if spec.DependsOn, err = ev.handles(config.AttrDependsOn); err != nil {
		return spec, err
	}
	return spec, nil
}

// toTemplate converts a possibly marked value to a template.
func toTemplate(val cty.Value) (resolver.Template, error) {
	val, marks := val.UnmarkDeep()
	if val.IsNull() {
		return nil, errors.New("must not be null")
	}
	str, err := convert.Convert(val, cty.String)
	if err != nil {
		return nil, fmt.Errorf("must be a string: %w", err)
	}
	refs, handles := splitMarks(marks)
	if len(refs) == 0 && len(handles) == 0 {
		return resolver.Text(str.AsString()), nil
	}
	return markedText{text: str.AsString(), refs: refs, handles: handles}, nil
}

// toPlainString converts an unmarked value to a string.
func toPlainString(val cty.Value) (string, error) {
	if val.ContainsMarked() {
		return "", errTaskReference
	}
	if val.IsNull() {
		return "", errors.New("must not be null")
	}
	str, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", fmt.Errorf("must be a string: %w", err)
	}
	return str.AsString(), nil
}

func (ev *evaluator) template(attr string) (resolver.Template, error) {
	val, ok, err := ev.value(attr)
	if !ok || err != nil {
		return nil, err
	}
	t, err := toTemplate(val)
	if err != nil {
		return nil, ev.fail(attr, err)
	}
	return t, nil
}

func (ev *evaluator) plainString(attr string) (string, error) {
	val, ok, err := ev.value(attr)
	if !ok || err != nil {
		return "", err
	}
	s, err := toPlainString(val)
	if err != nil {
		return "", ev.fail(attr, err)
	}
	return s, nil
}

func (ev *evaluator) number(attr string) (int, error) {
	val, ok, err := ev.value(attr)
	if !ok || err != nil {
		return 0, err
	}
	if val.ContainsMarked() {
		return 0, ev.fail(attr, errTaskReference)
	}
	num, err := convert.Convert(val, cty.Number)
	if err != nil {
		return 0, ev.fail(attr, fmt.Errorf("must be a number: %w", err))
	}
	var n int
	if err := gocty.FromCtyValue(num, &n); err != nil {
		return 0, ev.fail(attr, err)
	}
	if n <= 0 {
		return 0, ev.fail(attr, fmt.Errorf("must be positive, got %d", n))
	}
	return n, nil
}

// elements returns the elements of a list, tuple or set value.
func elements(val cty.Value) ([]cty.Value, error) {
	val, marks := val.Unmark()
	ty := val.Type()
	if !ty.IsListType() && !ty.IsTupleType() && !ty.IsSetType() {
		return nil, fmt.Errorf("must be a list, got %s", ty.FriendlyName())
	}
	out := make([]cty.Value, 0, val.LengthInt())
	for it := val.ElementIterator(); it.Next(); {
		_, v := it.Element()
		out = append(out, v.WithMarks(marks))
	}
	return out, nil
}

func (ev *evaluator) templateList(attr string) ([]resolver.Template, error) {
	val, ok, err := ev.value(attr)
	if !ok || err != nil {
		return nil, err
	}
	elems, err := elements(val)
	if err != nil {
		return nil, ev.fail(attr, err)
	}
	out := make([]resolver.Template, 0, len(elems))
	for i, v := range elems {
		t, err := toTemplate(v)
		if err != nil {
			return nil, ev.fail(attr, fmt.Errorf("element %d: %w", i, err))
		}
		out = append(out, t)
	}
	return out, nil
}

func (ev *evaluator) plainList(attr string) ([]string, error) {
	val, ok, err := ev.value(attr)
	if !ok || err != nil {
		return nil, err
	}
	elems, err := elements(val)
	if err != nil {
		return nil, ev.fail(attr, err)
	}
	out := make([]string, 0, len(elems))
	for i, v := range elems {
		s, err := toPlainString(v)
		if err != nil {
			return nil, ev.fail(attr, fmt.Errorf("element %d: %w", i, err))
		}
		out = append(out, s)
	}
	return out, nil
}

func (ev *evaluator) templateMap(attr string) (map[string]resolver.Template, error) {
	val, ok, err := ev.value(attr)
	if !ok || err != nil {
		return nil, err
	}
	val, marks := val.Unmark()
	ty := val.Type()
	if !ty.IsMapType() && !ty.IsObjectType() {
		return nil, ev.fail(attr, fmt.Errorf("must be a map, got %s", ty.FriendlyName()))
	}
	out := make(map[string]resolver.Template, val.LengthInt())
	for it := val.ElementIterator(); it.Next(); {
		k, v := it.Element()
		t, err := toTemplate(v.WithMarks(marks))
		if err != nil {
			return nil, ev.fail(attr, fmt.Errorf("key %q: %w", k.AsString(), err))
		}
		out[k.AsString()] = t
	}
	return out, nil
}

// taskHandle returns the task a value was read from. The value must come
// from exactly one task.
func taskHandle(marks cty.ValueMarks) (resolver.Handle, bool) {
	_, handles := splitMarks(marks)
	if len(handles) != 1 {
		return -1, false
	}
	return handles[0], true
}

func (ev *evaluator) image(attr string) (builder.Image, error) {
	val, ok, err := ev.value(attr)
	if !ok || err != nil {
		return builder.Image{}, err
	}
	raw, marks := val.Unmark()
	if raw.Type() == cty.String {
		t, err := toTemplate(val)
		if err != nil {
			return builder.Image{}, ev.fail(attr, err)
		}
		return builder.ImageRef(t), nil
	}
	if h, ok := taskHandle(marks); ok && raw.Type().IsObjectType() {
		return builder.TaskImage(h), nil
	}
	return builder.Image{}, ev.fail(attr, fmt.Errorf("must be an image reference or a task, got %s", raw.Type().FriendlyName()))
}

// handles collects the tasks referenced by attr. Collections are searched
// recursively, so a whole for_each task can be referenced at once.
func (ev *evaluator) handles(attr string) ([]resolver.Handle, error) {
	val, ok, err := ev.value(attr)
	if !ok || err != nil {
		return nil, err
	}
	var out []resolver.Handle
	var walk func(v cty.Value) error
	walk = func(v cty.Value) error {
		raw, marks := v.Unmark()
		if _, hs := splitMarks(marks); len(hs) > 0 {
			out = append(out, hs...)
			return nil
		}
		ty := raw.Type()
		if raw.IsNull() || !(ty.IsCollectionType() || ty.IsTupleType() || ty.IsObjectType()) {
			return fmt.Errorf("must reference tasks, got %s", ty.FriendlyName())
		}
		for it := raw.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			if err := walk(elem); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(val); err != nil {
		return nil, ev.fail(attr, err)
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}
