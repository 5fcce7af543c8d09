// Package actions maps tool-specific action payloads onto rendering
// templates and resolved parameters.
//
// Each supported action type has one mapper: it decodes the opaque payload
// into a typed parameter struct, applies EL substitution to string fields and
// names the template that renders it. Unknown action types are rejected
// outright; there is no best-effort stub.
package actions

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/crossflow/pkg/dag"
	"github.com/aretw0/crossflow/pkg/el"
	"github.com/aretw0/crossflow/pkg/workflow"
)

// Mapper renders one action type.
type Mapper interface {
	// Template names the template file rendering this action.
	Template() string
	// Imports lists the import statements the rendered operator needs.
	Imports() []string
	// Params builds the template parameters for one task.
	Params(task *dag.Task, resolver *el.Resolver) (any, error)
}

// UnsupportedActionTypeError reports an action payload tag with no known
// rendering template.
type UnsupportedActionTypeError struct {
	Node string
	Type string
}

func (e *UnsupportedActionTypeError) Error() string {
	return fmt.Sprintf("node %q has unsupported action type %q (supported: %s)",
		e.Node, e.Type, strings.Join(Types(), ", "))
}

var registry = map[string]Mapper{
	"pig":          &pigMapper{},
	"map-reduce":   &mapReduceMapper{},
	"shell":        &shellMapper{},
	"spark":        &sparkMapper{},
	"ssh":          &sshMapper{},
	"sub-workflow": &subWorkflowMapper{},
	"fs":           &fsMapper{},
	"kill":         &killMapper{},
}

// Lookup returns the mapper for an action type tag.
func Lookup(actionType string) (Mapper, bool) {
	m, ok := registry[actionType]
	return m, ok
}

// Types returns the supported action type tags, sorted.
func Types() []string {
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// decodePayload maps the flattened payload onto a typed parameter struct.
func decodePayload(task *dag.Task, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(task.PayloadMap()); err != nil {
		return fmt.Errorf("failed to decode %s payload of %q: %w", task.ActionType, task.Source, err)
	}
	return nil
}

// interpolateAll substitutes ${...} placeholders in every given field.
func interpolateAll(r *el.Resolver, fields ...*string) error {
	for _, f := range fields {
		val, err := r.Interpolate(*f)
		if err != nil {
			return err
		}
		*f = val
	}
	return nil
}

// prepareCommand builds the single shell command executing the prepare steps
// of a task, in declared order.
func prepareCommand(r *el.Resolver, steps []workflow.PrepareStep) (string, error) {
	if len(steps) == 0 {
		return "", nil
	}
	cmds := make([]string, 0, len(steps))
	for _, s := range steps {
		path, err := r.Interpolate(s.Path)
		if err != nil {
			return "", err
		}
		switch s.Op {
		case "mkdir":
			cmds = append(cmds, "fs -mkdir -p "+path)
		case "delete":
			cmds = append(cmds, "fs -rm -r -f "+path)
		}
	}
	return strings.Join(cmds, " && "), nil
}

// resolvedConfig returns the configuration block with EL-substituted values,
// document order preserved.
func resolvedConfig(r *el.Resolver, config []workflow.Property) ([]workflow.Property, error) {
	out := make([]workflow.Property, 0, len(config))
	for _, p := range config {
		val, err := r.Interpolate(p.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, workflow.Property{Name: p.Name, Value: val})
	}
	return out, nil
}

// resolvedParams splits the raw "key=value" param entries after substitution.
func resolvedParams(r *el.Resolver, params []string) ([]workflow.Property, error) {
	out := make([]workflow.Property, 0, len(params))
	for _, raw := range params {
		resolved, err := r.Interpolate(raw)
		if err != nil {
			return nil, err
		}
		key, value, found := strings.Cut(resolved, "=")
		if !found {
			return nil, fmt.Errorf("malformed param entry %q, want key=value", raw)
		}
		out = append(out, workflow.Property{Name: key, Value: value})
	}
	return out, nil
}

// elementTexts returns the substituted text of every payload element with
// the given tag, in document order.
func elementTexts(r *el.Resolver, task *dag.Task, tag string) ([]string, error) {
	var out []string
	for _, e := range task.Elements {
		if e.Tag != tag {
			continue
		}
		val, err := r.Interpolate(e.Text)
		if err != nil {
			return nil, err
		}
		out = append(out, val)
	}
	return out, nil
}
