package actions

import (
	"github.com/aretw0/crossflow/pkg/dag"
	"github.com/aretw0/crossflow/pkg/el"
)

type subWorkflowMapper struct{}

type subWorkflowPayload struct {
	AppPath string `mapstructure:"app-path"`
}

type subWorkflowParams struct {
	taskBase
	subWorkflowPayload
	PropagateConfiguration bool
}

func (m *subWorkflowMapper) Template() string {
	return "subworkflow.tpl"
}

func (m *subWorkflowMapper) Imports() []string {
	return []string{"from airflow.operators import subdag_operator"}
}

func (m *subWorkflowMapper) Params(task *dag.Task, r *el.Resolver) (any, error) {
	base, err := newBase(task, r)
	if err != nil {
		return nil, err
	}
	var payload subWorkflowPayload
	if err := decodePayload(task, &payload); err != nil {
		return nil, err
	}
	if err := interpolateAll(r, &payload.AppPath); err != nil {
		return nil, err
	}

	propagate := false
	for _, e := range task.Elements {
		if e.Tag == "propagate-configuration" {
			propagate = true
			break
		}
	}
	return &subWorkflowParams{
		taskBase:               base,
		subWorkflowPayload:     payload,
		PropagateConfiguration: propagate,
	}, nil
}
