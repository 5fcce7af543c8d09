package actions

import (
	"github.com/aretw0/crossflow/pkg/dag"
	"github.com/aretw0/crossflow/pkg/el"
)

type pigMapper struct{}

type pigPayload struct {
	NameNode   string `mapstructure:"name-node"`
	JobTracker string `mapstructure:"job-tracker"`
	Script     string `mapstructure:"script"`
}

type pigParams struct {
	taskBase
	pigPayload
}

func (m *pigMapper) Template() string {
	return "pig.tpl"
}

func (m *pigMapper) Imports() []string {
	return []string{
		"from airflow.utils import dates",
		"from airflow.contrib.operators import dataproc_operator",
	}
}

func (m *pigMapper) Params(task *dag.Task, r *el.Resolver) (any, error) {
	base, err := newBase(task, r)
	if err != nil {
		return nil, err
	}
	var payload pigPayload
	if err := decodePayload(task, &payload); err != nil {
		return nil, err
	}
	if err := interpolateAll(r, &payload.NameNode, &payload.JobTracker, &payload.Script); err != nil {
		return nil, err
	}
	return &pigParams{taskBase: base, pigPayload: payload}, nil
}
