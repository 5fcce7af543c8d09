package actions

import (
	"github.com/aretw0/crossflow/pkg/dag"
	"github.com/aretw0/crossflow/pkg/el"
)

type mapReduceMapper struct{}

type mapReducePayload struct {
	NameNode   string `mapstructure:"name-node"`
	JobTracker string `mapstructure:"job-tracker"`
}

type mapReduceParams struct {
	taskBase
	mapReducePayload
}

func (m *mapReduceMapper) Template() string {
	return "mapreduce.tpl"
}

func (m *mapReduceMapper) Imports() []string {
	return []string{
		"from airflow.utils import dates",
		"from airflow.contrib.operators import dataproc_operator",
	}
}

func (m *mapReduceMapper) Params(task *dag.Task, r *el.Resolver) (any, error) {
	base, err := newBase(task, r)
	if err != nil {
		return nil, err
	}
	var payload mapReducePayload
	if err := decodePayload(task, &payload); err != nil {
		return nil, err
	}
	if err := interpolateAll(r, &payload.NameNode, &payload.JobTracker); err != nil {
		return nil, err
	}
	return &mapReduceParams{taskBase: base, mapReducePayload: payload}, nil
}
