package actions

import (
	"github.com/aretw0/crossflow/pkg/dag"
	"github.com/aretw0/crossflow/pkg/el"
)

type shellMapper struct{}

type shellPayload struct {
	NameNode   string `mapstructure:"name-node"`
	JobTracker string `mapstructure:"job-tracker"`
	Exec       string `mapstructure:"exec"`
}

type shellParams struct {
	taskBase
	shellPayload
	Arguments []string
	EnvVars   []string
}

func (m *shellMapper) Template() string {
	return "shell.tpl"
}

func (m *shellMapper) Imports() []string {
	return []string{"from airflow.operators import bash_operator"}
}

func (m *shellMapper) Params(task *dag.Task, r *el.Resolver) (any, error) {
	base, err := newBase(task, r)
	if err != nil {
		return nil, err
	}
	var payload shellPayload
	if err := decodePayload(task, &payload); err != nil {
		return nil, err
	}
	if err := interpolateAll(r, &payload.NameNode, &payload.JobTracker, &payload.Exec); err != nil {
		return nil, err
	}
	args, err := elementTexts(r, task, "argument")
	if err != nil {
		return nil, err
	}
	envs, err := elementTexts(r, task, "env-var")
	if err != nil {
		return nil, err
	}
	return &shellParams{
		taskBase:     base,
		shellPayload: payload,
		Arguments:    args,
		EnvVars:      envs,
	}, nil
}
