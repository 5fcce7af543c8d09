package actions

import (
	"github.com/aretw0/crossflow/pkg/dag"
	"github.com/aretw0/crossflow/pkg/el"
)

type sshMapper struct{}

type sshPayload struct {
	Host    string `mapstructure:"host"`
	Command string `mapstructure:"command"`
}

type sshParams struct {
	taskBase
	sshPayload
	Arguments []string
}

func (m *sshMapper) Template() string {
	return "ssh.tpl"
}

func (m *sshMapper) Imports() []string {
	return []string{"from airflow.contrib.operators import ssh_operator"}
}

func (m *sshMapper) Params(task *dag.Task, r *el.Resolver) (any, error) {
	base, err := newBase(task, r)
	if err != nil {
		return nil, err
	}
	var payload sshPayload
	if err := decodePayload(task, &payload); err != nil {
		return nil, err
	}
	if err := interpolateAll(r, &payload.Host, &payload.Command); err != nil {
		return nil, err
	}
	args, err := elementTexts(r, task, "args")
	if err != nil {
		return nil, err
	}
	return &sshParams{taskBase: base, sshPayload: payload, Arguments: args}, nil
}
