package actions

import (
	"github.com/aretw0/crossflow/pkg/dag"
	"github.com/aretw0/crossflow/pkg/el"
)

type sparkMapper struct{}

type sparkPayload struct {
	Master    string `mapstructure:"master"`
	Name      string `mapstructure:"name"`
	Class     string `mapstructure:"class"`
	Jar       string `mapstructure:"jar"`
	SparkOpts string `mapstructure:"spark-opts"`
}

type sparkParams struct {
	taskBase
	sparkPayload
	Arguments []string
}

func (m *sparkMapper) Template() string {
	return "spark.tpl"
}

func (m *sparkMapper) Imports() []string {
	return []string{
		"from airflow.utils import dates",
		"from airflow.contrib.operators import dataproc_operator",
	}
}

func (m *sparkMapper) Params(task *dag.Task, r *el.Resolver) (any, error) {
	base, err := newBase(task, r)
	if err != nil {
		return nil, err
	}
	var payload sparkPayload
	if err := decodePayload(task, &payload); err != nil {
		return nil, err
	}
	if err := interpolateAll(r, &payload.Master, &payload.Name, &payload.Class, &payload.Jar, &payload.SparkOpts); err != nil {
		return nil, err
	}
	args, err := elementTexts(r, task, "arg")
	if err != nil {
		return nil, err
	}
	return &sparkParams{taskBase: base, sparkPayload: payload, Arguments: args}, nil
}
