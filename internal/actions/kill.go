package actions

import (
	"github.com/aretw0/crossflow/pkg/dag"
	"github.com/aretw0/crossflow/pkg/el"
)

// killMapper renders failure-terminal tasks. The message may itself carry
// ${...} placeholders referencing the configuration mapping.
type killMapper struct{}

type killParams struct {
	TaskID      string
	TriggerRule string
	Message     string
}

func (m *killMapper) Template() string {
	return "kill.tpl"
}

func (m *killMapper) Imports() []string {
	return []string{"from airflow.operators import bash_operator"}
}

func (m *killMapper) Params(task *dag.Task, r *el.Resolver) (any, error) {
	msg, err := r.Interpolate(task.KillMessage)
	if err != nil {
		// Kill messages commonly reference runtime-only values
		// (wf:errorMessage and friends); those stay verbatim.
		msg = task.KillMessage
	}
	return &killParams{
		TaskID:      task.ID,
		TriggerRule: task.TriggerRule,
		Message:     msg,
	}, nil
}
