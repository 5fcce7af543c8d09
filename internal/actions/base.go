package actions

import (
	"github.com/aretw0/crossflow/pkg/dag"
	"github.com/aretw0/crossflow/pkg/el"
	"github.com/aretw0/crossflow/pkg/workflow"
)

// taskBase carries the parameters every operator template shares.
type taskBase struct {
	TaskID         string
	TriggerRule    string
	PrepareCommand string
	Config         []workflow.Property
	Params         []workflow.Property
	Files          []string
	Archives       []string
}

func newBase(task *dag.Task, r *el.Resolver) (taskBase, error) {
	prepare, err := prepareCommand(r, task.Prepare)
	if err != nil {
		return taskBase{}, err
	}
	config, err := resolvedConfig(r, task.Config)
	if err != nil {
		return taskBase{}, err
	}
	params, err := resolvedParams(r, task.Params)
	if err != nil {
		return taskBase{}, err
	}
	files := make([]string, 0, len(task.Files))
	for _, f := range task.Files {
		val, err := r.Interpolate(f)
		if err != nil {
			return taskBase{}, err
		}
		files = append(files, val)
	}
	archives := make([]string, 0, len(task.Archives))
	for _, a := range task.Archives {
		val, err := r.Interpolate(a)
		if err != nil {
			return taskBase{}, err
		}
		archives = append(archives, val)
	}
	return taskBase{
		TaskID:         task.ID,
		TriggerRule:    task.TriggerRule,
		PrepareCommand: prepare,
		Config:         config,
		Params:         params,
		Files:          files,
		Archives:       archives,
	}, nil
}
