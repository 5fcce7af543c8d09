package actions

import (
	"fmt"

	"github.com/aretw0/crossflow/pkg/dag"
	"github.com/aretw0/crossflow/pkg/el"
	"github.com/aretw0/crossflow/pkg/workflow"
)

type fsMapper struct{}

// fsSubOp is one filesystem operation expanded from the payload, rendered as
// its own sub-task chained after the previous one.
type fsSubOp struct {
	TaskID  string
	Command string
}

type fsParams struct {
	taskBase
	SubOps []fsSubOp
	// Chain holds consecutive (upstream, downstream) sub-task pairs.
	Chain [][2]string
}

func (m *fsMapper) Template() string {
	return "fs.tpl"
}

func (m *fsMapper) Imports() []string {
	return []string{
		"from airflow.operators import dummy_operator",
		"from airflow.operators import bash_operator",
	}
}

func (m *fsMapper) Params(task *dag.Task, r *el.Resolver) (any, error) {
	base, err := newBase(task, r)
	if err != nil {
		return nil, err
	}

	params := &fsParams{taskBase: base}
	for i, e := range task.Elements {
		cmd, err := fsCommand(e, r)
		if err != nil {
			return nil, fmt.Errorf("fs action %q: %w", task.Source, err)
		}
		params.SubOps = append(params.SubOps, fsSubOp{
			TaskID:  fmt.Sprintf("%s_fs_%d", task.ID, i),
			Command: cmd,
		})
	}
	for i := 1; i < len(params.SubOps); i++ {
		params.Chain = append(params.Chain, [2]string{params.SubOps[i-1].TaskID, params.SubOps[i].TaskID})
	}
	return params, nil
}

func fsCommand(e workflow.Element, r *el.Resolver) (string, error) {
	attr := func(name string) (string, error) {
		return r.Interpolate(e.Attrs[name])
	}
	path, err := attr("path")
	if err != nil {
		return "", err
	}

	switch e.Tag {
	case "mkdir":
		return "fs -mkdir " + path, nil
	case "delete":
		cmd := "fs -rm -r " + path
		if e.Attrs["skip-trash"] == "true" {
			cmd += " -skipTrash"
		}
		return cmd, nil
	case "move":
		source, err := attr("source")
		if err != nil {
			return "", err
		}
		target, err := attr("target")
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("fs -mv %s %s", source, target), nil
	case "chmod":
		perm, err := attr("permissions")
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("fs -chmod%s %s '%s'", recursiveFlag(e), path, perm), nil
	case "touchz":
		return "fs -touchz " + path, nil
	case "chgrp":
		group, err := attr("group")
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("fs -chgrp%s %s %s", recursiveFlag(e), path, group), nil
	case "setrep":
		factor, err := attr("replication-factor")
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("fs -setrep %s %s", factor, path), nil
	}
	return "", fmt.Errorf("unknown fs operation <%s>", e.Tag)
}

// Endpoints returns the first and last rendered sub-task of a task. Most
// actions render a single operator; fs actions expand into a chain, so edges
// into the task enter at the first sub-operation and edges out leave from
// the last.
func Endpoints(task *dag.Task) (first, last string) {
	if task.ActionType != "fs" || len(task.Elements) == 0 {
		return task.ID, task.ID
	}
	return fmt.Sprintf("%s_fs_0", task.ID), fmt.Sprintf("%s_fs_%d", task.ID, len(task.Elements)-1)
}

func recursiveFlag(e workflow.Element) string {
	if e.Attrs["recursive"] == "true" {
		return " -R"
	}
	return ""
}
