// Package parser consumes a control-flow XML document and produces the
// validated node mapping plus the start-node reference.
//
// Parsing is two-pass: every top-level element is first built into a node
// (kind-specific invariants checked there), then a single integrity pass
// resolves all transition targets against the mapping and checks fork/join
// convergence. The parser never evaluates EL expressions; guards and
// parameter values stay raw strings for the resolver.
package parser

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/aretw0/crossflow/internal/logging"
	"github.com/aretw0/crossflow/pkg/workflow"
)

// Parser builds workflows from XML documents.
type Parser struct {
	logger    *slog.Logger
	startName string
}

// Option configures the parser.
type Option func(*Parser)

// WithLogger injects a structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Parser) {
		p.logger = l
	}
}

// WithStartName fixes the generated start-node name. The source element
// carries no name of its own, so a short random suffix is used by default;
// tests and reproducible runs pin it here.
func WithStartName(name string) Option {
	return func(p *Parser) {
		p.startName = name
	}
}

// New creates a parser.
func New(opts ...Option) *Parser {
	p := &Parser{
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.startName == "" {
		p.startName = "start_node_" + uuid.NewString()[:4]
	}
	return p
}

// ParseFile parses the workflow document at path.
func (p *Parser) ParseFile(path string) (*workflow.Workflow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workflow document: %w", err)
	}
	defer f.Close()
	return p.Parse(f)
}

// ParseBytes parses an in-memory workflow document.
func (p *Parser) ParseBytes(data []byte) (*workflow.Workflow, error) {
	return p.Parse(bytes.NewReader(data))
}

// Parse reads one workflow document and returns the validated node graph.
func (p *Parser) Parse(r io.Reader) (*workflow.Workflow, error) {
	var root element
	if err := xml.NewDecoder(r).Decode(&root); err != nil {
		return nil, fmt.Errorf("failed to decode workflow XML: %w", err)
	}
	if root.tag() != "workflow-app" {
		return nil, fmt.Errorf("unexpected root element <%s>, want <workflow-app>", root.tag())
	}

	name := root.attr("name")
	seen := make(map[string]bool)
	var nodes []*workflow.Node
	startCount := 0

	for i := range root.Children {
		child := &root.Children[i]
		node, err := p.buildNode(child)
		if err != nil {
			return nil, err
		}
		if node == nil {
			// Non-node children (e.g. global, parameters) pass through.
			continue
		}
		if node.Kind == workflow.KindStart {
			startCount++
			if startCount > 1 {
				return nil, &workflow.MalformedNodeError{Node: node.Name, Reason: "workflow must declare exactly one start node"}
			}
		}
		if seen[node.Name] {
			return nil, &workflow.DuplicateNodeError{Node: node.Name}
		}
		seen[node.Name] = true
		nodes = append(nodes, node)
		p.logger.Debug("parsed node", "node", node.Name, "kind", node.Kind)
	}

	if startCount == 0 {
		return nil, &workflow.MalformedNodeError{Node: p.startName, Reason: "workflow must declare exactly one start node"}
	}

	wf := workflow.NewWorkflow(name, p.startName, nodes)
	if err := checkIntegrity(wf); err != nil {
		return nil, err
	}
	if err := checkForkJoin(wf); err != nil {
		return nil, err
	}

	p.logger.Info("parsed workflow", "workflow", name, "nodes", wf.Len())
	return wf, nil
}

func (p *Parser) buildNode(el *element) (*workflow.Node, error) {
	switch el.tag() {
	case "start":
		return p.buildStart(el)
	case "end":
		return buildEnd(el)
	case "kill":
		return buildKill(el)
	case "fork":
		return buildFork(el)
	case "join":
		return buildJoin(el)
	case "decision":
		return buildDecision(el)
	case "action":
		return buildAction(el)
	case "global", "parameters", "credentials", "sla":
		// Known non-node sections, ignored.
		return nil, nil
	}
	return nil, &workflow.MalformedNodeError{Node: el.attr("name"), Reason: fmt.Sprintf("unrecognized node kind <%s>", el.tag())}
}

func (p *Parser) buildStart(el *element) (*workflow.Node, error) {
	to := el.attr("to")
	if to == "" {
		return nil, &workflow.MalformedNodeError{Node: p.startName, Reason: "start node is missing its to transition"}
	}
	return &workflow.Node{
		Name:  p.startName,
		Kind:  workflow.KindStart,
		Start: &workflow.StartSpec{To: to},
	}, nil
}

func buildEnd(el *element) (*workflow.Node, error) {
	name := el.attr("name")
	if name == "" {
		return nil, &workflow.MalformedNodeError{Node: "end", Reason: "end node is missing its name"}
	}
	return &workflow.Node{Name: name, Kind: workflow.KindEnd}, nil
}

func buildKill(el *element) (*workflow.Node, error) {
	name := el.attr("name")
	if name == "" {
		return nil, &workflow.MalformedNodeError{Node: "kill", Reason: "kill node is missing its name"}
	}
	spec := &workflow.KillSpec{}
	if msg := el.find("message"); msg != nil {
		spec.Message = strings.TrimSpace(msg.Text)
	}
	return &workflow.Node{Name: name, Kind: workflow.KindKill, Kill: spec}, nil
}

func buildFork(el *element) (*workflow.Node, error) {
	name := el.attr("name")
	if name == "" {
		return nil, &workflow.MalformedNodeError{Node: "fork", Reason: "fork node is missing its name"}
	}
	spec := &workflow.ForkSpec{}
	for _, path := range el.findAll("path") {
		start := path.attr("start")
		if start == "" {
			return nil, &workflow.MalformedNodeError{Node: name, Reason: "fork path is missing its start attribute"}
		}
		spec.Paths = append(spec.Paths, start)
	}
	if len(spec.Paths) < 2 {
		return nil, &workflow.MalformedNodeError{Node: name, Reason: "fork must declare at least two paths"}
	}
	return &workflow.Node{Name: name, Kind: workflow.KindFork, Fork: spec}, nil
}

func buildJoin(el *element) (*workflow.Node, error) {
	name := el.attr("name")
	if name == "" {
		return nil, &workflow.MalformedNodeError{Node: "join", Reason: "join node is missing its name"}
	}
	to := el.attr("to")
	if to == "" {
		return nil, &workflow.MalformedNodeError{Node: name, Reason: "join node is missing its to transition"}
	}
	return &workflow.Node{Name: name, Kind: workflow.KindJoin, Join: &workflow.JoinSpec{To: to}}, nil
}

func buildDecision(el *element) (*workflow.Node, error) {
	name := el.attr("name")
	if name == "" {
		return nil, &workflow.MalformedNodeError{Node: "decision", Reason: "decision node is missing its name"}
	}
	sw := el.find("switch")
	if sw == nil {
		return nil, &workflow.MalformedNodeError{Node: name, Reason: "decision node is missing its switch element"}
	}

	spec := &workflow.DecisionSpec{}
	for i := range sw.Children {
		child := &sw.Children[i]
		switch child.tag() {
		case "case":
			to := child.attr("to")
			if to == "" {
				return nil, &workflow.MalformedNodeError{Node: name, Reason: "decision case is missing its to attribute"}
			}
			spec.Cases = append(spec.Cases, workflow.Case{
				Guard: strings.TrimSpace(child.Text),
				To:    to,
			})
		case "default":
			if spec.Default != "" {
				return nil, &workflow.MalformedNodeError{Node: name, Reason: "decision declares more than one default"}
			}
			to := child.attr("to")
			if to == "" {
				return nil, &workflow.MalformedNodeError{Node: name, Reason: "decision default is missing its to attribute"}
			}
			spec.Default = to
		}
	}
	if len(spec.Cases) == 0 {
		return nil, &workflow.MalformedNodeError{Node: name, Reason: "decision case list must be non-empty"}
	}
	if spec.Default == "" {
		return nil, &workflow.MalformedNodeError{Node: name, Reason: "decision node is missing its default"}
	}
	return &workflow.Node{Name: name, Kind: workflow.KindDecision, Decision: spec}, nil
}

// structural action children that never belong to the tool payload.
var actionControlTags = map[string]bool{
	"ok":    true,
	"error": true,
	"info":  true,
}

func buildAction(el *element) (*workflow.Node, error) {
	name := el.attr("name")
	if name == "" {
		return nil, &workflow.MalformedNodeError{Node: "action", Reason: "action node is missing its name"}
	}

	var payload *element
	for i := range el.Children {
		if !actionControlTags[el.Children[i].tag()] {
			payload = &el.Children[i]
			break
		}
	}
	if payload == nil {
		return nil, &workflow.MalformedNodeError{Node: name, Reason: "action node is missing its tool payload element"}
	}

	ok := el.find("ok")
	if ok == nil || ok.attr("to") == "" {
		return nil, &workflow.MalformedNodeError{Node: name, Reason: "action node is missing its ok transition"}
	}
	errEl := el.find("error")
	if errEl == nil || errEl.attr("to") == "" {
		return nil, &workflow.MalformedNodeError{Node: name, Reason: "action node is missing its error transition"}
	}

	spec := &workflow.ActionSpec{
		Type:  payload.tag(),
		OK:    ok.attr("to"),
		Error: errEl.attr("to"),
	}
	if err := parsePayload(name, payload, spec); err != nil {
		return nil, err
	}
	return &workflow.Node{Name: name, Kind: workflow.KindAction, Action: spec}, nil
}

func parsePayload(name string, payload *element, spec *workflow.ActionSpec) error {
	for i := range payload.Children {
		child := &payload.Children[i]
		switch child.tag() {
		case "prepare":
			for j := range child.Children {
				op := &child.Children[j]
				if op.tag() != "mkdir" && op.tag() != "delete" {
					return &workflow.MalformedNodeError{Node: name, Reason: fmt.Sprintf("unsupported prepare operation <%s>", op.tag())}
				}
				path := op.attr("path")
				if path == "" {
					return &workflow.MalformedNodeError{Node: name, Reason: "prepare step is missing its path attribute"}
				}
				spec.Prepare = append(spec.Prepare, workflow.PrepareStep{Op: op.tag(), Path: path})
			}
		case "configuration":
			for _, prop := range child.findAll("property") {
				propName := prop.find("name")
				propValue := prop.find("value")
				if propName == nil || strings.TrimSpace(propName.Text) == "" {
					return &workflow.MalformedNodeError{Node: name, Reason: "configuration property is missing its name"}
				}
				value := ""
				if propValue != nil {
					value = strings.TrimSpace(propValue.Text)
				}
				spec.Config = append(spec.Config, workflow.Property{
					Name:  strings.TrimSpace(propName.Text),
					Value: value,
				})
			}
		case "param":
			spec.Params = append(spec.Params, strings.TrimSpace(child.Text))
		case "file":
			spec.Files = append(spec.Files, strings.TrimSpace(child.Text))
		case "archive":
			spec.Archives = append(spec.Archives, strings.TrimSpace(child.Text))
		default:
			spec.Elements = append(spec.Elements, workflow.Element{
				Tag:   child.tag(),
				Attrs: child.attrMap(),
				Text:  strings.TrimSpace(child.Text),
			})
		}
	}
	return nil
}
