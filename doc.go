/*
Package crossflow is a deterministic translation engine that converts control-flow
workflow definitions (XML documents of actions, decisions, forks and joins) into
dependency-driven DAG artifacts for a scheduler.

It implements a "parse, transform, emit" pipeline: the parser validates the source
graph, the transformer rewrites control-flow semantics into dependency edges, and
the emitter renders a reproducible artifact. Control nodes (start, end, fork, join,
decision) are transparent in the output; only actions and failure terminals become
tasks.

# Key Features

  - Deterministic Output: the same input bundle always renders a byte-identical artifact.
  - Static Decisions: decision guards are evaluated at translation time against the
    job configuration; only the winning branch survives.
  - Placeholder Resolution: ${...} expressions in action payloads are substituted
    from job properties, with a closed set of supported functions.
  - Embeddable: the same pipeline backs the CLI, the library API and the HTTP server.

# Usage

Initialize a Converter over an input bundle (workflow.xml plus optional
job.properties) and run Convert:

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/crossflow"
	)

	func main() {
		conv, err := crossflow.New("./my-workflow")
		if err != nil {
			log.Fatal(err)
		}

		res, err := conv.Convert(context.Background(), "./out/my_workflow.py")
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("wrote %s with %d tasks", res.ArtifactPath, res.Graph.Len())
	}
*/
package crossflow
