// Command ragjudge runs the RAG auto-judge workflow: nugget creation,
// qrels grading, and leaderboard judging, driven by a workflow YAML file.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/minnaeval/ragjudge/internal/application"
)

func main() {
	var (
		workflowPath = flag.String("workflow", "workflow.yml", "Path to the workflow YAML file")
		phase        = flag.String("phase", application.PhaseAll, "Phase to run: nuggets, qrels, judge, or all")
	)
	flag.Parse()

	config, err := application.LoadWorkflowConfig(*workflowPath)
	if err != nil {
		log.Fatalf("load workflow: %v", err)
	}

	workflow, err := application.NewWorkflow(config, prometheus.NewRegistry())
	if err != nil {
		log.Fatalf("build workflow: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := workflow.Run(ctx, *phase); err != nil {
		log.Fatalf("run %s: %v", *phase, err)
	}
}
