// Command pipeline runs one pipeline step against the spreadsheet and
// prints its result as JSON.
//
// Usage:
//
//	pipeline import|questions|promote|all
//	pipeline -decision 保留 decide
//	pipeline dashboard
//
// The exit status is 1 when the step failed and 2 when it finished with
// failed items or stopped midway.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/heartmarshall/spiral-worksheets/internal/app"
	"github.com/heartmarshall/spiral-worksheets/internal/config"
	"github.com/heartmarshall/spiral-worksheets/internal/domain"
	"github.com/heartmarshall/spiral-worksheets/pkg/ctxutil"
)

func main() {
	decision := flag.String("decision", "", "decision to set on every pending review row (decide only)")
	operator := flag.String("operator", os.Getenv("USER"), "operator recorded in the run log")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: pipeline [-decision value] import|questions|promote|all|decide|dashboard")
		os.Exit(1)
	}
	cmd := flag.Arg(0)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = ctxutil.WithOperator(ctx, *operator)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := app.NewLogger(cfg.Log)

	c, err := app.Build(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("init: %v", err)
	}
	defer c.Close()

	var (
		out  any
		code int
	)
	switch cmd {
	case "decide":
		out, err = c.Review.SetDecisions(ctx, *decision)
	case "dashboard":
		out, err = c.Review.Dashboard(ctx)
	default:
		report, runErr := c.Runner.Run(ctx, cmd)
		out, err = report, runErr
		if report.Status == domain.RunPartial {
			code = 2
		}
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", cmd, err)
		if code == 0 {
			code = 1
		}
	}
	if out != nil {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(out); encErr != nil {
			log.Printf("encode result: %v", encErr)
		}
	}

	if code != 0 {
		c.Close()
		os.Exit(code)
	}
}
