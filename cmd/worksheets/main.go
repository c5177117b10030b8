// Command worksheets renders PDF worksheets from the Standby table, or
// reprints them from the worksheet log, and writes the bundle to a file.
//
// Usage:
//
//	worksheets -out week12 [-school 聖保羅] [-type 填空題] [-state Ready] [-answers]
//	worksheets -out reprint -source log -school 聖保羅
//
// A single worksheet is written as a PDF, several as a ZIP of PDFs. The
// extension of -out is set to match: week12 becomes week12.pdf or
// week12.zip.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/heartmarshall/spiral-worksheets/internal/app"
	"github.com/heartmarshall/spiral-worksheets/internal/config"
	"github.com/heartmarshall/spiral-worksheets/internal/domain"
	"github.com/heartmarshall/spiral-worksheets/internal/service/worksheet"
)

func main() {
	out := flag.String("out", "", "output file")
	source := flag.String("source", worksheet.SourceStandby, "standby or log")
	school := flag.String("school", "", "only this school")
	qtype := flag.String("type", "", "only this question type")
	state := flag.String("state", "", "only standby items in this state")
	answers := flag.Bool("answers", false, "print the answer key")
	flag.Parse()

	if *out == "" {
		fmt.Fprintln(os.Stderr, "Usage: worksheets -out file [-source standby|log] [-school s] [-type t] [-state s] [-answers]")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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

	f := worksheet.Filter{
		Source:       *source,
		School:       *school,
		QuestionType: *qtype,
		State:        *state,
	}
	flag.Visit(func(fl *flag.Flag) {
		if fl.Name == "answers" {
			f.IncludeAnswers = answers
		}
	})

	bundle, renderErr := c.Worksheets.Render(ctx, f)
	var pe *domain.PartialError
	if renderErr != nil && !errors.As(renderErr, &pe) {
		log.Fatalf("render: %v", renderErr)
	}

	path := outputPath(*out, bundle.Filename)
	if err := os.WriteFile(path, bundle.Data, 0o644); err != nil {
		log.Fatalf("write %s: %v", path, err)
	}
	fmt.Printf("Wrote %d worksheets to %s.\n", bundle.Count, path)

	if pe != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", renderErr)
		c.Close()
		os.Exit(2)
	}
}

// outputPath gives out the extension of the rendered bundle. A .pdf or
// .zip extension already on out is replaced; any other is kept.
func outputPath(out, bundleName string) string {
	want := filepath.Ext(bundleName)
	ext := filepath.Ext(out)
	switch strings.ToLower(ext) {
	case strings.ToLower(want):
		return out
	case ".pdf", ".zip":
		out = strings.TrimSuffix(out, ext)
	}
	return out + want
}
