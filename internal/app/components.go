package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/heartmarshall/spiral-worksheets/internal/adapter/postgres"
	"github.com/heartmarshall/spiral-worksheets/internal/adapter/postgres/migrations"
	"github.com/heartmarshall/spiral-worksheets/internal/adapter/postgres/runlog"
	"github.com/heartmarshall/spiral-worksheets/internal/adapter/provider/anthropic"
	"github.com/heartmarshall/spiral-worksheets/internal/adapter/provider/deepseek"
	"github.com/heartmarshall/spiral-worksheets/internal/adapter/sheets"
	"github.com/heartmarshall/spiral-worksheets/internal/config"
	"github.com/heartmarshall/spiral-worksheets/internal/llm"
	"github.com/heartmarshall/spiral-worksheets/internal/service/intake"
	"github.com/heartmarshall/spiral-worksheets/internal/service/pipeline"
	"github.com/heartmarshall/spiral-worksheets/internal/service/promotion"
	"github.com/heartmarshall/spiral-worksheets/internal/service/questions"
	"github.com/heartmarshall/spiral-worksheets/internal/service/review"
	"github.com/heartmarshall/spiral-worksheets/internal/service/worksheet"
	"github.com/heartmarshall/spiral-worksheets/internal/table"
)

// Components holds the wired services shared by the server and the CLIs.
type Components struct {
	Sheets     *sheets.Store
	Runner     *pipeline.Runner
	Review     *review.Service
	Worksheets *worksheet.Service

	pool *pgxpool.Pool
}

// Build connects to the spreadsheet, the language model and, when a DSN is
// configured, the run log database, and wires every service on top.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Components, error) {
	store, err := sheets.New(ctx, sheets.Options{
		SpreadsheetID:   cfg.Sheets.SpreadsheetID,
		CredentialsFile: cfg.Sheets.CredentialsFile,
		CredentialsJSON: cfg.Sheets.CredentialsJSON,
		Endpoint:        cfg.Sheets.Endpoint,
		Timeout:         cfg.Sheets.Timeout,
	}, logger)
	if err != nil {
		return nil, err
	}

	completer := llm.WithRetry(newCompleter(cfg.LLM, logger), llm.RetryConfig{
		MaxRetries:      cfg.LLM.MaxRetries,
		InitialInterval: cfg.LLM.RetryInitialInterval,
		MaxInterval:     cfg.LLM.RetryMaxInterval,
	}, logger)

	c := &Components{Sheets: store}
	c.wireServices(cfg, store, completer, logger)

	if cfg.Database.Enabled() {
		if err := c.openRunLog(ctx, cfg.Database, logger); err != nil {
			return nil, err
		}
	}

	return c, nil
}

func (c *Components) wireServices(cfg *config.Config, store table.Store, completer llm.Completer, logger *slog.Logger) {
	sh := cfg.Sheets

	importer := intake.NewService(logger, store, completer,
		intake.Sheets{Intake: sh.IntakeSheet, Reference: sh.ReferenceSheet, Review: sh.ReviewSheet},
		intake.Config{
			Audience:    cfg.Pipeline.Audience,
			Temperature: cfg.LLM.Temperature,
			Policy:      cfg.Pipeline.MissingWordPolicy,
			Attempts:    cfg.Pipeline.SentenceAttempts,
		},
	)
	generator := questions.NewService(logger, store, completer, sh.ReviewSheet, cfg.LLM.Temperature)
	promoter := promotion.NewService(logger, store,
		promotion.Sheets{Review: sh.ReviewSheet, Standby: sh.StandbySheet, Reference: sh.ReferenceSheet},
		promotion.Config{
			Removal:    cfg.Pipeline.Removal,
			SaveToBank: cfg.Pipeline.SaveToBank,
			DateFormat: cfg.Pipeline.DateFormat,
			Location:   cfg.Pipeline.Location,
		},
	)

	c.Runner = pipeline.NewRunner(logger, importer, generator, promoter)
	c.Review = review.NewService(logger, store, review.Sheets{
		Intake:       sh.IntakeSheet,
		Review:       sh.ReviewSheet,
		Standby:      sh.StandbySheet,
		WorksheetLog: sh.WorksheetLogSheet,
		Reference:    sh.ReferenceSheet,
	})
	c.Worksheets = worksheet.NewService(logger, store,
		worksheet.Sheets{Standby: sh.StandbySheet, WorksheetLog: sh.WorksheetLogSheet},
		worksheet.Config{
			Title:          cfg.Worksheet.Title,
			FontPath:       cfg.Worksheet.FontPath,
			FontFamily:     cfg.Worksheet.FontFamily,
			FontSize:       cfg.Worksheet.FontSize,
			IncludeAnswers: cfg.Worksheet.IncludeAnswers,
			Concurrency:    cfg.Worksheet.Concurrency,
			DateFormat:     cfg.Pipeline.DateFormat,
			Location:       cfg.Pipeline.Location,
		},
	)
}

func (c *Components) openRunLog(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) error {
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return err
	}

	// goose requires *sql.DB.
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	if err := migrations.Up(ctx, db, logger); err != nil {
		pool.Close()
		return fmt.Errorf("migrate run log: %w", err)
	}

	c.pool = pool
	c.Runner.WithRunLog(runlog.New(pool), postgres.NewTxManager(pool), cfg.RunRetention)
	logger.Info("run log enabled", slog.Duration("retention", cfg.RunRetention))
	return nil
}

// Database returns the run log pool, or nil when the run log is disabled.
func (c *Components) Database() *pgxpool.Pool { return c.pool }

// Close releases the database pool.
func (c *Components) Close() {
	if c.pool != nil {
		c.pool.Close()
	}
}

func newCompleter(cfg config.LLMConfig, logger *slog.Logger) llm.Completer {
	if cfg.Provider == "anthropic" {
		return anthropic.NewProvider(anthropic.Options{
			APIKey:    cfg.APIKey,
			BaseURL:   cfg.BaseURL,
			Model:     cfg.Model,
			Persona:   cfg.Persona,
			MaxTokens: cfg.MaxTokens,
			Timeout:   cfg.Timeout,
		}, logger)
	}
	return deepseek.NewProvider(deepseek.Options{
		APIKey:    cfg.APIKey,
		BaseURL:   cfg.BaseURL,
		Model:     cfg.Model,
		Persona:   cfg.Persona,
		MaxTokens: cfg.MaxTokens,
		Timeout:   cfg.Timeout,
	}, logger)
}
