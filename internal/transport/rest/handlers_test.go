package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/heartmarshall/spiral-worksheets/internal/domain"
	"github.com/heartmarshall/spiral-worksheets/internal/service/pipeline"
	"github.com/heartmarshall/spiral-worksheets/internal/service/review"
	"github.com/heartmarshall/spiral-worksheets/internal/service/worksheet"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type runnerMock struct {
	run    func(ctx context.Context, stage string) (pipeline.Report, error)
	recent func(ctx context.Context, limit int) ([]domain.Run, error)
}

func (m *runnerMock) Run(ctx context.Context, stage string) (pipeline.Report, error) {
	return m.run(ctx, stage)
}

func (m *runnerMock) RecentRuns(ctx context.Context, limit int) ([]domain.Run, error) {
	return m.recent(ctx, limit)
}

type reviewMock struct {
	decisions func(ctx context.Context, decision string) (review.DecisionResult, error)
	dashboard func(ctx context.Context) (review.Dashboard, error)
}

func (m *reviewMock) SetDecisions(ctx context.Context, decision string) (review.DecisionResult, error) {
	return m.decisions(ctx, decision)
}

func (m *reviewMock) Dashboard(ctx context.Context) (review.Dashboard, error) {
	return m.dashboard(ctx)
}

type rendererMock struct {
	render func(ctx context.Context, f worksheet.Filter) (worksheet.Bundle, error)
}

func (m *rendererMock) Render(ctx context.Context, f worksheet.Filter) (worksheet.Bundle, error) {
	return m.render(ctx, f)
}

func stageRequest(stage string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/stages/"+stage, nil)
	req.SetPathValue("stage", stage)
	return req
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return v
}

// ---------------------------------------------------------------------------
// PipelineHandler
// ---------------------------------------------------------------------------

func TestRunStage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		report   pipeline.Report
		err      error
		wantCode int
		wantErr  string
	}{
		{
			name:     "ok",
			report:   pipeline.Report{Stage: "import", Status: domain.RunOK},
			wantCode: http.StatusOK,
		},
		{
			name:     "item errors",
			report:   pipeline.Report{Stage: "import", Status: domain.RunPartial},
			wantCode: http.StatusMultiStatus,
		},
		{
			name:   "stopped midway",
			report: pipeline.Report{Stage: "promote", Status: domain.RunPartial},
			err: &domain.PartialError{
				Step: "remove review rows", Completed: []string{"append standby"}, Err: errors.New("quota"),
			},
			wantCode: http.StatusMultiStatus,
			wantErr:  "remove review rows",
		},
		{
			name:     "unknown stage",
			err:      domain.NewValidationError("stage", "unknown stage"),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "busy",
			err:      fmt.Errorf("run in progress: %w", domain.ErrConflict),
			wantCode: http.StatusConflict,
		},
		{
			name:     "backend down",
			report:   pipeline.Report{Stage: "import", Status: domain.RunFailed},
			err:      fmt.Errorf("read intake: %w", domain.ErrBackendUnavailable),
			wantCode: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var gotStage string
			h := NewPipelineHandler(&runnerMock{
				run: func(_ context.Context, stage string) (pipeline.Report, error) {
					gotStage = stage
					return tt.report, tt.err
				},
			}, newTestLogger())

			rec := httptest.NewRecorder()
			h.RunStage(rec, stageRequest("import"))

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			if gotStage != "import" {
				t.Errorf("stage = %q, want import", gotStage)
			}
			if tt.wantErr != "" && !strings.Contains(rec.Body.String(), tt.wantErr) {
				t.Errorf("body = %s, want mention of %q", rec.Body.String(), tt.wantErr)
			}
		})
	}
}

func TestRuns(t *testing.T) {
	t.Parallel()

	t.Run("default limit", func(t *testing.T) {
		t.Parallel()
		var gotLimit int
		h := NewPipelineHandler(&runnerMock{
			recent: func(_ context.Context, limit int) ([]domain.Run, error) {
				gotLimit = limit
				return []domain.Run{{Stage: "import", Status: domain.RunOK}}, nil
			},
		}, newTestLogger())

		rec := httptest.NewRecorder()
		h.Runs(rec, httptest.NewRequest(http.MethodGet, "/api/runs", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if gotLimit != 20 {
			t.Errorf("limit = %d, want 20", gotLimit)
		}
		runs := decodeBody[[]domain.Run](t, rec)
		if len(runs) != 1 || runs[0].Stage != "import" {
			t.Errorf("runs = %+v", runs)
		}
	})

	t.Run("bad limit", func(t *testing.T) {
		t.Parallel()
		h := NewPipelineHandler(&runnerMock{}, newTestLogger())

		rec := httptest.NewRecorder()
		h.Runs(rec, httptest.NewRequest(http.MethodGet, "/api/runs?limit=abc", nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("no run log", func(t *testing.T) {
		t.Parallel()
		h := NewPipelineHandler(&runnerMock{
			recent: func(context.Context, int) ([]domain.Run, error) {
				return nil, fmt.Errorf("run log: %w", domain.ErrNotFound)
			},
		}, newTestLogger())

		rec := httptest.NewRecorder()
		h.Runs(rec, httptest.NewRequest(http.MethodGet, "/api/runs?limit=5", nil))

		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}

// ---------------------------------------------------------------------------
// ReviewHandler
// ---------------------------------------------------------------------------

func TestSetDecisions(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		var got string
		h := NewReviewHandler(&reviewMock{
			decisions: func(_ context.Context, decision string) (review.DecisionResult, error) {
				got = decision
				return review.DecisionResult{Decision: decision, Updated: 3}, nil
			},
		}, newTestLogger())

		body := strings.NewReader(`{"decision":"Approve"}`)
		rec := httptest.NewRecorder()
		h.SetDecisions(rec, httptest.NewRequest(http.MethodPost, "/api/review/decisions", body))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if got != "Approve" {
			t.Errorf("decision = %q, want Approve", got)
		}
		res := decodeBody[review.DecisionResult](t, rec)
		if res.Updated != 3 {
			t.Errorf("updated = %d, want 3", res.Updated)
		}
	})

	t.Run("unknown field", func(t *testing.T) {
		t.Parallel()
		h := NewReviewHandler(&reviewMock{}, newTestLogger())

		body := strings.NewReader(`{"verdict":"Approve"}`)
		rec := httptest.NewRecorder()
		h.SetDecisions(rec, httptest.NewRequest(http.MethodPost, "/api/review/decisions", body))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("bad decision", func(t *testing.T) {
		t.Parallel()
		h := NewReviewHandler(&reviewMock{
			decisions: func(context.Context, string) (review.DecisionResult, error) {
				return review.DecisionResult{}, domain.NewValidationError("decision", "unknown decision")
			},
		}, newTestLogger())

		body := strings.NewReader(`{"decision":"Maybe"}`)
		rec := httptest.NewRecorder()
		h.SetDecisions(rec, httptest.NewRequest(http.MethodPost, "/api/review/decisions", body))

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
		resp := decodeBody[errorResponse](t, rec)
		if len(resp.Fields) != 1 || resp.Fields[0].Field != "decision" {
			t.Errorf("fields = %+v, want decision", resp.Fields)
		}
	})
}

func TestDashboard(t *testing.T) {
	t.Parallel()

	h := NewReviewHandler(&reviewMock{
		dashboard: func(context.Context) (review.Dashboard, error) {
			return review.Dashboard{Worksheets: 7, BankWords: 2}, nil
		},
	}, newTestLogger())

	rec := httptest.NewRecorder()
	h.Dashboard(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	d := decodeBody[review.Dashboard](t, rec)
	if d.Worksheets != 7 || d.BankWords != 2 {
		t.Errorf("dashboard = %+v", d)
	}
}

// ---------------------------------------------------------------------------
// WorksheetHandler
// ---------------------------------------------------------------------------

func TestRenderWorksheets(t *testing.T) {
	t.Parallel()

	pdf := worksheet.Bundle{
		ContentType: worksheet.ContentTypePDF,
		Filename:    "worksheet.pdf",
		Data:        []byte("%PDF-1.3 test"),
		Count:       1,
	}

	t.Run("pdf", func(t *testing.T) {
		t.Parallel()
		var got worksheet.Filter
		h := NewWorksheetHandler(&rendererMock{
			render: func(_ context.Context, f worksheet.Filter) (worksheet.Bundle, error) {
				got = f
				return pdf, nil
			},
		}, newTestLogger())

		body := strings.NewReader(`{"school":"Alpha","include_answers":true}`)
		rec := httptest.NewRecorder()
		h.Render(rec, httptest.NewRequest(http.MethodPost, "/api/worksheets", body))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if got.School != "Alpha" || got.IncludeAnswers == nil || !*got.IncludeAnswers {
			t.Errorf("filter = %+v", got)
		}
		if ct := rec.Header().Get("Content-Type"); ct != worksheet.ContentTypePDF {
			t.Errorf("Content-Type = %q", ct)
		}
		if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename="worksheet.pdf"` {
			t.Errorf("Content-Disposition = %q", cd)
		}
		if !bytes.Equal(rec.Body.Bytes(), pdf.Data) {
			t.Error("body does not match bundle data")
		}
	})

	t.Run("log append failed", func(t *testing.T) {
		t.Parallel()
		h := NewWorksheetHandler(&rendererMock{
			render: func(context.Context, worksheet.Filter) (worksheet.Bundle, error) {
				return pdf, &domain.PartialError{Step: "append worksheet log", Err: errors.New("quota")}
			},
		}, newTestLogger())

		rec := httptest.NewRecorder()
		h.Render(rec, httptest.NewRequest(http.MethodPost, "/api/worksheets", strings.NewReader(`{}`)))

		if rec.Code != http.StatusMultiStatus {
			t.Fatalf("status = %d, want 207", rec.Code)
		}
		if step := rec.Header().Get(PartialStepHeader); step != "append worksheet log" {
			t.Errorf("%s = %q", PartialStepHeader, step)
		}
		if rec.Body.Len() == 0 {
			t.Error("expected the bundle in the body")
		}
	})

	t.Run("nothing matched", func(t *testing.T) {
		t.Parallel()
		h := NewWorksheetHandler(&rendererMock{
			render: func(context.Context, worksheet.Filter) (worksheet.Bundle, error) {
				return worksheet.Bundle{}, fmt.Errorf("no standby items match: %w", domain.ErrNotFound)
			},
		}, newTestLogger())

		rec := httptest.NewRecorder()
		h.Render(rec, httptest.NewRequest(http.MethodPost, "/api/worksheets", strings.NewReader(`{"school":"Gamma"}`)))

		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("internal error hidden", func(t *testing.T) {
		t.Parallel()
		h := NewWorksheetHandler(&rendererMock{
			render: func(context.Context, worksheet.Filter) (worksheet.Bundle, error) {
				return worksheet.Bundle{}, errors.New("fpdf: secret path /etc/fonts")
			},
		}, newTestLogger())

		rec := httptest.NewRecorder()
		h.Render(rec, httptest.NewRequest(http.MethodPost, "/api/worksheets", strings.NewReader(`{}`)))

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want 500", rec.Code)
		}
		if strings.Contains(rec.Body.String(), "/etc/fonts") {
			t.Errorf("body leaks internal error: %s", rec.Body.String())
		}
	})
}
