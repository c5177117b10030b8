// Package sheets implements table.Store on top of the Google Sheets v4 API.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/heartmarshall/spiral-worksheets/internal/domain"
	"github.com/heartmarshall/spiral-worksheets/internal/table"
)

const (
	valueInput     = "USER_ENTERED"
	valueRender    = "FORMATTED_VALUE"
	defaultTimeout = 30 * time.Second
)

// Options configures the Sheets client.
type Options struct {
	SpreadsheetID   string
	CredentialsFile string
	CredentialsJSON string
	// Endpoint overrides the API base URL (for emulators and tests).
	Endpoint string
	Timeout  time.Duration
}

// Store reads and writes one spreadsheet.
type Store struct {
	svc     *gsheets.Service
	id      string
	timeout time.Duration
	log     *slog.Logger
}

var _ table.Store = (*Store)(nil)

// New creates a Store. Extra client options are appended after the
// credential options derived from opts.
func New(ctx context.Context, opts Options, logger *slog.Logger, extra ...option.ClientOption) (*Store, error) {
	if opts.SpreadsheetID == "" {
		return nil, fmt.Errorf("sheets: spreadsheet id is required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}

	clientOpts := ClientOptions(opts)
	if opts.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.Endpoint))
	}
	clientOpts = append(clientOpts, extra...)

	svc, err := gsheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("sheets: create service: %w: %w", domain.ErrBackendUnavailable, err)
	}

	return &Store{
		svc:     svc,
		id:      opts.SpreadsheetID,
		timeout: opts.Timeout,
		log:     logger.With("adapter", "sheets"),
	}, nil
}

// Ping checks that the spreadsheet is reachable with the configured
// credentials.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.svc.Spreadsheets.Get(s.id).Fields("spreadsheetId").Context(ctx).Do(); err != nil {
		return mapError("ping", err)
	}
	return nil
}

// ReadAll returns the formatted values of the whole sheet.
func (s *Store) ReadAll(ctx context.Context, sheet string) ([][]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.svc.Spreadsheets.Values.Get(s.id, quoteSheet(sheet)).
		ValueRenderOption(valueRender).
		Context(ctx).
		Do()
	if err != nil {
		return nil, mapError("read "+sheet, err)
	}

	rows := make([][]string, len(resp.Values))
	for i, raw := range resp.Values {
		row := make([]string, len(raw))
		for j, v := range raw {
			if v != nil {
				row[j] = fmt.Sprint(v)
			}
		}
		rows[i] = row
	}

	s.log.DebugContext(ctx, "sheet read", slog.String("sheet", sheet), slog.Int("rows", len(rows)))
	return rows, nil
}

// Append inserts rows after the last non-empty row of the sheet.
func (s *Store) Append(ctx context.Context, sheet string, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	body := &gsheets.ValueRange{Values: toValues(rows)}
	_, err := s.svc.Spreadsheets.Values.Append(s.id, quoteSheet(sheet), body).
		ValueInputOption(valueInput).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return mapError("append "+sheet, err)
	}

	s.log.InfoContext(ctx, "rows appended", slog.String("sheet", sheet), slog.Int("rows", len(rows)))
	return nil
}

// UpdateCells writes all cells in one values:batchUpdate call.
func (s *Store) UpdateCells(ctx context.Context, sheet string, cells ...table.Cell) error {
	if len(cells) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	data := make([]*gsheets.ValueRange, len(cells))
	for i, c := range cells {
		if c.Row < 1 || c.Col < 1 {
			return fmt.Errorf("sheets: update %s: invalid cell %d,%d: %w", sheet, c.Row, c.Col, domain.ErrValidation)
		}
		data[i] = &gsheets.ValueRange{
			Range:  cellRange(sheet, c.Row, c.Col),
			Values: [][]interface{}{{c.Value}},
		}
	}

	req := &gsheets.BatchUpdateValuesRequest{ValueInputOption: valueInput, Data: data}
	if _, err := s.svc.Spreadsheets.Values.BatchUpdate(s.id, req).Context(ctx).Do(); err != nil {
		return mapError("update "+sheet, err)
	}

	s.log.DebugContext(ctx, "cells updated", slog.String("sheet", sheet), slog.Int("cells", len(cells)))
	return nil
}

// ClearRows blanks whole rows in one values:batchClear call.
func (s *Store) ClearRows(ctx context.Context, sheet string, rows []int) error {
	if len(rows) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ranges := make([]string, 0, len(rows))
	for _, r := range uniqueDescending(rows) {
		if r < 1 {
			return fmt.Errorf("sheets: clear %s: invalid row %d: %w", sheet, r, domain.ErrValidation)
		}
		ranges = append(ranges, rowRange(sheet, r))
	}

	req := &gsheets.BatchClearValuesRequest{Ranges: ranges}
	if _, err := s.svc.Spreadsheets.Values.BatchClear(s.id, req).Context(ctx).Do(); err != nil {
		return mapError("clear "+sheet, err)
	}

	s.log.InfoContext(ctx, "rows cleared", slog.String("sheet", sheet), slog.Int("rows", len(ranges)))
	return nil
}

// DeleteRows removes rows with a single spreadsheet batchUpdate. Requests
// are ordered from the highest row down, and the API applies them in
// order, so no deletion shifts a later target.
func (s *Store) DeleteRows(ctx context.Context, sheet string, rows []int) error {
	if len(rows) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	sheetID, err := s.sheetID(ctx, sheet)
	if err != nil {
		return err
	}

	ordered := uniqueDescending(rows)
	requests := make([]*gsheets.Request, 0, len(ordered))
	for _, r := range ordered {
		if r < 1 {
			return fmt.Errorf("sheets: delete %s: invalid row %d: %w", sheet, r, domain.ErrValidation)
		}
		requests = append(requests, &gsheets.Request{
			DeleteDimension: &gsheets.DeleteDimensionRequest{
				Range: &gsheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(r - 1),
					EndIndex:   int64(r),
					// sheetId 0 and startIndex 0 are meaningful values.
					ForceSendFields: []string{"SheetId", "StartIndex"},
				},
			},
		})
	}

	req := &gsheets.BatchUpdateSpreadsheetRequest{Requests: requests}
	if _, err := s.svc.Spreadsheets.BatchUpdate(s.id, req).Context(ctx).Do(); err != nil {
		return mapError("delete "+sheet, err)
	}

	s.log.InfoContext(ctx, "rows deleted", slog.String("sheet", sheet), slog.Int("rows", len(requests)))
	return nil
}

func (s *Store) sheetID(ctx context.Context, sheet string) (int64, error) {
	resp, err := s.svc.Spreadsheets.Get(s.id).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, mapError("lookup "+sheet, err)
	}
	for _, sh := range resp.Sheets {
		if sh.Properties != nil && sh.Properties.Title == sheet {
			return sh.Properties.SheetId, nil
		}
	}
	return 0, fmt.Errorf("sheets: sheet %q: %w", sheet, domain.ErrNotFound)
}

func toValues(rows [][]string) [][]interface{} {
	out := make([][]interface{}, len(rows))
	for i, row := range rows {
		vals := make([]interface{}, len(row))
		for j, v := range row {
			vals[j] = v
		}
		out[i] = vals
	}
	return out
}

func uniqueDescending(rows []int) []int {
	out := slices.Clone(rows)
	slices.Sort(out)
	out = slices.Compact(out)
	slices.Reverse(out)
	return out
}

// mapError translates API and transport failures into domain errors.
func mapError(op string, err error) error {
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("sheets: %s: %w", op, err)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusNotFound:
			return fmt.Errorf("sheets: %s: %w: %w", op, domain.ErrNotFound, err)
		case apiErr.Code == http.StatusBadRequest && strings.Contains(apiErr.Message, "Unable to parse range"):
			return fmt.Errorf("sheets: %s: %w: %w", op, domain.ErrNotFound, err)
		case apiErr.Code == http.StatusUnauthorized,
			apiErr.Code == http.StatusForbidden,
			apiErr.Code == http.StatusTooManyRequests,
			apiErr.Code >= 500:
			return fmt.Errorf("sheets: %s: %w: %w", op, domain.ErrBackendUnavailable, err)
		}
		return fmt.Errorf("sheets: %s: %w", op, err)
	}

	// Network failures, timeouts and credential errors.
	return fmt.Errorf("sheets: %s: %w: %w", op, domain.ErrBackendUnavailable, err)
}
