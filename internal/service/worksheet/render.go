package worksheet

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/spiral-worksheets/internal/domain"
	"github.com/heartmarshall/spiral-worksheets/internal/table"
)

// Content types of a Bundle.
const (
	ContentTypePDF = "application/pdf"
	ContentTypeZIP = "application/zip"
)

// Bundle is the rendered output: a single PDF, or a ZIP archive holding
// one PDF per item in item order.
type Bundle struct {
	ContentType string
	Filename    string
	Data        []byte
	Count       int
}

// Render builds one worksheet per matching item. Items rendered from the
// Standby table are recorded in the worksheet log afterwards; a failure
// to record them is returned as a *domain.PartialError together with the
// rendered bundle.
func (s *Service) Render(ctx context.Context, f Filter) (Bundle, error) {
	if err := f.Validate(); err != nil {
		return Bundle{}, err
	}

	date := s.now().In(s.cfg.Location).Format(s.cfg.DateFormat)

	pages, err := s.collect(ctx, f, date)
	if err != nil {
		return Bundle{}, err
	}
	if len(pages) == 0 {
		return Bundle{}, fmt.Errorf("no worksheet items match the filter: %w", domain.ErrNotFound)
	}

	font, err := s.font()
	if err != nil {
		return Bundle{}, err
	}

	includeAnswers := s.cfg.IncludeAnswers
	if f.IncludeAnswers != nil {
		includeAnswers = *f.IncludeAnswers
	}

	docs := make([][]byte, len(pages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for i, p := range pages {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := s.render(p, includeAnswers, font)
			if err != nil {
				return err
			}
			docs[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Bundle{}, err
	}

	bundle, err := pack(docs)
	if err != nil {
		return Bundle{}, err
	}

	s.log.InfoContext(ctx, "worksheets rendered",
		slog.String("source", f.source()),
		slog.Int("count", bundle.Count),
		slog.String("content_type", bundle.ContentType),
	)

	if f.source() == SourceStandby {
		if err := s.record(ctx, pages); err != nil {
			return bundle, &domain.PartialError{
				Step:      "append worksheet log",
				Completed: []string{fmt.Sprintf("rendered %d worksheets", bundle.Count)},
				Err:       err,
			}
		}
	}

	return bundle, nil
}

func (s *Service) collect(ctx context.Context, f Filter, date string) ([]page, error) {
	var pages []page

	if f.source() == SourceLog {
		wsLog, err := table.Load(ctx, s.store, s.sheets.WorksheetLog, table.WorksheetLogSchema)
		if err != nil {
			return nil, fmt.Errorf("load worksheet log: %w", err)
		}
		for _, r := range wsLog.Rows {
			rec := table.DecodeWorksheet(r)
			if !f.match(rec.School, rec.Type) {
				continue
			}
			pages = append(pages, newPage(rec.ID, rec.School, rec.Word, rec.Type, rec.Question, rec.Answer, rec.GeneratedDate))
		}
		return pages, nil
	}

	standby, err := table.Load(ctx, s.store, s.sheets.Standby, table.StandbySchema)
	if err != nil {
		return nil, fmt.Errorf("load standby: %w", err)
	}
	for _, r := range standby.Rows {
		item, err := table.DecodeStandby(r)
		if err != nil {
			s.log.WarnContext(ctx, "skipping invalid standby row", slog.Int("row", r.Number), slog.String("error", err.Error()))
			continue
		}
		if !f.match(item.School, item.Type) {
			continue
		}
		if f.State != "" && item.State.String() != f.State {
			continue
		}
		pages = append(pages, newPage(item.ID, item.School, item.Word, item.Type, item.Question, item.Answer, date))
	}
	return pages, nil
}

// record appends one worksheet log row per rendered page. Items whose ID
// is already in the log are not logged again.
func (s *Service) record(ctx context.Context, pages []page) error {
	wsLog, err := table.LoadOrInit(ctx, s.store, s.sheets.WorksheetLog, table.WorksheetLogSchema)
	if err != nil {
		return fmt.Errorf("load worksheet log: %w", err)
	}
	logged := make(map[string]bool, len(wsLog.Rows))
	for _, r := range wsLog.Rows {
		logged[r.Get(table.ColID)] = true
	}
	rows := make([][]string, 0, len(pages))
	for _, p := range pages {
		if p.ID != "" && logged[p.ID] {
			continue
		}
		logged[p.ID] = true
		rows = append(rows, table.EncodeWorksheet(wsLog, domain.WorksheetRecord{
			ID:            p.ID,
			School:        p.School,
			Word:          p.Word,
			Type:          p.Type,
			Question:      p.Question,
			Answer:        p.Answer,
			GeneratedDate: p.Date,
		}))
	}
	if len(rows) == 0 {
		return nil
	}
	if err := s.store.Append(ctx, s.sheets.WorksheetLog, rows); err != nil {
		return fmt.Errorf("append worksheet log: %w", err)
	}
	return nil
}

// pack returns a single document as is and several as a ZIP archive.
func pack(docs [][]byte) (Bundle, error) {
	if len(docs) == 1 {
		return Bundle{ContentType: ContentTypePDF, Filename: "worksheet.pdf", Data: docs[0], Count: 1}, nil
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for i, doc := range docs {
		w, err := zw.Create(entryName(i))
		if err != nil {
			return Bundle{}, fmt.Errorf("zip entry %d: %w", i+1, err)
		}
		if _, err := w.Write(doc); err != nil {
			return Bundle{}, fmt.Errorf("zip entry %d: %w", i+1, err)
		}
	}
	if err := zw.Close(); err != nil {
		return Bundle{}, fmt.Errorf("zip close: %w", err)
	}
	return Bundle{ContentType: ContentTypeZIP, Filename: "worksheets.zip", Data: buf.Bytes(), Count: len(docs)}, nil
}

func entryName(i int) string {
	return fmt.Sprintf("worksheet_%03d.pdf", i+1)
}
