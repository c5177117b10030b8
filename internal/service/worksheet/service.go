// Package worksheet renders Standby items and worksheet log entries as
// printable A4 PDF worksheets.
package worksheet

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/heartmarshall/spiral-worksheets/internal/table"
)

const (
	defaultTitle       = "螺旋式學習工作紙"
	defaultFontFamily  = "KaiTi"
	defaultFontSize    = 12
	defaultConcurrency = 4
	defaultDateFormat  = "2006/01/02"
)

// Sheets names the tables the renderer reads and writes.
type Sheets struct {
	Standby      string
	WorksheetLog string
}

// Config holds the page and rendering settings.
type Config struct {
	Title string
	// FontPath points at a TrueType font with CJK coverage. Without it a
	// core font is used, which cannot show Chinese text.
	FontPath       string
	FontFamily     string
	FontSize       float64
	IncludeAnswers bool
	Concurrency    int
	DateFormat     string
	Location       *time.Location
}

// Service renders worksheets.
type Service struct {
	store  table.Store
	sheets Sheets
	cfg    Config
	font   func() ([]byte, error)
	now    func() time.Time
	log    *slog.Logger
}

// NewService creates a new worksheet renderer. The font file is read on
// first use.
func NewService(log *slog.Logger, store table.Store, sheets Sheets, cfg Config) *Service {
	if cfg.Title == "" {
		cfg.Title = defaultTitle
	}
	if cfg.FontFamily == "" {
		cfg.FontFamily = defaultFontFamily
	}
	if cfg.FontSize <= 0 {
		cfg.FontSize = defaultFontSize
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if cfg.DateFormat == "" {
		cfg.DateFormat = defaultDateFormat
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}

	s := &Service{
		store:  store,
		sheets: sheets,
		cfg:    cfg,
		now:    time.Now,
		log:    log.With("service", "worksheet"),
	}
	s.font = sync.OnceValues(s.loadFont)
	return s
}

func (s *Service) loadFont() ([]byte, error) {
	if s.cfg.FontPath == "" {
		s.log.Warn("worksheet.font_path is not set, falling back to a core font without CJK glyphs")
		return nil, nil
	}
	data, err := os.ReadFile(s.cfg.FontPath)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	return data, nil
}
