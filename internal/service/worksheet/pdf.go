package worksheet

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/heartmarshall/spiral-worksheets/internal/domain"
)

const (
	coreFont   = "Helvetica"
	margin     = 20.0
	lineHeight = 8.0
	pageWidth  = 210.0
)

// page is the content of one worksheet.
type page struct {
	ID       string
	School   string
	Date     string
	Word     string
	Type     domain.QuestionType
	Question string
	Answer   string
}

// newPage prepares an item for printing: the marker is removed and cloze
// questions get the word blanked out.
func newPage(id, school, word string, qt domain.QuestionType, question, answer, date string) page {
	question = domain.StripMarker(question)
	if qt == domain.QuestionCloze {
		question = domain.BlankCloze(question, word)
	}
	return page{
		ID:       id,
		School:   school,
		Date:     date,
		Word:     word,
		Type:     qt,
		Question: question,
		Answer:   domain.StripMarker(answer),
	}
}

// render draws one A4 worksheet. font is the TrueType font data, or nil
// for the core font fallback.
func (s *Service) render(p page, includeAnswers bool, font []byte) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.SetTitle(s.cfg.Title, true)

	family := coreFont
	tr := func(str string) string { return str }
	if font != nil {
		pdf.AddUTF8FontFromBytes(s.cfg.FontFamily, "", font)
		family = s.cfg.FontFamily
	} else {
		tr = pdf.UnicodeTranslatorFromDescriptor("")
	}

	size := s.cfg.FontSize
	pdf.AddPage()

	pdf.SetFont(family, "", size+6)
	pdf.CellFormat(0, lineHeight+4, tr(s.cfg.Title), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont(family, "", size)
	field := func(label, value string) {
		pdf.CellFormat(0, lineHeight, tr(label+"："+value), "", 1, "L", false, 0, "")
	}
	field("學校", p.School)
	field("日期", p.Date)
	field("學習詞語", p.Word)
	field("題型", p.Type.String())
	pdf.Ln(4)

	pdf.MultiCell(0, lineHeight, tr("題目："+p.Question), "", "L", false)
	pdf.Ln(6)

	pdf.CellFormat(0, lineHeight, tr("答："), "", 1, "L", false, 0, "")
	for i := 0; i < 3; i++ {
		y := pdf.GetY() + lineHeight
		pdf.Line(margin, y, pageWidth-margin, y)
		pdf.SetY(y)
	}

	if includeAnswers {
		pdf.Ln(lineHeight * 2)
		pdf.SetFont(family, "", size-2)
		pdf.MultiCell(0, lineHeight, tr("參考答案："+p.Answer), "T", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", p.ID, err)
	}
	return buf.Bytes(), nil
}
