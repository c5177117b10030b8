package sheets

import (
	"strconv"
	"strings"
)

// quoteSheet returns the sheet name as an A1 range prefix. Names are
// always quoted because most of ours are not ASCII.
func quoteSheet(sheet string) string {
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
}

// columnName converts a 1-based column number to its letter form (1 → A, 27 → AA).
func columnName(col int) string {
	var b []byte
	for col > 0 {
		col--
		b = append([]byte{byte('A' + col%26)}, b...)
		col /= 26
	}
	return string(b)
}

func cellRange(sheet string, row, col int) string {
	return quoteSheet(sheet) + "!" + columnName(col) + strconv.Itoa(row)
}

func rowRange(sheet string, row int) string {
	r := strconv.Itoa(row)
	return quoteSheet(sheet) + "!" + r + ":" + r
}
