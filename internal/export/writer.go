package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// GuestSheet is an export-ready tabular view of a guest form
// extraction: one row per guest, columns in template field order.
type GuestSheet struct {
	Fields []string
	Rows   []GuestRow
}

// GuestRow is a single guest keyed by template field name. Position is
// the 1-based column index on the scanned form.
type GuestRow struct {
	Position int
	Values   map[string]any
}

// Header returns the CSV/XLSX header row: Position plus the template
// fields in order.
func (s *GuestSheet) Header() []string {
	header := make([]string, 0, len(s.Fields)+1)
	header = append(header, "Position")
	header = append(header, s.Fields...)
	return header
}

// Row renders one guest as strings in header order.
func (s *GuestSheet) Row(guest GuestRow) []string {
	row := make([]string, 0, len(s.Fields)+1)
	row = append(row, strconv.Itoa(guest.Position))
	for _, field := range s.Fields {
		row = append(row, formatValue(guest.Values[field]))
	}
	return row
}

// WriteCSV writes the sheet as BOM-prefixed CSV.
func (s *GuestSheet) WriteCSV(w io.Writer) error {
	if _, err := w.Write(BOM); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(s.Header()); err != nil {
		return err
	}
	for _, guest := range s.Rows {
		if err := cw.Write(s.Row(guest)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// formatValue renders a decoded JSON scalar for a spreadsheet cell.
func formatValue(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		if value {
			return "Yes"
		}
		return "No"
	default:
		return fmt.Sprintf("%v", value)
	}
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses
// consecutive underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for the Content-Disposition
// header. Format: {sanitized_name}_{YYYY-MM-DD}.{ext}
func BuildFilename(name, ext string) string {
	sanitized := SanitizeFilename(name)
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("%s_%s.%s", sanitized, date, ext)
}
