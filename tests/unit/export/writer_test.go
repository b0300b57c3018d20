package export_test

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"snapdoc/internal/export"
)

func sampleSheet() *export.GuestSheet {
	return &export.GuestSheet{
		Fields: []string{"firstName", "lastName", "roomNumber", "hasLuggage"},
		Rows: []export.GuestRow{
			{Position: 1, Values: map[string]any{
				"firstName": "Ana", "lastName": "Silva", "roomNumber": float64(204), "hasLuggage": true,
			}},
			{Position: 3, Values: map[string]any{
				"firstName": "Luis", "lastName": nil, "hasLuggage": false,
			}},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, sampleSheet().WriteCSV(&buf))

	raw := buf.Bytes()
	assert.True(t, bytes.HasPrefix(raw, export.BOM), "Excel needs the BOM")

	records, err := csv.NewReader(bytes.NewReader(raw[len(export.BOM):])).ReadAll()
	assert.NoError(t, err)
	assert.Len(t, records, 3)
	assert.Equal(t, []string{"Position", "firstName", "lastName", "roomNumber", "hasLuggage"}, records[0])
	assert.Equal(t, []string{"1", "Ana", "Silva", "204", "Yes"}, records[1])
	assert.Equal(t, []string{"3", "Luis", "", "", "No"}, records[2])
}

func TestWriteCSV_EmptySheetStillHasHeader(t *testing.T) {
	sheet := &export.GuestSheet{Fields: []string{"fullName"}}

	var buf bytes.Buffer
	assert.NoError(t, sheet.WriteCSV(&buf))

	records, err := csv.NewReader(bytes.NewReader(buf.Bytes()[len(export.BOM):])).ReadAll()
	assert.NoError(t, err)
	assert.Equal(t, [][]string{{"Position", "fullName"}}, records)
}

func TestWriteXLSX_ProducesWorkbook(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, sampleSheet().WriteXLSX(&buf))

	// xlsx is a zip archive
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("PK")))
	assert.Greater(t, buf.Len(), 1000)
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"guest_form":             "guest_form",
		"Hotel Check-in (2024)":  "Hotel_Check-in_2024",
		"café / menü":            "caf_men",
		"___already__odd___":     "already_odd",
		strings.Repeat("a", 150): strings.Repeat("a", 100),
	}
	for input, want := range cases {
		assert.Equal(t, want, export.SanitizeFilename(input), "input %q", input)
	}
}

func TestBuildFilename(t *testing.T) {
	name := export.BuildFilename("guest form", "csv")
	assert.Regexp(t, `^guest_form_\d{4}-\d{2}-\d{2}\.csv$`, name)
}
