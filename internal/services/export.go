package services

import (
	"bytes"
	"encoding/csv"
	"regexp"
	"strings"

	"github.com/soaringjerry/AnketBox/internal/models"
)

// utf8BOM lets spreadsheet imports detect the encoding.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ExportResponsesCSV renders the response table: a "respondent" column plus
// one column per question in survey order, one row per response. Multi-choice
// values join with ";". Fields containing commas, quotes or newlines are
// double-quote escaped by the writer. Output is UTF-8 with a BOM and CRLF
// records.
func ExportResponsesCSV(survey *models.Survey, responses []*models.Response) ([]byte, error) {
	if survey == nil {
		return nil, NewInvalidError("no survey is active")
	}
	buf := &bytes.Buffer{}
	buf.Write(utf8BOM)
	w := csv.NewWriter(buf)
	w.UseCRLF = true

	header := make([]string, 0, 1+len(survey.Questions))
	header = append(header, "respondent")
	for _, q := range survey.Questions {
		header = append(header, q.Text)
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, r := range responses {
		row := make([]string, 0, len(header))
		row = append(row, r.RespondentName)
		for i, q := range survey.Questions {
			a, _ := AnswerFor(r, q, i)
			row = append(row, a.Flat())
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

var unsafeFilename = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// CSVFilename derives a download filename from the survey title.
func CSVFilename(title string) string {
	name := unsafeFilename.ReplaceAllString(strings.TrimSpace(title), "_")
	name = strings.Trim(name, "_")
	if name == "" {
		name = "survey"
	}
	return name + ".csv"
}
