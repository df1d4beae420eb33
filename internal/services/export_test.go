package services

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/soaringjerry/AnketBox/internal/models"
)

func TestExportResponsesCSV(t *testing.T) {
	sv := &models.Survey{
		Title: "Feedback",
		Questions: []*models.Question{
			{ID: "q1", Text: "company", Type: models.ShortText},
			{ID: "q2", Text: "comment", Type: models.LongText},
			{ID: "q3", Text: "pick", Type: models.MultiChoice, Options: []string{"A", "B", "C"}},
		},
	}
	rs := []*models.Response{{
		RespondentName: `Alice, Inc.`,
		Completed:      true,
		Answers: map[string]models.Answer{
			"q1": {Text: "Acme"},
			"q2": {Text: `He said "hi"`},
			"q3": {Multi: true, Choices: []string{"A", "C"}},
		},
	}}

	b, err := ExportResponsesCSV(sv, rs)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !bytes.HasPrefix(b, []byte{0xEF, 0xBB, 0xBF}) {
		t.Fatal("missing UTF-8 BOM")
	}
	body := string(b[3:])
	if !strings.Contains(body, `"Alice, Inc."`) {
		t.Fatalf("comma field not quoted:\n%s", body)
	}
	if !strings.Contains(body, `"He said ""hi"""`) {
		t.Fatalf("quote field not escaped:\n%s", body)
	}
	if !strings.Contains(body, "\r\n") {
		t.Fatal("records not CRLF terminated")
	}

	recs, err := csv.NewReader(strings.NewReader(body)).ReadAll()
	if err != nil {
		t.Fatalf("re-parse csv: %v", err)
	}
	if got := strings.Join(recs[0], "|"); got != "respondent|company|comment|pick" {
		t.Fatalf("bad header: %s", got)
	}
	if recs[1][3] != "A;C" {
		t.Fatalf("multi-choice join = %q, want A;C", recs[1][3])
	}
}

func TestExportResponsesCSVPositionalRecords(t *testing.T) {
	sv := &models.Survey{
		Title: "t",
		Questions: []*models.Question{
			{ID: "q1", Text: "a", Type: models.ShortText},
			{ID: "q2", Text: "b", Type: models.ShortText},
		},
	}
	rs := []*models.Response{{
		RespondentName: "old client",
		Answers: map[string]models.Answer{
			"q_0": {Text: "first"},
			"q_1": {Text: "second"},
		},
	}}
	b, err := ExportResponsesCSV(sv, rs)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	recs, err := csv.NewReader(strings.NewReader(string(b[3:]))).ReadAll()
	if err != nil {
		t.Fatalf("re-parse: %v", err)
	}
	if recs[1][1] != "first" || recs[1][2] != "second" {
		t.Fatalf("positional answers not exported: %v", recs[1])
	}
}

func TestExportResponsesCSVNoSurvey(t *testing.T) {
	if _, err := ExportResponsesCSV(nil, nil); err == nil {
		t.Fatal("expected error for nil survey")
	}
}

func TestCSVFilename(t *testing.T) {
	cases := map[string]string{
		"Customer Feedback 2025": "Customer_Feedback_2025.csv",
		"満足度調査":                  "survey.csv",
		"  ":                     "survey.csv",
		"a/b\\c":                 "a_b_c.csv",
	}
	for title, want := range cases {
		if got := CSVFilename(title); got != want {
			t.Fatalf("CSVFilename(%q) = %q, want %q", title, got, want)
		}
	}
}
