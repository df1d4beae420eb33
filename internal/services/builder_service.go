package services

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/soaringjerry/AnketBox/internal/models"
	"github.com/soaringjerry/AnketBox/internal/storage"
)

// BuilderService owns the in-progress question list and commits finished
// drafts into the persisted survey slot. It replaces the designer's ambient
// globals: all draft state lives on the instance until Commit.
type BuilderService struct {
	gateway     storage.Gateway
	title       string
	description string
	questions   []*models.Question
	committed   *models.Survey
	now         func() time.Time
	idGenerator func() string
}

func NewBuilderService(gateway storage.Gateway) *BuilderService {
	return &BuilderService{
		gateway:     gateway,
		now:         func() time.Time { return time.Now().UTC() },
		idGenerator: func() string { return shortID(12) },
	}
}

func shortID(n int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:n]
}

// Load rehydrates the draft from the persisted survey slot, if one exists.
func (b *BuilderService) Load() bool {
	var sv models.Survey
	if !b.gateway.Get(storage.KeySurvey, &sv) {
		return false
	}
	b.committed = &sv
	b.title = sv.Title
	b.description = sv.Description
	b.questions = cloneQuestions(sv.Questions)
	return true
}

func (b *BuilderService) SetTitle(title string)      { b.title = title }
func (b *BuilderService) SetDescription(desc string) { b.description = desc }
func (b *BuilderService) Title() string              { return b.title }
func (b *BuilderService) Description() string        { return b.description }

// Questions returns a copy of the draft list in display order.
func (b *BuilderService) Questions() []*models.Question {
	return append([]*models.Question(nil), b.questions...)
}

// Committed returns the last committed survey, or nil before the first commit.
func (b *BuilderService) Committed() *models.Survey { return b.committed }

// AddQuestion appends a new question to the end of the draft. The text must
// be non-blank; optionsCSV is split on commas with blanks dropped.
func (b *BuilderService) AddQuestion(text, typeName, optionsCSV string, required bool) (*models.Question, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, NewInvalidError("question text is required")
	}
	qtype, ok := models.ParseQuestionType(typeName)
	if !ok {
		return nil, NewInvalidError("unknown question type: " + typeName)
	}
	q := &models.Question{
		ID:       b.idGenerator(),
		Text:     text,
		Type:     qtype,
		Required: required,
	}
	if qtype.IsChoice() {
		q.Options = splitCSV(optionsCSV)
	}
	if qtype == models.Rating {
		q.ScaleSize = models.DefaultRatingScale
	}
	b.questions = append(b.questions, q)
	return q, nil
}

// UpdateQuestion mutates one field of the question at index. Changing the
// type leaves now-inapplicable fields populated; renderers ignore them.
func (b *BuilderService) UpdateQuestion(index int, field, value string) error {
	if index < 0 || index >= len(b.questions) {
		return NewIndexError("question index out of range: " + strconv.Itoa(index))
	}
	q := b.questions[index]
	switch field {
	case "text":
		text := strings.TrimSpace(value)
		if text == "" {
			return NewInvalidError("question text is required")
		}
		q.Text = text
	case "type":
		qtype, ok := models.ParseQuestionType(value)
		if !ok {
			return NewInvalidError("unknown question type: " + value)
		}
		q.Type = qtype
		if qtype == models.Rating && q.ScaleSize == 0 {
			q.ScaleSize = models.DefaultRatingScale
		}
	case "required":
		q.Required = parseBool(value)
	case "options":
		q.Options = splitCSV(value)
	case "labels":
		q.Labels = splitCSV(value)
	case "min":
		q.Min = parseInt(value)
	case "max":
		q.Max = parseInt(value)
	case "scale", "scale_size":
		size := parseInt(value)
		if size < 2 {
			size = 2
		}
		if size > 10 {
			size = 10
		}
		q.ScaleSize = size
	default:
		return NewInvalidError("unknown question field: " + field)
	}
	return nil
}

// RemoveQuestion removes the question at index, shifting later questions down.
// Confirmation is the caller's concern. Stored responses are left untouched;
// positionally keyed answers for later questions will no longer line up.
func (b *BuilderService) RemoveQuestion(index int) error {
	if index < 0 || index >= len(b.questions) {
		return NewIndexError("question index out of range: " + strconv.Itoa(index))
	}
	b.questions = append(b.questions[:index], b.questions[index+1:]...)
	return nil
}

// MoveQuestion performs a stable move of the question at from to position to.
// An out-of-bounds destination is a no-op; an out-of-bounds source is an error.
func (b *BuilderService) MoveQuestion(from, to int) error {
	if from < 0 || from >= len(b.questions) {
		return NewIndexError("question index out of range: " + strconv.Itoa(from))
	}
	if to < 0 || to >= len(b.questions) {
		return nil
	}
	q := b.questions[from]
	b.questions = append(b.questions[:from], b.questions[from+1:]...)
	rest := append([]*models.Question(nil), b.questions[to:]...)
	b.questions = append(append(b.questions[:to], q), rest...)
	return nil
}

// Commit turns the draft into the persisted survey, overwriting the slot
// wholesale. The first commit mints the survey id and both timestamps; later
// commits keep the id and creation time and bump updatedAt. A storage write
// failure is reported but leaves the in-memory survey committed and usable.
func (b *BuilderService) Commit(title, description string) (*models.Survey, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, NewInvalidError("survey title is required")
	}
	if len(b.questions) == 0 {
		return nil, NewInvalidError("survey needs at least one question")
	}
	now := b.now()
	sv := &models.Survey{
		ID:          b.idGenerator(),
		Title:       title,
		Description: strings.TrimSpace(description),
		Questions:   cloneQuestions(b.questions),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if b.committed != nil {
		sv.ID = b.committed.ID
		sv.CreatedAt = b.committed.CreatedAt
	}
	b.title = title
	b.description = sv.Description
	b.committed = sv
	if err := b.gateway.Set(storage.KeySurvey, sv); err != nil {
		return sv, NewStorageWriteError("save survey: " + err.Error())
	}
	return sv, nil
}

// ExportJSON serializes the committed survey as pretty-printed JSON.
func (b *BuilderService) ExportJSON() ([]byte, error) {
	if b.committed == nil {
		return nil, NewInvalidError("no survey has been committed yet")
	}
	return json.MarshalIndent(b.committed, "", "  ")
}

// ImportJSON parses data and replaces the entire draft. The payload must
// carry a questions array; individual questions are defaulted field by field
// (unknown type becomes short text, required is coerced to bool, options to a
// string list). The current draft is untouched when parsing fails.
func (b *BuilderService) ImportJSON(data []byte) (*models.Survey, error) {
	var payload struct {
		Title       string           `json:"title"`
		Description string           `json:"description"`
		Questions   []map[string]any `json:"questions"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, NewParseError("invalid survey JSON: " + err.Error())
	}
	if payload.Questions == nil {
		return nil, NewParseError("invalid survey JSON: questions must be an array")
	}
	questions := make([]*models.Question, 0, len(payload.Questions))
	for _, raw := range payload.Questions {
		questions = append(questions, b.importQuestion(raw))
	}
	b.title = payload.Title
	b.description = payload.Description
	b.questions = questions
	return &models.Survey{
		Title:       b.title,
		Description: b.description,
		Questions:   b.Questions(),
	}, nil
}

func (b *BuilderService) importQuestion(raw map[string]any) *models.Question {
	q := &models.Question{}
	if id := strings.TrimSpace(toString(raw["id"])); id != "" {
		q.ID = id
	} else {
		q.ID = b.idGenerator()
	}
	q.Text = strings.TrimSpace(toString(raw["text"]))
	if q.Text == "" {
		// older exports used "label" for the question text
		q.Text = strings.TrimSpace(toString(raw["label"]))
	}
	if q.Text == "" {
		q.Text = "question"
	}
	q.Type, _ = models.ParseQuestionType(toString(raw["type"]))
	if v, ok := raw["required"].(bool); ok {
		q.Required = v
	}
	q.Options = parseStringSlice(raw["options"])
	q.Labels = parseStringSlice(raw["labels"])
	if v, ok := raw["min"].(float64); ok {
		q.Min = int(v)
	}
	if v, ok := raw["max"].(float64); ok {
		q.Max = int(v)
	}
	if v, ok := raw["scale"].(float64); ok {
		q.ScaleSize = int(v)
	}
	if q.Type == models.Rating && q.ScaleSize == 0 {
		q.ScaleSize = models.DefaultRatingScale
	}
	return q
}

// Clear resets the draft and overwrites the survey slot with an explicit
// null marker. Confirmation is the caller's concern.
func (b *BuilderService) Clear() error {
	b.title = ""
	b.description = ""
	b.questions = nil
	b.committed = nil
	if err := b.gateway.Set(storage.KeySurvey, nil); err != nil {
		return NewStorageWriteError("clear survey: " + err.Error())
	}
	return nil
}

// cloneQuestions snapshots the question list so the committed survey stays
// isolated from later draft edits.
func cloneQuestions(qs []*models.Question) []*models.Question {
	out := make([]*models.Question, 0, len(qs))
	for _, q := range qs {
		cp := *q
		cp.Options = append([]string(nil), q.Options...)
		cp.Labels = append([]string(nil), q.Labels...)
		out = append(out, &cp)
	}
	return out
}

func splitCSV(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseBool(s string) bool {
	ss := strings.ToLower(strings.TrimSpace(s))
	return ss == "1" || ss == "true" || ss == "yes" || ss == "y"
}

func parseInt(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}

func parseStringSlice(raw any) []string {
	arr, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		val := strings.TrimSpace(toString(item))
		if val != "" {
			out = append(out, val)
		}
	}
	return out
}

func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		b, _ := json.Marshal(v)
		return strings.Trim(string(b), "\"")
	}
}
