package services

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/soaringjerry/AnketBox/internal/models"
	"github.com/soaringjerry/AnketBox/internal/storage"
	"github.com/soaringjerry/AnketBox/internal/validation"
)

// RawFields carries a rendered form's raw values. Keys are question ids;
// forms rendered by older versions key by position ("q_<index>") and are
// accepted as a fallback. A multi-choice field lists every checked option.
type RawFields map[string][]string

// PositionKey is the legacy positional field name for the question at index.
func PositionKey(index int) string {
	return "q_" + strconv.Itoa(index)
}

func (f RawFields) values(q *models.Question, index int) []string {
	if vs, ok := f[q.ID]; ok && q.ID != "" {
		return vs
	}
	return f[PositionKey(index)]
}

// CollectorService validates raw form input against the active survey and
// turns it into persisted response records. One instance tracks one
// rendering cycle: Start marks the form render, Submit closes it.
type CollectorService struct {
	gateway     storage.Gateway
	now         func() time.Time
	idGenerator func() string
	startedAt   time.Time
}

func NewCollectorService(gateway storage.Gateway) *CollectorService {
	return &CollectorService{
		gateway:     gateway,
		now:         func() time.Time { return time.Now().UTC() },
		idGenerator: func() string { return shortID(12) },
	}
}

// Start marks the beginning of a response cycle; Submit measures completion
// time from here. Submitting without Start records zero seconds.
func (c *CollectorService) Start() {
	c.startedAt = c.now()
}

// AnsweredCount reports how many questions have a non-empty value. Advisory
// only; drives the progress display.
func (c *CollectorService) AnsweredCount(survey *models.Survey, raw RawFields) int {
	if survey == nil {
		return 0
	}
	count := 0
	for i, q := range survey.Questions {
		if !buildAnswer(q, raw.values(q, i)).Empty() {
			count++
		}
	}
	return count
}

// CollectAndValidate walks the survey in question order, reads each raw
// value, and builds the answer map keyed by question id. Validation is
// fail-fast: the first unanswered required question or format violation
// aborts with that question's error. Nothing is persisted.
func (c *CollectorService) CollectAndValidate(survey *models.Survey, raw RawFields) (map[string]models.Answer, error) {
	if survey == nil {
		return nil, NewInvalidError("no survey is active")
	}
	answers := make(map[string]models.Answer, len(survey.Questions))
	for i, q := range survey.Questions {
		ans := buildAnswer(q, raw.values(q, i))
		if q.Required && ans.Empty() {
			return nil, NewRequiredFieldError(q.Text)
		}
		if rule := validation.RuleFor(q.Type); rule != nil && strings.TrimSpace(ans.Text) != "" && !rule.Matches(ans.Text) {
			return nil, NewFormatError(q.Text, rule.Message)
		}
		answers[answerKey(q, i)] = ans
	}
	return answers, nil
}

// Submit validates and appends a completed response to the persisted list.
// The append is a whole-slot read-modify-write; concurrent writers from a
// second process lose by last-write-wins, matching the storage contract.
// On validation failure nothing is written.
func (c *CollectorService) Submit(survey *models.Survey, raw RawFields, respondentName string) (*models.Response, error) {
	answers, err := c.CollectAndValidate(survey, raw)
	if err != nil {
		return nil, err
	}
	now := c.now()
	resp := &models.Response{
		ID:             c.idGenerator(),
		SurveyID:       survey.ID,
		RespondentName: respondent(respondentName),
		Answers:        answers,
		Completed:      true,
		CompletionTime: c.completionSeconds(now),
		SubmittedAt:    now,
	}
	if err := c.appendTo(storage.KeyResponses, resp); err != nil {
		return nil, err
	}
	c.startedAt = time.Time{}
	return resp, nil
}

// SaveDraft validates and appends an incomplete response to the drafts slot.
// Unlike the original UI, a validation failure is surfaced, not reported as
// success.
func (c *CollectorService) SaveDraft(survey *models.Survey, raw RawFields, respondentName string) (*models.Response, error) {
	answers, err := c.CollectAndValidate(survey, raw)
	if err != nil {
		return nil, err
	}
	now := c.now()
	resp := &models.Response{
		ID:             c.idGenerator(),
		SurveyID:       survey.ID,
		RespondentName: respondent(respondentName),
		Answers:        answers,
		Completed:      false,
		SavedAt:        now,
	}
	if err := c.appendTo(storage.KeyDrafts, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *CollectorService) appendTo(key string, resp *models.Response) error {
	var list []*models.Response
	c.gateway.Get(key, &list)
	list = append(list, resp)
	if err := c.gateway.Set(key, list); err != nil {
		return NewStorageWriteError("save response: " + err.Error())
	}
	return nil
}

func (c *CollectorService) completionSeconds(now time.Time) int {
	if c.startedAt.IsZero() {
		return 0
	}
	secs := int(math.Round(now.Sub(c.startedAt).Seconds()))
	if secs < 0 {
		return 0
	}
	return secs
}

func buildAnswer(q *models.Question, vals []string) models.Answer {
	if q.Type == models.MultiChoice {
		choices := make([]string, 0, len(vals))
		for _, v := range vals {
			if strings.TrimSpace(v) != "" {
				choices = append(choices, v)
			}
		}
		return models.Answer{Multi: true, Choices: choices}
	}
	if len(vals) == 0 {
		return models.Answer{}
	}
	return models.Answer{Text: vals[0]}
}

func answerKey(q *models.Question, index int) string {
	if q.ID != "" {
		return q.ID
	}
	return PositionKey(index)
}

func respondent(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.AnonymousRespondent
	}
	return name
}
