package models

import (
	"encoding/json"
	"strings"
	"time"
)

// QuestionType is the closed set of question kinds a survey can contain.
type QuestionType string

const (
	ShortText    QuestionType = "short_text"
	LongText     QuestionType = "long_text"
	Number       QuestionType = "number"
	Email        QuestionType = "email"
	Phone        QuestionType = "phone"
	Date         QuestionType = "date"
	SingleChoice QuestionType = "single_choice"
	MultiChoice  QuestionType = "multi_choice"
	Scale        QuestionType = "scale"
	Rating       QuestionType = "rating"
)

// DefaultRatingScale is the number of rating steps when none is configured.
const DefaultRatingScale = 5

// legacy type names written by earlier versions of the designer.
var typeAliases = map[string]QuestionType{
	"text":     ShortText,
	"textarea": LongText,
	"tel":      Phone,
	"radio":    SingleChoice,
	"single":   SingleChoice,
	"checkbox": MultiChoice,
	"multi":    MultiChoice,
	"range":    Scale,
}

var knownTypes = map[QuestionType]struct{}{
	ShortText: {}, LongText: {}, Number: {}, Email: {}, Phone: {},
	Date: {}, SingleChoice: {}, MultiChoice: {}, Scale: {}, Rating: {},
}

// ParseQuestionType resolves s into the closed enumeration, accepting legacy
// aliases. The boolean reports whether s named a known type.
func ParseQuestionType(s string) (QuestionType, bool) {
	if t, ok := typeAliases[strings.TrimSpace(s)]; ok {
		return t, true
	}
	t := QuestionType(strings.TrimSpace(s))
	if _, ok := knownTypes[t]; ok {
		return t, true
	}
	return ShortText, false
}

// IsChoice reports whether the type carries an options list.
func (t QuestionType) IsChoice() bool {
	return t == SingleChoice || t == MultiChoice
}

// Question is one item in a survey. Options apply to choice types only,
// Min/Max/Labels to scale, ScaleSize to rating; values for non-applicable
// types may remain populated after a type change and are ignored by renderers.
type Question struct {
	ID        string       `json:"id"`
	Text      string       `json:"text"`
	Type      QuestionType `json:"type"`
	Required  bool         `json:"required"`
	Options   []string     `json:"options,omitempty"`
	Min       int          `json:"min,omitempty"`
	Max       int          `json:"max,omitempty"`
	Labels    []string     `json:"labels,omitempty"`
	ScaleSize int          `json:"scale,omitempty"`
}

// Survey is the single active survey definition. Question order is canonical:
// rendering and legacy positional answer keys both derive from it.
type Survey struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Questions   []*Question `json:"questions"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// Answer holds one question's answer: a scalar string for most types, an
// ordered list of checked options for multi choice. The JSON form is the bare
// string or array, matching the stored response format.
type Answer struct {
	Text    string
	Choices []string
	Multi   bool
}

func (a Answer) MarshalJSON() ([]byte, error) {
	if a.Multi {
		if a.Choices == nil {
			return json.Marshal([]string{})
		}
		return json.Marshal(a.Choices)
	}
	return json.Marshal(a.Text)
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '[' {
		a.Multi = true
		return json.Unmarshal(data, &a.Choices)
	}
	return json.Unmarshal(data, &a.Text)
}

// Empty reports whether the answer counts as "not answered": blank text, or
// no checked options for multi choice.
func (a Answer) Empty() bool {
	if a.Multi {
		return len(a.Choices) == 0
	}
	return strings.TrimSpace(a.Text) == ""
}

// Flat renders the answer for tabular views; multi-choice joins with ";".
func (a Answer) Flat() string {
	if a.Multi {
		return strings.Join(a.Choices, ";")
	}
	return a.Text
}

// AnonymousRespondent is recorded when a respondent leaves the name blank.
const AnonymousRespondent = "anonymous"

// Response is one respondent's answer set. Answers are keyed by question ID;
// records written by older versions use positional "q_<index>" keys instead
// and are read via fallback, never rewritten.
type Response struct {
	ID             string            `json:"id"`
	SurveyID       string            `json:"surveyId"`
	RespondentName string            `json:"respondentName"`
	Answers        map[string]Answer `json:"responses"`
	Completed      bool              `json:"completed"`
	CompletionTime int               `json:"completionTime"`
	SubmittedAt    time.Time         `json:"submittedAt"`
	SavedAt        time.Time         `json:"savedAt"`
}
