package services

import (
	"math"
	"strconv"

	"github.com/soaringjerry/AnketBox/internal/models"
	"github.com/soaringjerry/AnketBox/internal/storage"
)

// ResponseStore is the read-only query layer over the persisted response and
// draft lists. It trusts whatever the gateway returns and treats an absent or
// unparsable slot as empty. Tabular, CSV and analytics views consume it.
type ResponseStore struct {
	gateway storage.Gateway
}

func NewResponseStore(gateway storage.Gateway) *ResponseStore {
	return &ResponseStore{gateway: gateway}
}

// All returns every submitted response in submission order.
func (s *ResponseStore) All() []*models.Response {
	return s.load(storage.KeyResponses)
}

// CompletedOnly filters All down to completed submissions.
func (s *ResponseStore) CompletedOnly() []*models.Response {
	out := []*models.Response{}
	for _, r := range s.All() {
		if r.Completed {
			out = append(out, r)
		}
	}
	return out
}

// DraftsOnly returns the saved drafts in save order.
func (s *ResponseStore) DraftsOnly() []*models.Response {
	return s.load(storage.KeyDrafts)
}

// ClearResponses bulk-clears the submitted response list. Drafts are kept.
func (s *ResponseStore) ClearResponses() error {
	if err := s.gateway.Set(storage.KeyResponses, []*models.Response{}); err != nil {
		return NewStorageWriteError("clear responses: " + err.Error())
	}
	return nil
}

func (s *ResponseStore) load(key string) []*models.Response {
	var list []*models.Response
	if !s.gateway.Get(key, &list) {
		return []*models.Response{}
	}
	return list
}

// AnswerFor resolves the answer a response gives to the question at index:
// id key first, then the legacy positional key. Positional records from
// before a question removal stay misaligned on purpose; nothing is repaired.
func AnswerFor(r *models.Response, q *models.Question, index int) (models.Answer, bool) {
	if q.ID != "" {
		if a, ok := r.Answers[q.ID]; ok {
			return a, true
		}
	}
	a, ok := r.Answers[PositionKey(index)]
	return a, ok
}

// Stats are the descriptive numbers the analytics view shows. Derived and
// re-derivable; never persisted.
type Stats struct {
	TotalCompleted       int
	AvgCompletionSeconds float64
	DropoffRatePercent   int
	AvgRating            float64
}

// Stats computes summary numbers over completed responses and drafts.
// Drop-off counts drafts against the combined total; the rating average runs
// over every rating question in the survey.
func (s *ResponseStore) Stats(survey *models.Survey) Stats {
	completed := s.CompletedOnly()
	st := Stats{TotalCompleted: len(completed)}
	if len(completed) > 0 {
		total := 0
		for _, r := range completed {
			total += r.CompletionTime
		}
		st.AvgCompletionSeconds = float64(total) / float64(len(completed))
	}
	all := len(s.All()) + len(s.DraftsOnly())
	if all > 0 {
		st.DropoffRatePercent = int(math.Round(float64(all-len(completed)) / float64(all) * 100))
	}
	if survey != nil {
		sum, count := 0, 0
		for i, q := range survey.Questions {
			if q.Type != models.Rating {
				continue
			}
			for _, r := range completed {
				if v, ok := ratingValue(r, q, i); ok {
					sum += v
					count++
				}
			}
		}
		if count > 0 {
			st.AvgRating = float64(sum) / float64(count)
		}
	}
	return st
}

// ChoiceCounts tallies how often each value was picked for the single-choice
// question questionID, over completed responses.
func (s *ResponseStore) ChoiceCounts(survey *models.Survey, questionID string) map[string]int {
	counts := map[string]int{}
	if survey == nil {
		return counts
	}
	for i, q := range survey.Questions {
		if q.ID != questionID || q.Type != models.SingleChoice {
			continue
		}
		for _, r := range s.CompletedOnly() {
			if a, ok := AnswerFor(r, q, i); ok && !a.Empty() {
				counts[a.Text]++
			}
		}
	}
	return counts
}

// AverageRating returns the mean rating and answer count for the rating
// question questionID, over completed responses.
func (s *ResponseStore) AverageRating(survey *models.Survey, questionID string) (float64, int) {
	if survey == nil {
		return 0, 0
	}
	sum, count := 0, 0
	for i, q := range survey.Questions {
		if q.ID != questionID || q.Type != models.Rating {
			continue
		}
		for _, r := range s.CompletedOnly() {
			if v, ok := ratingValue(r, q, i); ok {
				sum += v
				count++
			}
		}
	}
	if count == 0 {
		return 0, 0
	}
	return float64(sum) / float64(count), count
}

func ratingValue(r *models.Response, q *models.Question, index int) (int, bool) {
	a, ok := AnswerFor(r, q, index)
	if !ok || a.Empty() {
		return 0, false
	}
	v, err := strconv.Atoi(a.Text)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}
