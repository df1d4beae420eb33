package validation

import (
	"testing"

	"github.com/soaringjerry/AnketBox/internal/models"
)

func TestRuleForPatterns(t *testing.T) {
	cases := []struct {
		qtype models.QuestionType
		value string
		ok    bool
	}{
		{models.Email, "a@b.com", true},
		{models.Email, "not-an-email", false},
		{models.Email, "a b@c.d", false},
		{models.Phone, "+81 (90) 1234-5678", true},
		{models.Phone, "call me", false},
		{models.Number, "42", true},
		{models.Number, "4.2", false},
		{models.Number, "-1", false},
		{models.Date, "2025-06-01", true},
		{models.Date, "01/06/2025", false},
		{models.Date, "2025-6-1", false},
	}
	for _, c := range cases {
		rule := RuleFor(c.qtype)
		if rule == nil {
			t.Fatalf("no rule for %s", c.qtype)
		}
		if got := rule.Matches(c.value); got != c.ok {
			t.Fatalf("%s %q: match=%v, want %v", c.qtype, c.value, got, c.ok)
		}
	}
}

func TestRuleForUnruledTypes(t *testing.T) {
	for _, qt := range []models.QuestionType{
		models.ShortText, models.LongText, models.SingleChoice,
		models.MultiChoice, models.Scale, models.Rating,
	} {
		if RuleFor(qt) != nil {
			t.Fatalf("%s should have no format rule", qt)
		}
	}
}

func TestRuleMessages(t *testing.T) {
	if got := RuleFor(models.Email).Message; got != "enter a valid email address." {
		t.Fatalf("email message = %q", got)
	}
	if got := RuleFor(models.Number).Message; got != "enter a numeric value." {
		t.Fatalf("number message = %q", got)
	}
}
