// Package validation maps question types to their format rules. Rules are
// fixed and side-effect free; types without a pattern (free text, choices,
// scale, rating) have no rule and always pass the format check.
package validation

import (
	"regexp"

	"github.com/soaringjerry/AnketBox/internal/models"
)

// Rule pairs a format pattern with the message shown when a value fails it.
type Rule struct {
	Pattern *regexp.Regexp
	Message string
}

// Matches reports whether v satisfies the rule's pattern.
func (r *Rule) Matches(v string) bool {
	return r.Pattern.MatchString(v)
}

var rules = map[models.QuestionType]*Rule{
	models.Email: {
		Pattern: regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`),
		Message: "enter a valid email address.",
	},
	models.Phone: {
		Pattern: regexp.MustCompile(`^[\d\-\+\(\)\s]+$`),
		Message: "enter a valid phone number.",
	},
	models.Number: {
		Pattern: regexp.MustCompile(`^\d+$`),
		Message: "enter a numeric value.",
	},
	models.Date: {
		Pattern: regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`),
		Message: "enter a valid date.",
	},
}

// RuleFor returns the format rule for t, or nil when t has none.
func RuleFor(t models.QuestionType) *Rule {
	return rules[t]
}
