package domain

import (
	"strings"
	"unicode/utf8"
)

const (
	// maxQuestionRunes bounds a single user utterance.
	maxQuestionRunes = 2000
)

// ValidateRecord checks a ToolRecord before it is rendered and indexed.
func ValidateRecord(r ToolRecord) error {
	if strings.TrimSpace(r.Name) == "" {
		return NewValidationError("name", r.Name, ErrInvalidArgument)
	}
	if !ValidPricings[r.Pricing] {
		return NewValidationError("pricing", string(r.Pricing), ErrInvalidArgument)
	}
	return nil
}

// ValidateDocument checks the invariants every indexed document must hold:
// it carries a non-empty name and an in-enum pricing class.
func ValidateDocument(d Document) error {
	if d.ID == "" {
		return NewValidationError("id", d.ID, ErrInvalidArgument)
	}
	if strings.TrimSpace(d.Meta.Name) == "" {
		return NewValidationError("meta.name", d.Meta.Name, ErrInvalidArgument)
	}
	if !ValidPricings[d.Meta.Pricing] {
		return NewValidationError("meta.pricing", string(d.Meta.Pricing), ErrInvalidArgument)
	}
	if d.Text == "" {
		return NewValidationError("text", "", ErrInvalidArgument)
	}
	return nil
}

// ValidateQuestion checks a user utterance before it reaches the query
// pipeline.
func ValidateQuestion(q string) error {
	text := strings.TrimSpace(q)
	if text == "" {
		return NewValidationError("question", q, ErrInvalidArgument)
	}
	if utf8.RuneCountInString(text) > maxQuestionRunes {
		return NewValidationError("question", text[:32]+"…", ErrInvalidArgument)
	}
	return nil
}
