package ingestion

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/J0na555/ExitPrep/internal/app_errors"
	"github.com/go-playground/validator/v10"
)

// Record is one validated question from a batch file, strings already trimmed.
type Record struct {
	CourseName   string         `json:"course_name" validate:"required"`
	QuestionText string         `json:"question_text" validate:"required"`
	Options      []RecordOption `json:"options" validate:"min=1,dive"`
}

type RecordOption struct {
	Text      string `json:"text" validate:"required"`
	IsCorrect bool   `json:"is_correct"`
}

// wireRecord keeps pointers so absent keys and JSON nulls can be told apart from zero values.
type wireRecord struct {
	CourseName   *string            `json:"course_name"`
	QuestionText *string            `json:"question_text"`
	Options      *[]json.RawMessage `json:"options"`
}

type wireOption struct {
	Text      *string `json:"text"`
	IsCorrect *bool   `json:"is_correct"`
}

var validate = validator.New()

// ParseRecord checks the shape of a single batch item. Any problem is a *app_errors.ValidationError.
func ParseRecord(raw json.RawMessage) (Record, error) {
	trimmed := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(trimmed, "{") {
		return Record{}, app_errors.Invalid("", "question item is not an object")
	}

	var w wireRecord
	if err := json.Unmarshal(raw, &w); err != nil {
		return Record{}, typeError(err)
	}
	if w.CourseName == nil {
		return Record{}, app_errors.Invalid("course_name", "missing or not a string")
	}
	if w.QuestionText == nil {
		return Record{}, app_errors.Invalid("question_text", "missing or not a string")
	}
	if w.Options == nil {
		return Record{}, app_errors.Invalid("options", "missing or not a list")
	}

	rec := Record{
		CourseName:   strings.TrimSpace(*w.CourseName),
		QuestionText: strings.TrimSpace(*w.QuestionText),
		Options:      make([]RecordOption, 0, len(*w.Options)),
	}
	for i, rawOpt := range *w.Options {
		if !strings.HasPrefix(strings.TrimSpace(string(rawOpt)), "{") {
			return Record{}, app_errors.Invalid(fmt.Sprintf("options[%d]", i), "not an object")
		}
		var o wireOption
		if err := json.Unmarshal(rawOpt, &o); err != nil {
			return Record{}, typeError(err)
		}
		if o.Text == nil {
			return Record{}, app_errors.Invalid(fmt.Sprintf("options[%d].text", i), "missing or not a string")
		}
		if o.IsCorrect == nil {
			return Record{}, app_errors.Invalid(fmt.Sprintf("options[%d].is_correct", i), "missing or not a boolean")
		}
		rec.Options = append(rec.Options, RecordOption{Text: strings.TrimSpace(*o.Text), IsCorrect: *o.IsCorrect})
	}

	if err := validate.Struct(rec); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return Record{}, app_errors.Invalid(verrs[0].Namespace(), "failed "+verrs[0].Tag()+" check")
		}
		return Record{}, app_errors.Invalid("", err.Error())
	}
	return rec, nil
}

// CorrectIndex is the first option flagged correct, or 0 when none is.
func (r Record) CorrectIndex() int {
	for i, o := range r.Options {
		if o.IsCorrect {
			return i
		}
	}
	return 0
}

func typeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return app_errors.Invalid(typeErr.Field, "has type "+typeErr.Value)
	}
	return app_errors.Invalid("", err.Error())
}
