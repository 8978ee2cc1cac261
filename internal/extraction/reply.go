package extraction

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/J0na555/ExitPrep/internal/ingestion"
)

var ErrNoJSONArray = errors.New("model reply contains no JSON array")

var (
	fencePattern = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*\\n?(.*?)```")
	labelPattern = regexp.MustCompile(`^\(?([A-Za-z])[\).:]\s*`)
	stripPattern = regexp.MustCompile(`^\(?[A-Za-z][\).:]\s+`)
)

// CleanReply strips markdown code fences and returns the outermost JSON array in text.
func CleanReply(text string) ([]json.RawMessage, error) {
	if m := fencePattern.FindStringSubmatch(text); m != nil {
		text = m[1]
	}
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return nil, ErrNoJSONArray
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(text[start:end+1]), &items); err != nil {
		return nil, errors.Join(ErrNoJSONArray, err)
	}
	return items, nil
}

type looseItem struct {
	Question string          `json:"question"`
	Choices  []string        `json:"choices"`
	Answer   json.RawMessage `json:"answer"`
}

// Normalize converts model items to ingestion records. Items already in the
// ingestion shape pass through; {"question","choices","answer"} items are
// converted with the answer given as a letter, a zero-based index or the
// choice text. Items that fit neither shape are counted in dropped.
func Normalize(items []json.RawMessage, courseName string) (records []ingestion.Record, dropped int) {
	for _, raw := range items {
		if rec, ok := fromIngestionShape(raw, courseName); ok {
			records = append(records, rec)
			continue
		}
		if rec, ok := fromLooseShape(raw, courseName); ok {
			records = append(records, rec)
			continue
		}
		dropped++
	}
	return records, dropped
}

func fromIngestionShape(raw json.RawMessage, courseName string) (ingestion.Record, bool) {
	if !bytes.Contains(raw, []byte(`"question_text"`)) {
		return ingestion.Record{}, false
	}
	var rec ingestion.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return ingestion.Record{}, false
	}
	rec.QuestionText = strings.TrimSpace(rec.QuestionText)
	if rec.QuestionText == "" || len(rec.Options) == 0 {
		return ingestion.Record{}, false
	}
	if strings.TrimSpace(rec.CourseName) == "" {
		rec.CourseName = courseName
	}
	return rec, true
}

func fromLooseShape(raw json.RawMessage, courseName string) (ingestion.Record, bool) {
	var item looseItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return ingestion.Record{}, false
	}
	question := strings.TrimSpace(item.Question)
	if question == "" || len(item.Choices) == 0 {
		return ingestion.Record{}, false
	}

	correct := answerIndex(item.Answer, item.Choices)
	rec := ingestion.Record{
		CourseName:   courseName,
		QuestionText: question,
		Options:      make([]ingestion.RecordOption, len(item.Choices)),
	}
	for i, choice := range item.Choices {
		rec.Options[i] = ingestion.RecordOption{
			Text:      stripLabel(choice),
			IsCorrect: i == correct,
		}
	}
	return rec, true
}

// answerIndex resolves the answer to a choice index, or -1.
func answerIndex(raw json.RawMessage, choices []string) int {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return -1
	}

	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		if n >= 0 && n < len(choices) {
			return n
		}
		return -1
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return -1
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return -1
	}

	if i := letterIndex(s); i >= 0 && i < len(choices) {
		return i
	}
	for i, choice := range choices {
		if strings.EqualFold(strings.TrimSpace(choice), s) || strings.EqualFold(stripLabel(choice), stripLabel(s)) {
			return i
		}
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 && n < len(choices) {
		return n
	}
	return -1
}

// letterIndex maps "B", "b", "B)" or "(B)" to 1. Longer text is not a letter.
func letterIndex(s string) int {
	if len(s) == 1 {
		return letterToIndex(s[0])
	}
	if m := labelPattern.FindStringSubmatch(s); m != nil && len(strings.TrimSpace(s[len(m[0]):])) == 0 {
		return letterToIndex(m[1][0])
	}
	return -1
}

func letterToIndex(b byte) int {
	switch {
	case b >= 'A' && b <= 'Z':
		return int(b - 'A')
	case b >= 'a' && b <= 'z':
		return int(b - 'a')
	}
	return -1
}

// stripLabel removes a leading "A) " style label from a choice.
func stripLabel(choice string) string {
	choice = strings.TrimSpace(choice)
	if m := stripPattern.FindString(choice); m != "" && len(m) < len(choice) {
		return strings.TrimSpace(choice[len(m):])
	}
	return choice
}
