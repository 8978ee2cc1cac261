package extraction

import "strings"

const promptTemplate = `You will receive text extracted from an exam past paper.

Extract every multiple-choice question in this format:

[
  {
    "question": "...",
    "choices": ["...", "...", "...", "..."],
    "answer": "B"
  }
]

"answer" is the letter of the correct choice. Only return valid JSON.
Exam text:
---
{exam_text}
---
`

func BuildPrompt(examText string) string {
	return strings.Replace(promptTemplate, "{exam_text}", strings.TrimSpace(examText), 1)
}
