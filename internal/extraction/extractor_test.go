package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/J0na555/ExitPrep/internal/ingestion"
	"github.com/J0na555/ExitPrep/pkg/logger"
)

type fakeModel struct {
	replies map[string]string
	prompts []string
}

func (m *fakeModel) Generate(_ context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	for marker, reply := range m.replies {
		if strings.Contains(prompt, marker) {
			return reply, nil
		}
	}
	return "", errors.New("model unavailable")
}

type memArchive struct {
	keys []string
}

func (a *memArchive) PutFile(_ context.Context, prefix, localPath string) (string, error) {
	key := prefix + filepath.Base(localPath)
	a.keys = append(a.keys, key)
	return key, nil
}

func (a *memArchive) Put(_ context.Context, key string, _ []byte) error {
	a.keys = append(a.keys, key)
	return nil
}

// fakeText returns the PDF's own bytes as its text.
func fakeText(_ context.Context, pdfPath string) (string, error) {
	data, err := os.ReadFile(pdfPath)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", errors.New("pdftotext produced no text")
	}
	return string(data), nil
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestExtractorRun(t *testing.T) {
	root := t.TempDir()
	dirs := Dirs{Raw: filepath.Join(root, "raw"), Text: filepath.Join(root, "text"), Out: filepath.Join(root, "out")}
	if err := os.MkdirAll(dirs.Raw, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dirs.Raw, "b_networks.pdf"), "networks paper")
	writeFile(t, filepath.Join(dirs.Raw, "a_os.pdf"), "os paper")
	writeFile(t, filepath.Join(dirs.Raw, "c_empty.pdf"), "")
	writeFile(t, filepath.Join(dirs.Raw, "d_model_down.pdf"), "unknown paper")
	writeFile(t, filepath.Join(dirs.Raw, "notes.txt"), "ignored")

	model := &fakeModel{replies: map[string]string{
		"networks paper": "```json\n[{\"question\":\"Which layer routes?\",\"choices\":[\"A) Link\",\"B) Network\"],\"answer\":\"B\"}]\n```",
		"os paper":       `[{"question":"What schedules processes?","choices":["Kernel","Shell"],"answer":0}]`,
	}}
	archive := &memArchive{}
	ex := NewExtractor(logger.NewNop(), dirs, fakeText, model, archive)

	summary, err := ex.Run(context.Background(), "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.Join(summary.Succeeded, ",") != "a_os.pdf,b_networks.pdf" {
		t.Fatalf("succeeded = %v", summary.Succeeded)
	}
	if len(summary.Failed) != 2 || summary.Failed[0].Name != "c_empty.pdf" || summary.Failed[1].Name != "d_model_down.pdf" {
		t.Fatalf("failed = %+v", summary.Failed)
	}

	data, err := os.ReadFile(filepath.Join(dirs.Out, "b_networks.json"))
	if err != nil {
		t.Fatal(err)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		t.Fatal(err)
	}
	rec, err := ingestion.ParseRecord(items[0])
	if err != nil {
		t.Fatalf("batch not in ingestion shape: %v", err)
	}
	if rec.CourseName != "b_networks" || rec.CorrectIndex() != 1 || rec.Options[1].Text != "Network" {
		t.Fatalf("record = %+v", rec)
	}
	if _, err := os.Stat(filepath.Join(dirs.Text, "a_os.txt")); err != nil {
		t.Fatalf("text file not written: %v", err)
	}

	wantKeys := []string{
		"past_papers_raw/a_os.pdf", "past_papers_text/a_os.txt", "processed_questions/a_os.json",
		"past_papers_raw/b_networks.pdf", "past_papers_text/b_networks.txt", "processed_questions/b_networks.json",
	}
	if strings.Join(archive.keys, ",") != strings.Join(wantKeys, ",") {
		t.Fatalf("archive keys = %v", archive.keys)
	}
}

func TestExtractorCourseOverride(t *testing.T) {
	root := t.TempDir()
	dirs := Dirs{Raw: root, Text: filepath.Join(root, "text"), Out: filepath.Join(root, "out")}
	writeFile(t, filepath.Join(root, "2019.pdf"), "paper")
	model := &fakeModel{replies: map[string]string{"paper": `[{"question":"Q","choices":["x","y"],"answer":"y"}]`}}

	ex := NewExtractor(logger.NewNop(), dirs, fakeText, model, nil)
	summary, err := ex.Run(context.Background(), "Software Engineering")
	if err != nil || len(summary.Succeeded) != 1 {
		t.Fatalf("summary = %+v err = %v", summary, err)
	}

	data, err := os.ReadFile(filepath.Join(dirs.Out, "2019.json"))
	if err != nil {
		t.Fatal(err)
	}
	var records []ingestion.Record
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatal(err)
	}
	if records[0].CourseName != "Software Engineering" || !records[0].Options[1].IsCorrect {
		t.Fatalf("record = %+v", records[0])
	}
	if !strings.Contains(model.prompts[0], "---\npaper\n---") {
		t.Fatalf("prompt missing exam text: %q", model.prompts[0])
	}
}

func TestExtractorNoPDFs(t *testing.T) {
	ex := NewExtractor(logger.NewNop(), Dirs{Raw: t.TempDir()}, fakeText, &fakeModel{}, nil)
	summary, err := ex.Run(context.Background(), "")
	if err != nil || len(summary.Succeeded)+len(summary.Failed) != 0 {
		t.Fatalf("summary = %+v err = %v", summary, err)
	}
}
