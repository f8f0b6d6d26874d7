package summarizer

import (
	"archive/zip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/genai"

	"github.com/nguyentantai21042004/video-comprehend/internal/logger"
)

type fakeModel struct {
	keys    []string
	prompts []string
	reply   func(key, prompt string) (string, error)
}

func (f *fakeModel) generate(ctx context.Context, key, model, prompt string) (string, error) {
	f.keys = append(f.keys, key)
	f.prompts = append(f.prompts, prompt)
	return f.reply(key, prompt)
}

func newTestSummarizer(t *testing.T, keys []string, model *fakeModel) *implSummarizer {
	t.Helper()
	s, err := New(Options{APIKeys: keys, MinInterval: time.Millisecond}, logger.NewNop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	impl := s.(*implSummarizer)
	impl.generate = model.generate
	impl.now = func() time.Time { return time.Date(2026, 1, 2, 15, 4, 0, 0, time.UTC) }
	return impl
}

func TestCallModelKeyRotation(t *testing.T) {
	quota := genai.APIError{Code: 429, Message: "quota exceeded"}

	tests := []struct {
		name     string
		reply    func(key, prompt string) (string, error)
		wantKeys []string
		wantText string
		wantErr  bool
	}{
		{
			name:     "first key works",
			reply:    func(string, string) (string, error) { return "ok", nil },
			wantKeys: []string{"k1"},
			wantText: "ok",
		},
		{
			name: "rotates past rate limited key",
			reply: func(key, _ string) (string, error) {
				if key == "k1" {
					return "", quota
				}
				return "from " + key, nil
			},
			wantKeys: []string{"k1", "k2"},
			wantText: "from k2",
		},
		{
			name:     "quota message without api error",
			reply:    func(key, _ string) (string, error) { return "", errors.New("RESOURCE_EXHAUSTED") },
			wantKeys: []string{"k1", "k2", "k3"},
			wantErr:  true,
		},
		{
			name:     "other errors are not retried",
			reply:    func(string, string) (string, error) { return "", errors.New("invalid argument") },
			wantKeys: []string{"k1"},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := &fakeModel{reply: tt.reply}
			s := newTestSummarizer(t, []string{"k1", "k2", "k3"}, model)

			got, err := s.callModel(context.Background(), "prompt")
			if (err != nil) != tt.wantErr {
				t.Fatalf("callModel() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.wantText {
				t.Errorf("callModel() = %q, want %q", got, tt.wantText)
			}
			if diff := cmp.Diff(tt.wantKeys, model.keys); diff != "" {
				t.Errorf("keys tried mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRotationPersistsAcrossCalls(t *testing.T) {
	model := &fakeModel{reply: func(key, _ string) (string, error) {
		if key == "k1" {
			return "", errors.New("429 Too Many Requests")
		}
		return "ok", nil
	}}
	s := newTestSummarizer(t, []string{"k1", "k2"}, model)

	for range 2 {
		if _, err := s.callModel(context.Background(), "p"); err != nil {
			t.Fatalf("callModel() error = %v", err)
		}
	}
	if diff := cmp.Diff([]string{"k1", "k2", "k2"}, model.keys); diff != "" {
		t.Errorf("keys tried mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadTranscript(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	tests := []struct {
		name    string
		path    string
		want    string
		wantErr error
	}{
		{"markdown as is", write("a.md", "# Video Analysis\n\nhello"), "# Video Analysis\n\nhello", nil},
		{"json transcript", write("b.json", `{"transcript":"hello world","visual_text":null}`), "hello world", nil},
		{
			"json with visual text",
			write("c.json", `{"transcript":"hello","visual_text":"[00:10] SLIDE"}`),
			"hello\n\nOn-screen text:\n[00:10] SLIDE",
			nil,
		},
		{"empty", write("d.txt", "  \n"), "", ErrEmptyTranscript},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := loadTranscript(tt.path)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("loadTranscript() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("loadTranscript() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("loadTranscript() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSummarizeAll(t *testing.T) {
	src := t.TempDir()
	dest := filepath.Join(t.TempDir(), "summaries")
	files := map[string]string{
		"alpha.md":   "alpha transcript",
		"beta.json":  `{"transcript":"beta transcript","visual_text":null}`,
		"empty.txt":  "",
		"notes.pdf":  "ignored",
		".hidden.md": "ignored",
		"done.md":    "already summarized",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(src, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dest, "done.md"), []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	model := &fakeModel{reply: func(_, prompt string) (string, error) {
		return "## Overview\n\n- **Key** point\n", nil
	}}
	s := newTestSummarizer(t, []string{"k1"}, model)

	report, err := s.SummarizeAll(context.Background(), src, dest, true)
	if err != nil {
		t.Fatalf("SummarizeAll() error = %v", err)
	}
	if diff := cmp.Diff(Report{Succeeded: 2, Failed: 1, Skipped: 1}, report); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
	if len(model.prompts) != 2 || !strings.Contains(model.prompts[0], "alpha transcript") {
		t.Errorf("prompts = %q", model.prompts)
	}

	md, err := os.ReadFile(filepath.Join(dest, "alpha.md"))
	if err != nil {
		t.Fatal(err)
	}
	want := "# alpha\n\n_2026-01-02 15:04_\n\n## Overview\n\n- **Key** point\n"
	if string(md) != want {
		t.Errorf("alpha.md = %q, want %q", md, want)
	}

	xml := readDocumentXML(t, filepath.Join(dest, "beta.docx"))
	for _, text := range []string{"beta", "Overview", "• ", "Key", " point"} {
		if !strings.Contains(xml, text) {
			t.Errorf("beta.docx missing %q", text)
		}
	}
}

func TestWriteDocxTranscript(t *testing.T) {
	md := "# Video Analysis\n\n" +
		"**[00:00 - 00:30]**\nhello **there**\n\n" +
		"**[00:30 - end]**\nworld\n\n" +
		"## On-screen text\n\n[00:10] slide `one`\n"
	path := filepath.Join(t.TempDir(), "talk.docx")

	if err := WriteDocx("talk", md, path); err != nil {
		t.Fatalf("WriteDocx() error = %v", err)
	}

	xml := readDocumentXML(t, path)
	for _, text := range []string{"00:00 - 00:30", "00:30 - end", rangeColor, "[00:10] ", stampFont, "slide one", "there"} {
		if !strings.Contains(xml, text) {
			t.Errorf("document missing %q", text)
		}
	}
	for _, markup := range []string{"**", "[00:00 - 00:30]", "`"} {
		if strings.Contains(xml, markup) {
			t.Errorf("document kept markup %q", markup)
		}
	}
}

func TestNewRequiresKeys(t *testing.T) {
	if _, err := New(Options{}, logger.NewNop()); !errors.Is(err, ErrNoKeys) {
		t.Errorf("New() error = %v, want ErrNoKeys", err)
	}
}

func readDocumentXML(t *testing.T, path string) string {
	t.Helper()
	r, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open docx: %v", err)
	}
	defer r.Close()
	for _, f := range r.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			t.Fatal(err)
		}
		return string(data)
	}
	t.Fatal("word/document.xml not found")
	return ""
}
