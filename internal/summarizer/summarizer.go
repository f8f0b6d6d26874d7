package summarizer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"google.golang.org/genai"
)

const summaryPrompt = `You are an expert at analysing video content. Using the transcript below, write a DETAILED summary in the same language as the transcript.

Requirements:
- Open with a one-sentence title describing what the video is about
- List ALL main steps or topics in the order they appear
- Explain each one in detail, including tips, caveats and warnings
- Keep technical terms as they are spoken
- Use markdown: headings, bullet points, and bold for key terms
- If on-screen text adds information the speech does not, include it
- Finish with an "Important notes" section when something needs emphasis

Video transcript:
---
%s
---`

// ErrEmptyTranscript is returned when a transcript file has no text.
var ErrEmptyTranscript = errors.New("transcript is empty")

var transcriptExts = map[string]bool{".md": true, ".txt": true, ".json": true}

func (s *implSummarizer) Summarize(ctx context.Context, transcriptPath string) (string, error) {
	transcript, err := loadTranscript(transcriptPath)
	if err != nil {
		return "", err
	}
	summary, err := s.callModel(ctx, fmt.Sprintf(summaryPrompt, transcript))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(summary), nil
}

// SummarizeAll reads all transcripts from srcDir, calls the model for each,
// and writes individual summaries into destDir. Transcripts that already
// have a summary are skipped.
func (s *implSummarizer) SummarizeAll(ctx context.Context, srcDir, destDir string, docx bool) (Report, error) {
	var report Report

	files, err := discoverTranscripts(srcDir)
	if err != nil {
		return report, fmt.Errorf("discover transcripts: %w", err)
	}
	if len(files) == 0 {
		s.logger.Info(ctx, "No transcripts found in %s", srcDir)
		return report, nil
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return report, fmt.Errorf("create dest dir: %w", err)
	}

	s.logger.Info(ctx, "Found %d transcripts to summarize", len(files))

	for i, path := range files {
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		mdPath := filepath.Join(destDir, name+".md")
		if _, err := os.Stat(mdPath); err == nil {
			s.logger.Debug(ctx, "Summary exists, skipping: %s", mdPath)
			report.Skipped++
			continue
		}

		s.logger.Info(ctx, "[%d/%d] Summarizing: %s", i+1, len(files), name)

		summary, err := s.Summarize(ctx, path)
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			s.logger.Error(ctx, "Failed to summarize %s: %v", name, err)
			report.Failed++
			continue
		}

		md := fmt.Sprintf("# %s\n\n_%s_\n\n%s\n", name, s.now().Format("2006-01-02 15:04"), summary)
		if err := os.WriteFile(mdPath, []byte(md), 0644); err != nil {
			s.logger.Error(ctx, "Failed to write %s: %v", mdPath, err)
			report.Failed++
			continue
		}

		if docx {
			docxPath := filepath.Join(destDir, name+".docx")
			if err := WriteDocx(name, summary, docxPath); err != nil {
				s.logger.Warn(ctx, "Failed to write %s: %v", docxPath, err)
			}
		}

		s.logger.Info(ctx, "[DONE] %s -> %s", name, mdPath)
		report.Succeeded++
	}

	s.logger.Info(ctx, "Summary complete: %d success, %d failed, %d skipped",
		report.Succeeded, report.Failed, report.Skipped)
	return report, nil
}

// callModel paces requests and rotates API keys on 429 / quota errors.
func (s *implSummarizer) callModel(ctx context.Context, prompt string) (string, error) {
	var lastErr error

	for range len(s.apiKeys) {
		if err := s.limiter.Wait(ctx); err != nil {
			return "", err
		}

		key, index := s.key()
		text, err := s.generate(ctx, key, s.model, prompt)
		if err == nil {
			return text, nil
		}
		if !isQuotaError(err) {
			return "", err
		}
		s.logger.Warn(ctx, "Key %d rate limited, rotating...", index+1)
		s.rotateKey(index)
		lastErr = err
	}

	return "", fmt.Errorf("all API keys exhausted: %w", lastErr)
}

func (s *implSummarizer) key() (string, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apiKeys[s.currentKey], s.currentKey
}

// rotateKey moves past from unless another caller already has.
func (s *implSummarizer) rotateKey(from int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentKey == from {
		s.currentKey = (s.currentKey + 1) % len(s.apiKeys)
	}
}

func isQuotaError(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code == 429 {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}

func generateGemini(ctx context.Context, apiKey, model, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("create client: %w", err)
	}

	result, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := result.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from Gemini")
	}
	return text, nil
}

// loadTranscript returns the text to summarize. JSON results contribute
// their transcript and visual text; other files are used as written.
func loadTranscript(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read transcript: %w", err)
	}

	text := string(data)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		var doc struct {
			Transcript string  `json:"transcript"`
			VisualText *string `json:"visual_text"`
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return "", fmt.Errorf("decode %s: %w", filepath.Base(path), err)
		}
		text = doc.Transcript
		if doc.VisualText != nil && *doc.VisualText != "" {
			text += "\n\nOn-screen text:\n" + *doc.VisualText
		}
	}

	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: %s", ErrEmptyTranscript, path)
	}
	return text, nil
}

func discoverTranscripts(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") || strings.HasSuffix(e.Name(), ".summary.md") {
			continue
		}
		if transcriptExts[strings.ToLower(filepath.Ext(e.Name()))] {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}

	sort.Strings(files)
	return files, nil
}
