package summarizer

import "context"

// Summarizer turns saved transcripts into LLM-written markdown summaries.
type Summarizer interface {
	// Summarize reads one saved transcript (.md, .txt or .json) and returns
	// the summary markdown.
	Summarize(ctx context.Context, transcriptPath string) (string, error)
	// SummarizeAll summarizes every transcript in srcDir into destDir,
	// writing <name>.md and, when docx is set, <name>.docx.
	SummarizeAll(ctx context.Context, srcDir, destDir string, docx bool) (Report, error)
}

// Report counts the outcome of a SummarizeAll run.
type Report struct {
	Succeeded int
	Failed    int
	Skipped   int
}
