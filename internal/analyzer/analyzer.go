// Package analyzer runs the per-session resume analysis pipeline:
// download each file, extract its text, ask the model for a comparison
// table, and parse the table out of the response.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/adebayor/resumetable/internal/database"
	"github.com/adebayor/resumetable/internal/mdtable"
	"github.com/adebayor/resumetable/internal/prompt"
)

// ErrNoText means no uploaded file yielded any text, so there is
// nothing to send to the model.
var ErrNoText = errors.New("no text available")

// Downloader fetches a stored upload by object key.
type Downloader interface {
	Download(ctx context.Context, key string) ([]byte, error)
}

// TextExtractor turns file bytes into plain text.
type TextExtractor interface {
	Extract(mime string, data []byte) (string, error)
}

// Generator sends a prompt to an LLM and returns the raw text response.
type Generator interface {
	Generate(ctx context.Context, promptText string) (string, error)
}

// Report is what a completed analysis looks like to the caller. RawText
// always carries the unmodified model output so the UI can fall back to
// it; Table is nil when the response held no parseable table, in which
// case ParseNote says why.
type Report struct {
	Table     *mdtable.Table `json:"table,omitempty"`
	Markdown  string         `json:"markdown,omitempty"`
	RawText   string         `json:"raw_text"`
	ParseNote string         `json:"parse_note,omitempty"`
	Warnings  []string       `json:"warnings,omitempty"`
}

type Analyzer struct {
	Store     Downloader
	Extractor TextExtractor
	LLM       Generator
	Prompt    prompt.Builder
	Parser    mdtable.Parser
}

// Run analyzes one session. A failure on one file skips that file and
// continues the batch; only an empty batch or an LLM failure is an
// error. A parse failure is not an error — the report degrades to raw
// text.
func (a *Analyzer) Run(ctx context.Context, resumes []database.Resume) (*Report, error) {
	var texts []string
	var warnings []string

	for _, resume := range resumes {
		// Downloads ride transient network failures; extraction does not,
		// a bad file stays bad.
		data, err := retry(3, func() ([]byte, error) {
			return a.Store.Download(ctx, resume.ObjectKey)
		})
		if err != nil {
			log.Printf("failed to download %s after retries: %v", resume.ObjectKey, err)
			warnings = append(warnings, fmt.Sprintf("could not download %s: %v", resume.OriginalFilename, err))
			continue
		}

		text, err := a.Extractor.Extract(resume.Mime, data)
		if err != nil {
			log.Printf("text extraction failed for %s: %v", resume.ObjectKey, err)
			warnings = append(warnings, fmt.Sprintf("could not extract text from %s: %v", resume.OriginalFilename, err))
			continue
		}
		if strings.TrimSpace(text) == "" {
			warnings = append(warnings, fmt.Sprintf("no text in %s, skipping", resume.OriginalFilename))
			continue
		}
		texts = append(texts, text)
	}

	if len(texts) == 0 {
		return nil, fmt.Errorf("%w for %d uploaded file(s)", ErrNoText, len(resumes))
	}

	promptText := a.Prompt.Build(texts)

	response, err := retry(2, func() (string, error) {
		return a.LLM.Generate(ctx, promptText)
	})
	if err != nil {
		return nil, fmt.Errorf("llm generate error: %w", err)
	}

	report := &Report{RawText: response, Warnings: warnings}

	table, err := a.Parser.Parse(stripFence(response))
	if err != nil {
		// Deterministic for a given response, so never retried. The raw
		// text is still useful to the user.
		log.Printf("no table in model response: %v", err)
		report.ParseNote = err.Error()
		return report, nil
	}

	report.Table = table
	report.Markdown = table.Markdown()
	return report, nil
}
