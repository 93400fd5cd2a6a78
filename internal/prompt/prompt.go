// Package prompt builds the instruction sent to the model from a batch
// of resume texts.
package prompt

import (
	"fmt"
	"strings"
)

// Separator is inserted between resumes so the model can tell candidates
// apart in the combined document.
const Separator = "\n\n--- NEW RESUME ---\n\n"

// DefaultTemplate names the six output columns and the "Not specified"
// fallback. The single %s verb receives the combined resume texts.
const DefaultTemplate = `Based on the following resume texts, create a Markdown table summarizing the key information for each candidate.
The table should have the following columns: "Name", "Age / DOB", "Years of Experience", "Specialization / JD", "Key Skills / Certifications", and "Other Details".
Extract the information as accurately as possible. If a piece of information is not found, write "Not specified".

Resume Texts:
%s`

// Builder joins resume texts and wraps them in an instruction template.
// The template is configuration, not logic: callers with a different
// output schema supply their own template containing one %s verb.
type Builder struct {
	Template  string
	Separator string
}

// Build combines texts into one prompt. The zero-value Builder uses
// DefaultTemplate and Separator.
func (b Builder) Build(texts []string) string {
	tmpl := b.Template
	if tmpl == "" {
		tmpl = DefaultTemplate
	}
	sep := b.Separator
	if sep == "" {
		sep = Separator
	}
	return fmt.Sprintf(tmpl, strings.Join(texts, sep))
}
