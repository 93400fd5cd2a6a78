// Package extract turns uploaded resume files into plain text.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

const (
	MimePDF  = "application/pdf"
	MimeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeText = "text/plain"
)

// ErrUnsupportedType is returned for mime types we cannot extract from.
var ErrUnsupportedType = errors.New("unsupported file type")

// Extractor implements text extraction for the supported resume formats.
// It is stateless; the zero value is ready to use.
type Extractor struct{}

// Extract returns the plain text of a resume file, dispatching on its
// mime type. Extraction failures are reported to the caller so a batch
// can skip the file and continue.
func (Extractor) Extract(mime string, data []byte) (string, error) {
	switch mime {
	case MimeText:
		return string(data), nil

	case MimePDF:
		return extractPDFText(data)

	case MimeDocx:
		return extractDocxText(data)

	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, mime)
	}
}

func extractPDFText(data []byte) (string, error) {
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}

	var textBuilder strings.Builder
	numPages := pdfReader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, _ := page.GetPlainText(nil)
		textBuilder.WriteString(text)
	}
	return textBuilder.String(), nil
}

func extractDocxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	return doc.Editable().GetContent(), nil
}

// MimeForFilename maps an upload's file extension to a supported mime
// type, or "" when the extension is unknown.
func MimeForFilename(name string) string {
	switch {
	case strings.HasSuffix(strings.ToLower(name), ".pdf"):
		return MimePDF
	case strings.HasSuffix(strings.ToLower(name), ".docx"):
		return MimeDocx
	case strings.HasSuffix(strings.ToLower(name), ".txt"):
		return MimeText
	default:
		return ""
	}
}
