// Package extract turns uploaded resume files into plain text for parsing
// and matching. Supported formats: pdf, docx, txt.
package extract

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/nguyenthenguyen/docx"
	pdfextractor "github.com/unidoc/unipdf/v3/extractor"
	pdf "github.com/unidoc/unipdf/v3/model"
)

// Text extracts plain text from data based on the file extension (without the
// dot, lower-case).
func Text(data []byte, fileType string) (string, error) {
	switch strings.ToLower(fileType) {
	case "pdf":
		return fromPDF(data)
	case "docx", "doc":
		return fromDOCX(data)
	case "txt":
		return string(data), nil
	default:
		return "", fmt.Errorf("unsupported file type %q", fileType)
	}
}

func fromPDF(data []byte) (string, error) {
	reader, err := pdf.NewPdfReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}

	numPages, err := reader.GetNumPages()
	if err != nil {
		return "", fmt.Errorf("pdf page count: %w", err)
	}
	if numPages == 0 {
		return "", fmt.Errorf("pdf has no pages")
	}

	var sb strings.Builder
	for i := 1; i <= numPages; i++ {
		page, err := reader.GetPage(i)
		if err != nil {
			continue // skip damaged pages, keep the rest
		}
		ex, err := pdfextractor.New(page)
		if err != nil {
			continue
		}
		text, err := ex.ExtractText()
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", fmt.Errorf("no extractable text in pdf")
	}
	return out, nil
}

var (
	docxParaRe = regexp.MustCompile(`</w:p>`)
	docxTagRe  = regexp.MustCompile(`<[^>]+>`)
)

var docxEntities = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
)

func fromDOCX(data []byte) (string, error) {
	reader, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read docx: %w", err)
	}
	defer reader.Close()

	content := reader.Editable().GetContent()

	// The editable content is WordprocessingML; paragraph closes become
	// newlines, every other tag is dropped.
	content = docxParaRe.ReplaceAllString(content, "\n")
	content = docxTagRe.ReplaceAllString(content, "")
	content = docxEntities.Replace(content)

	out := strings.TrimSpace(content)
	if out == "" {
		return "", fmt.Errorf("no extractable text in docx")
	}
	return out, nil
}
