// Package docx extracts text from Office Open XML word documents.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/contentbuilder/internal/core/domain"
	"github.com/custodia-labs/contentbuilder/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// MIMEType is the DOCX content type.
const MIMEType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// maxPartSize bounds how much of one archive member is read.
const maxPartSize = 64 << 20

// Normaliser handles DOCX documents.
type Normaliser struct{}

// New creates a new DOCX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{MIMEType}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Generic MIME normaliser
}

// Normalise extracts paragraphs separated by blank lines. Paragraphs styled
// as headings become sections.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*domain.NormalisedDocument, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	reader, err := zip.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return nil, fmt.Errorf("%w: not a docx archive: %v", domain.ErrInvalidInput, err)
	}

	body, err := readPart(reader, "word/document.xml")
	if err != nil {
		return nil, err
	}
	content, sections := parseDocumentXML(body)

	return &domain.NormalisedDocument{
		Title:    extractTitle(reader, raw.URI),
		Filename: filepath.Base(raw.URI),
		Content:  content,
		Sections: sections,
	}, nil
}

// readPart returns the named archive member, or nil if it is absent.
func readPart(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: open %s: %v", domain.ErrInvalidInput, name, err)
		}
		defer rc.Close()

		content, err := io.ReadAll(io.LimitReader(rc, maxPartSize))
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", domain.ErrInvalidInput, name, err)
		}
		return content, nil
	}
	return nil, nil
}

// documentXML represents the structure of word/document.xml.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
	} `xml:"body"`
}

type paragraph struct {
	Props struct {
		Style struct {
			Val string `xml:"val,attr"`
		} `xml:"pStyle"`
	} `xml:"pPr"`
	Runs []run `xml:"r"`
}

type run struct {
	Text []textElement `xml:"t"`
}

type textElement struct {
	Content string `xml:",chardata"`
}

func (p *paragraph) text() string {
	var b strings.Builder
	for _, r := range p.Runs {
		for _, t := range r.Text {
			b.WriteString(t.Content)
		}
	}
	return strings.TrimSpace(b.String())
}

func (p *paragraph) isHeading() bool {
	style := strings.ToLower(p.Props.Style.Val)
	return strings.HasPrefix(style, "heading") || style == "title"
}

// parseDocumentXML joins non-empty paragraphs with blank lines and records
// the offset of each heading paragraph.
func parseDocumentXML(content []byte) (string, []domain.Section) {
	if len(content) == 0 {
		return "", nil
	}
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return "", nil
	}

	var result strings.Builder
	var sections []domain.Section
	for i := range doc.Body.Paragraphs {
		para := &doc.Body.Paragraphs[i]
		text := para.text()
		if text == "" {
			continue
		}
		if result.Len() > 0 {
			result.WriteString("\n\n")
		}
		if para.isHeading() {
			sections = append(sections, domain.Section{Heading: text, Offset: result.Len()})
		}
		result.WriteString(text)
	}
	return result.String(), sections
}

// coreXML represents the structure of docProps/core.xml.
type coreXML struct {
	Title string `xml:"title"`
}

// extractTitle reads the title from docProps/core.xml or falls back to the
// filename.
func extractTitle(reader *zip.Reader, uri string) string {
	if content, err := readPart(reader, "docProps/core.xml"); err == nil && content != nil {
		var core coreXML
		if err := xml.Unmarshal(content, &core); err == nil && strings.TrimSpace(core.Title) != "" {
			return strings.TrimSpace(core.Title)
		}
	}

	filename := filepath.Base(uri)
	if ext := filepath.Ext(filename); ext != "" {
		filename = strings.TrimSuffix(filename, ext)
	}
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}
