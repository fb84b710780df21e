// Package docx provides a normaliser for Word documents.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/studyrag/internal/core/domain"
	"github.com/custodia-labs/studyrag/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles DOCX documents.
type Normaliser struct{}

// New creates a new DOCX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedExtensions returns the extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".docx"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise extracts paragraph text. Explicit page breaks split the result
// into numbered pages; a document without breaks is a single page 1.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	reader, err := zip.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return nil, fmt.Errorf("%w: not a docx archive: %w", domain.ErrInvalidInput, err)
	}

	content, err := readDocumentXML(reader)
	if err != nil {
		return nil, err
	}

	return &driven.NormaliseResult{Pages: parseDocumentXML(content)}, nil
}

// readDocumentXML returns the bytes of word/document.xml.
func readDocumentXML(reader *zip.Reader) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: open document.xml: %w", domain.ErrInvalidInput, err)
		}
		defer rc.Close()

		content, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("%w: read document.xml: %w", domain.ErrInvalidInput, err)
		}
		return content, nil
	}
	return nil, fmt.Errorf("%w: word/document.xml missing", domain.ErrInvalidInput)
}

// documentXML represents the structure of word/document.xml.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
	} `xml:"body"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

// run keeps text and breaks in document order.
type run struct {
	Items []runItem `xml:",any"`
}

type runItem struct {
	XMLName xml.Name
	Type    string `xml:"type,attr"`
	Content string `xml:",chardata"`
}

// parseDocumentXML extracts the text of each page. Unparseable XML yields no pages.
func parseDocumentXML(content []byte) []domain.Page {
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return nil
	}

	var pages []domain.Page
	var current strings.Builder
	number := 1

	flush := func() {
		pages = append(pages, domain.Page{Number: number, Text: strings.TrimSpace(current.String())})
		current.Reset()
		number++
	}

	for i, para := range doc.Body.Paragraphs {
		if i > 0 {
			current.WriteString("\n")
		}
		for _, r := range para.Runs {
			for _, item := range r.Items {
				switch item.XMLName.Local {
				case "t":
					current.WriteString(item.Content)
				case "tab":
					current.WriteString("\t")
				case "br":
					if item.Type == "page" {
						flush()
					} else {
						current.WriteString("\n")
					}
				}
			}
		}
	}
	flush()

	// Drop pages that hold nothing but a break.
	kept := pages[:0]
	for _, p := range pages {
		if p.Text != "" {
			kept = append(kept, p)
		}
	}
	return kept
}
