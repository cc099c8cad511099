// Package docx writes and reads the small subset of WordprocessingML the
// minutes tool needs. A .docx file is a zip archive of XML parts; this
// package emits the three required parts directly.
package docx

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Run is a contiguous span of text with uniform formatting.
type Run struct {
	Text string
	Bold bool
	// SizePt is the font size in points; zero keeps the document default.
	SizePt int
}

// Paragraph is a block of runs with paragraph-level formatting.
type Paragraph struct {
	Runs     []Run
	Centered bool
	// Bullet renders the paragraph as a hanging-indent list item.
	Bullet bool
}

// Document is an in-memory word-processing document.
type Document struct {
	paragraphs []Paragraph
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	return &Document{}
}

// AddParagraph appends a paragraph.
func (d *Document) AddParagraph(p Paragraph) {
	d.paragraphs = append(d.paragraphs, p)
}

// AddText appends a plain paragraph with a single run.
func (d *Document) AddText(text string) {
	d.AddParagraph(Paragraph{Runs: []Run{{Text: text}}})
}

// AddEmpty appends an empty spacer paragraph.
func (d *Document) AddEmpty() {
	d.AddParagraph(Paragraph{})
}

const (
	contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>
`

	relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>
`
)

// Save writes the document to path, creating parent directories as needed.
func (d *Document) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}

	if err := d.Write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Write serializes the document as a .docx archive.
func (d *Document) Write(w io.Writer) error {
	zw := zip.NewWriter(w)

	parts := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", relsXML},
		{"word/document.xml", d.documentXML()},
	}

	for _, part := range parts {
		fw, err := zw.Create(part.name)
		if err != nil {
			return fmt.Errorf("create zip entry %s: %w", part.name, err)
		}
		if _, err := io.WriteString(fw, part.content); err != nil {
			return fmt.Errorf("write zip entry %s: %w", part.name, err)
		}
	}

	return zw.Close()
}

func (d *Document) documentXML() string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	b.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)

	for _, p := range d.paragraphs {
		writeParagraph(&b, p)
	}

	// A4 page size.
	b.WriteString(`<w:sectPr><w:pgSz w:w="11906" w:h="16838"/></w:sectPr>`)
	b.WriteString(`</w:body></w:document>`)
	return b.String()
}

func writeParagraph(b *strings.Builder, p Paragraph) {
	b.WriteString(`<w:p>`)

	if p.Centered || p.Bullet {
		b.WriteString(`<w:pPr>`)
		if p.Centered {
			b.WriteString(`<w:jc w:val="center"/>`)
		}
		if p.Bullet {
			b.WriteString(`<w:ind w:left="720" w:hanging="360"/>`)
		}
		b.WriteString(`</w:pPr>`)
	}

	for _, r := range p.Runs {
		writeRun(b, r)
	}

	b.WriteString(`</w:p>`)
}

func writeRun(b *strings.Builder, r Run) {
	b.WriteString(`<w:r>`)

	if r.Bold || r.SizePt > 0 {
		b.WriteString(`<w:rPr>`)
		if r.Bold {
			b.WriteString(`<w:b/>`)
		}
		if r.SizePt > 0 {
			// w:sz counts half-points.
			fmt.Fprintf(b, `<w:sz w:val="%d"/><w:szCs w:val="%d"/>`, r.SizePt*2, r.SizePt*2)
		}
		b.WriteString(`</w:rPr>`)
	}

	b.WriteString(`<w:t xml:space="preserve">`)
	b.WriteString(escapeXML(r.Text))
	b.WriteString(`</w:t></w:r>`)
}

func escapeXML(s string) string {
	var b strings.Builder
	// EscapeText only fails on writer errors, which strings.Builder never returns.
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
