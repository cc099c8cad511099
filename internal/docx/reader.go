package docx

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNoDocumentPart indicates the archive is missing word/document.xml.
var ErrNoDocumentPart = errors.New("no word/document.xml part in archive")

// ExtractParagraphs reads a .docx file and returns the text of each
// paragraph in document order. Formatting is discarded; runs within a
// paragraph are concatenated.
func ExtractParagraphs(path string) ([]string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open document part: %w", err)
		}
		paragraphs, err := parseDocumentXML(rc)
		_ = rc.Close()
		return paragraphs, err
	}

	return nil, ErrNoDocumentPart
}

func parseDocumentXML(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)

	var paragraphs []string
	var current strings.Builder
	inParagraph := false
	inText := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse document XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inParagraph = true
				current.Reset()
			case "t":
				inText = inParagraph
			case "br", "cr":
				if inParagraph {
					current.WriteString("\n")
				}
			case "tab":
				if inParagraph {
					current.WriteString("\t")
				}
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if inParagraph {
					paragraphs = append(paragraphs, current.String())
				}
				inParagraph = false
			}
		}
	}

	return paragraphs, nil
}
