package minutes

import (
	"fmt"
	"strings"

	"github.com/boilerroom/sidestep/internal/docx"
)

// DocumentTitle is the heading of generated documents.
const DocumentTitle = "Boiler Room-protokoll"

const (
	labelTeam         = "Team:"
	labelDate         = "Datum:"
	labelParticipants = "Deltagare:"
	labelStatus       = "Status:"

	sectionWorked    = "Vad vi jobbade med:"
	sectionObstacles = "Hinder vi stötte på:"
	sectionNextSteps = "Nästa steg:"
)

// Earlier versions of the tool used different titles; skip all of them when
// reading a document back.
var knownTitles = []string{
	DocumentTitle,
	"Standup / Workshop-protokoll",
	"Workshop-protokoll",
}

// BuildDocument renders the minutes into a Word document: a centered
// title, labeled header lines, and bulleted sections.
func BuildDocument(m Minutes) *docx.Document {
	doc := docx.NewDocument()

	doc.AddParagraph(docx.Paragraph{
		Runs:     []docx.Run{{Text: DocumentTitle, Bold: true, SizePt: 16}},
		Centered: true,
	})
	doc.AddEmpty()

	addLabeled(doc, labelTeam, orDash(m.Team))
	addLabeled(doc, labelDate, orDash(m.Date))
	addLabeled(doc, labelParticipants, orDash(m.Participants))
	doc.AddEmpty()

	addSection(doc, sectionWorked, m.Worked)
	addSection(doc, sectionObstacles, m.Obstacles)

	addLabeled(doc, labelStatus, m.Status.Label())
	doc.AddEmpty()

	addSection(doc, sectionNextSteps, m.NextSteps)

	return doc
}

// WriteFile validates the minutes and writes the document to path.
func WriteFile(m Minutes, path string) error {
	if err := m.Validate(); err != nil {
		return err
	}
	return BuildDocument(m).Save(path)
}

// ReadFile parses a previously generated document back into Minutes.
func ReadFile(path string) (Minutes, error) {
	paragraphs, err := docx.ExtractParagraphs(path)
	if err != nil {
		return Minutes{}, fmt.Errorf("read minutes document: %w", err)
	}
	return parseParagraphs(paragraphs), nil
}

func addLabeled(doc *docx.Document, label, value string) {
	doc.AddParagraph(docx.Paragraph{Runs: []docx.Run{
		{Text: label + " ", Bold: true},
		{Text: value},
	}})
}

func addSection(doc *docx.Document, heading string, items []string) {
	doc.AddParagraph(docx.Paragraph{Runs: []docx.Run{{Text: heading, Bold: true}}})
	for _, item := range items {
		doc.AddParagraph(docx.Paragraph{
			Runs:   []docx.Run{{Text: "• " + item}},
			Bullet: true,
		})
	}
	doc.AddEmpty()
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return strings.TrimSpace(s)
}

// parseParagraphs walks the paragraph texts as a small state machine:
// labeled header lines, section headings, and bulleted content lines
// belonging to the most recent section.
func parseParagraphs(paragraphs []string) Minutes {
	m := Minutes{Status: StatusOnTrack}

	var currentSection *[]string

	for _, raw := range paragraphs {
		text := strings.TrimSpace(raw)
		if text == "" {
			continue
		}
		if isKnownTitle(text) {
			continue
		}

		switch {
		case strings.HasPrefix(text, labelTeam):
			m.Team = strings.TrimSpace(strings.TrimPrefix(text, labelTeam))
			currentSection = nil
		case strings.HasPrefix(text, labelDate):
			m.Date = strings.TrimSpace(strings.TrimPrefix(text, labelDate))
			currentSection = nil
		case strings.HasPrefix(text, labelParticipants):
			m.Participants = strings.TrimSpace(strings.TrimPrefix(text, labelParticipants))
			currentSection = nil
		case strings.HasPrefix(text, labelStatus):
			m.Status = ParseStatus(strings.TrimPrefix(text, labelStatus))
			currentSection = nil
		case text == sectionWorked:
			currentSection = &m.Worked
		case text == sectionObstacles:
			currentSection = &m.Obstacles
		case text == sectionNextSteps:
			currentSection = &m.NextSteps
		case currentSection != nil:
			cleaned := strings.TrimLeft(text, "•\t -")
			if cleaned != "" {
				*currentSection = append(*currentSection, cleaned)
			}
		}
	}

	return m
}

func isKnownTitle(text string) bool {
	for _, title := range knownTitles {
		if text == title {
			return true
		}
	}
	return false
}
