package export

import (
	"regexp"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
)

const (
	fontName = "Malgun Gothic"
	fontSize = 11
	black    = "000000"
	gray     = "555555"
)

var (
	reHeading = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	reBold    = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reBullet  = regexp.MustCompile(`^[\-\*]\s+(.+)$`)
)

// sheet accumulates a study sheet document.
type sheet struct {
	doc *docx.RootDoc
}

func newSheet(title string) (*sheet, error) {
	doc, err := godocx.NewDocument()
	if err != nil {
		return nil, err
	}
	s := &sheet{doc: doc}
	s.heading(title, 18)
	return s, nil
}

func (s *sheet) heading(text string, size uint64) {
	addStyledRun(s.doc.AddParagraph(""), text, true, size, black)
}

func (s *sheet) note(text string) {
	addStyledRun(s.doc.AddParagraph(""), text, false, fontSize-1, gray)
}

func (s *sheet) line(text string) {
	addRichText(s.doc.AddParagraph(""), text)
}

func (s *sheet) labelled(label, value string) {
	p := s.doc.AddParagraph("")
	p.AddText(label + ": ").Font(fontName).Size(fontSize).Color(black).Bold(true)
	p.AddText(value).Font(fontName).Size(fontSize).Color(black)
}

// markdown renders generated analysis text. Headings, bullets and **bold**
// are styled; everything else becomes a plain paragraph.
func (s *sheet) markdown(text string) {
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed == "---" {
			continue
		}
		if m := reHeading.FindStringSubmatch(trimmed); m != nil {
			addStyledRun(s.doc.AddParagraph(""), m[2], true, headingSize(len(m[1])), black)
			continue
		}
		if m := reBullet.FindStringSubmatch(trimmed); m != nil {
			s.line("• " + m[1])
			continue
		}
		s.line(trimmed)
	}
}

func (s *sheet) saveTo(path string) error {
	return s.doc.SaveTo(path)
}

func headingSize(level int) uint64 {
	switch level {
	case 1:
		return 15
	case 2:
		return 14
	case 3:
		return 13
	default:
		return fontSize
	}
}

func addStyledRun(p *docx.Paragraph, text string, bold bool, size uint64, color string) {
	run := p.AddText(cleanMarkdownInline(text)).Font(fontName).Size(size).Color(color)
	if bold {
		run.Bold(true)
	}
}

func addRichText(p *docx.Paragraph, text string) {
	parts := reBold.Split(text, -1)
	matches := reBold.FindAllStringSubmatch(text, -1)

	for i, part := range parts {
		if part != "" {
			p.AddText(cleanMarkdownInline(part)).Font(fontName).Size(fontSize).Color(black)
		}
		if i < len(matches) {
			p.AddText(cleanMarkdownInline(matches[i][1])).Font(fontName).Size(fontSize).Color(black).Bold(true)
		}
	}
}

func cleanMarkdownInline(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "__", "")
	s = strings.ReplaceAll(s, "`", "")
	return s
}
