// Package clause splits contract text into titled sections.
package clause

import (
	"regexp"
	"strings"

	"github.com/RussGuo/Legata/internal/domain"
)

// Preamble titles text that appears before the first heading.
const Preamble = "Preamble"

var (
	lineBreak     = regexp.MustCompile(`\r\n|\r|\n`)
	numberedTitle = regexp.MustCompile(`^([0-9]+\.)+\s+`)
	markdownTitle = regexp.MustCompile(`^#+\s+`)
	shoutedTitle  = regexp.MustCompile(`^[A-Z0-9 \-]{6,}$`)
)

// IsHeading reports whether a trimmed line opens a new section. Any all-caps
// line of six or more characters qualifies, including shouted sentences.
func IsHeading(line string) bool {
	return numberedTitle.MatchString(line) || markdownTitle.MatchString(line) || shoutedTitle.MatchString(line)
}

// Detect returns the sections of text in order of appearance. Input without
// content yields a single empty Preamble. CRLF, CR and LF all end a line, and
// bodies are joined with LF only.
func Detect(text string) []domain.Section {
	var (
		sections []domain.Section
		current  *domain.Section
	)
	for _, line := range lineBreak.Split(text, -1) {
		trimmed := strings.TrimSpace(line)
		if IsHeading(trimmed) {
			if current != nil {
				sections = append(sections, *current)
			}
			current = &domain.Section{Title: markdownTitle.ReplaceAllString(trimmed, "")}
			continue
		}
		if current == nil {
			current = &domain.Section{Title: Preamble}
		}
		if current.Body != "" {
			current.Body += "\n"
		}
		current.Body += line
	}
	if current != nil {
		sections = append(sections, *current)
	}
	if len(sections) == 1 && sections[0].Title == Preamble && strings.TrimSpace(sections[0].Body) == "" {
		sections[0].Body = ""
	}
	return sections
}
