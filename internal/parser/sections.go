package parser

import (
	"regexp"
	"strings"
	"unicode"
)

// sectionLocator finds the block that follows a header line and runs up to the next
// recognised header or the end of the document, trailing whitespace excluded.
type sectionLocator struct {
	header *regexp.Regexp
	stop   *regexp.Regexp
}

var (
	experienceSection = sectionLocator{
		header: regexp.MustCompile(`(?i)(?:professional\s+)?(?:work\s+)?experience[:\s]*\n`),
		stop:   regexp.MustCompile(`(?i)\n\s*(?:education|projects|skills|certifications?)`),
	}
	educationSection = sectionLocator{
		header: regexp.MustCompile(`(?i)education[:\s]*\n`),
		stop:   regexp.MustCompile(`(?i)\n\s*(?:experience|projects|skills|certifications?)`),
	}
	projectsSection = sectionLocator{
		header: regexp.MustCompile(`(?i)projects?[:\s]*\n`),
		stop:   regexp.MustCompile(`(?i)\n\s*(?:experience|education|skills|certifications?)`),
	}
)

// Find returns the body that follows the first header occurrence.
func (l sectionLocator) Find(text string) (string, bool) {
	loc := l.header.FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	start := loc[1]
	tailStart := len(strings.TrimRightFunc(text, unicode.IsSpace))
	return text[start:l.end(text, start, tailStart)], true
}

// end is the earlier of the next stop header and the newline opening the blank tail.
// Without such a newline the body runs to the last non-space character.
func (l sectionLocator) end(text string, start, tailStart int) int {
	end := -1
	if m := l.stop.FindStringIndex(text[start:]); m != nil {
		end = start + m[0]
	}

	from := start
	if tailStart > from {
		from = tailStart
	}
	tail := from
	if i := strings.IndexByte(text[from:], '\n'); i >= 0 {
		tail = from + i
	}
	if end < 0 || tail < end {
		end = tail
	}
	return end
}

// ExperienceSection returns the lower-cased experience block, if any.
func ExperienceSection(text string) (string, bool) {
	return experienceSection.Find(strings.ToLower(text))
}

// EducationSection returns the lower-cased education block, if any.
func EducationSection(text string) (string, bool) {
	return educationSection.Find(strings.ToLower(text))
}

// ProjectsSection returns the lower-cased projects block, if any.
func ProjectsSection(text string) (string, bool) {
	return projectsSection.Find(strings.ToLower(text))
}
