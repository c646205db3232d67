package parser

import (
	"strings"
	"unicode/utf8"
)

const (
	minProjectLength = 20
	maxProjectLength = 500
	maxProjects      = 10
)

// ExtractProjects splits the projects block on bullets and blank lines and keeps
// fragments of at least 20 and fewer than 500 characters, in document order.
func ExtractProjects(text string) []string {
	projects := make([]string, 0)

	section, ok := ProjectsSection(text)
	if !ok {
		return projects
	}

	for _, fragment := range projectSplitPattern.Split(section, -1) {
		fragment = strings.TrimSpace(fragment)
		n := utf8.RuneCountInString(fragment)
		if n < minProjectLength || n >= maxProjectLength {
			continue
		}
		projects = append(projects, fragment)
		if len(projects) == maxProjects {
			break
		}
	}
	return projects
}
