package keywords

import (
	"strings"

	"jobai-go/internal/types"
)

// Experience level buckets.
const (
	LevelEntry  = "Entry Level / Fresher"
	LevelJunior = "Junior"
	LevelMid    = "Mid-Level"
	LevelSenior = "Senior"
)

const (
	maxJobTitles       = 20
	maxTechnologies    = 15
	maxPrimarySkills   = 10
	maxLanguageTitles  = 3
	maxSeniorVariants  = 10
	fullStackThreshold = 3

	seniorLanguageYears = 3.0
	seniorTitleYears    = 5.0

	seniorPrefix = "Senior"
)

// ExperienceLevel buckets total years; each bucket includes its upper bound.
func ExperienceLevel(years float64) string {
	switch {
	case years == 0:
		return LevelEntry
	case years <= 2:
		return LevelJunior
	case years <= 5:
		return LevelMid
	default:
		return LevelSenior
	}
}

// Generate derives search keywords from record. The result does not alias record's slices.
func Generate(record *types.ResumeRecord) types.SearchKeywords {
	skills := record.Skills
	years := record.Experience.TotalYears

	return types.SearchKeywords{
		PrimarySkills:   head(skills.AllSkills, maxPrimarySkills),
		JobTitles:       JobTitles(skills, years),
		Technologies:    head(skills.AllSkills, maxTechnologies),
		ExperienceLevel: ExperienceLevel(years),
		Locations:       head(record.JobPreferences.PreferredLocations, len(record.JobPreferences.PreferredLocations)),
	}
}

// JobTitles runs the rule table in canonical order and returns at most 20 titles in
// insertion order.
func JobTitles(skills types.SkillSet, years float64) []string {
	titles := collectTitles(skills, years)

	if titles.Len() == 0 {
		titles.Add(fallbackTitles...)
	}

	if years >= seniorTitleYears {
		var senior []string
		for _, title := range titles.Head(maxSeniorVariants) {
			if !strings.HasPrefix(title, seniorPrefix) {
				senior = append(senior, seniorPrefix+" "+title)
			}
		}
		titles.Add(senior...)
	}

	return titles.Head(maxJobTitles)
}

func collectTitles(skills types.SkillSet, years float64) *OrderedSet {
	titles := NewOrderedSet()

	for _, lang := range head(skills.ProgrammingLanguages, maxLanguageTitles) {
		titles.Add(lang + " Developer")
		if years >= seniorLanguageYears {
			titles.Add(seniorPrefix + " " + lang + " Developer")
		}
	}

	for _, rule := range titleRules {
		if len(rule.guard(skills)) == 0 || !rule.trigger(skills) {
			continue
		}
		titles.Add(rule.titles...)
	}
	return titles
}

func head(list []string, n int) []string {
	if n > len(list) {
		n = len(list)
	}
	out := make([]string, n)
	copy(out, list[:n])
	return out
}
