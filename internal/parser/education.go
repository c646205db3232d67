package parser

import (
	"jobai-go/internal/types"
	"jobai-go/pkg/utils"
)

const (
	educationWindowBefore = 50
	educationWindowAfter  = 100
)

// ExtractEducation emits one entry per degree match inside the education block.
// Year and CGPA come from a window around the match and may belong to a neighbouring
// entry when degrees are listed close together.
func ExtractEducation(text string) []types.EducationEntry {
	entries := make([]types.EducationEntry, 0)

	section, ok := EducationSection(text)
	if !ok {
		return entries
	}

	for _, p := range degreePatterns {
		for _, loc := range p.FindAllStringIndex(section, -1) {
			entry := types.EducationEntry{Degree: section[loc[0]:loc[1]]}

			context := section[max(0, loc[0]-educationWindowBefore):min(len(section), loc[1]+educationWindowAfter)]
			if year := yearPattern.FindString(context); year != "" {
				entry.Year = utils.StringPtr(year)
			}
			if m := cgpaPattern.FindStringSubmatch(context); m != nil {
				entry.CGPA = utils.StringPtr(m[1])
			}

			entries = append(entries, entry)
		}
	}
	return entries
}
