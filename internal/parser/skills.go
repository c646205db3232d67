package parser

import (
	"strings"

	"jobai-go/internal/types"
)

// ExtractSkills matches every vocabulary term as a whole word against the lower-cased text.
func ExtractSkills(text string) types.SkillSet {
	lower := strings.ToLower(text)

	detected := make(map[string][]string, len(SkillCategories))
	all := make([]string, 0)
	seen := make(map[string]struct{})

	for _, cat := range SkillCategories {
		hits := make([]string, 0)
		for _, term := range cat.Terms {
			if !skillMatchers[term].MatchString(lower) {
				continue
			}
			hits = append(hits, term)
			if _, ok := seen[term]; !ok {
				seen[term] = struct{}{}
				all = append(all, term)
			}
		}
		detected[cat.Key] = hits
	}

	return types.SkillSet{
		ProgrammingLanguages: detected[CategoryProgrammingLanguages],
		WebTechnologies:      detected[CategoryWebTechnologies],
		MobileDevelopment:    detected[CategoryMobileDevelopment],
		Databases:            detected[CategoryDatabases],
		CloudDevOps:          detected[CategoryCloudDevOps],
		DataScienceAI:        detected[CategoryDataScienceAI],
		OtherTools:           detected[CategoryOtherTools],
		AllSkills:            all,
	}
}
