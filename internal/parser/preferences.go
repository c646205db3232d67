package parser

import (
	"strings"

	"jobai-go/internal/types"
	"jobai-go/pkg/utils"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ExtractJobPreferences runs independent keyword checks over the lower-cased text.
func ExtractJobPreferences(text string) types.JobPreferences {
	lower := strings.ToLower(text)

	prefs := types.JobPreferences{
		JobTypes:           make([]string, 0),
		PreferredLocations: make([]string, 0),
	}

	for _, jt := range jobTypePatterns {
		if jt.pattern.MatchString(lower) {
			prefs.JobTypes = append(prefs.JobTypes, jt.label)
		}
	}

	prefs.RemotePreference = remotePattern.MatchString(lower)

	for _, p := range salaryPatterns {
		if m := p.FindString(lower); m != "" {
			prefs.SalaryExpectation = utils.StringPtr(m)
			break
		}
	}

	// cases.Caser is stateful, so one per call.
	title := cases.Title(language.English)
	for i, p := range preferredLocationPatterns {
		if p.MatchString(lower) {
			prefs.PreferredLocations = append(prefs.PreferredLocations, title.String(preferredLocationKeywords[i]))
		}
	}

	return prefs
}
