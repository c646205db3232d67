package parser

import (
	"strings"

	"jobai-go/internal/types"
	"jobai-go/pkg/utils"
)

const maxNameTokens = 5

// ExtractContactInfo pulls contact details from raw text. Fields without a match stay nil.
func ExtractContactInfo(text string) types.ContactInfo {
	var info types.ContactInfo

	if email := emailPattern.FindString(text); email != "" {
		info.Email = utils.StringPtr(email)
	}

	for _, p := range phonePatterns {
		if phone := p.FindString(text); phone != "" {
			info.Phone = utils.StringPtr(phone)
			break
		}
	}

	info.Name = extractName(text)

	if m := linkedInPattern.FindStringSubmatch(text); m != nil {
		info.LinkedIn = utils.StringPtr("https://linkedin.com/in/" + m[1])
	}
	if m := gitHubPattern.FindStringSubmatch(text); m != nil {
		info.GitHub = utils.StringPtr("https://github.com/" + m[1])
	}
	if loc := locationPattern.FindString(text); loc != "" {
		info.Location = utils.StringPtr(loc)
	}

	return info
}

// extractName takes the first non-blank line and accepts it only when it is short
// and carries no digit or '@'.
func extractName(text string) *string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if len(strings.Fields(line)) <= maxNameTokens && !nameRejectPattern.MatchString(line) {
			return utils.StringPtr(line)
		}
		return nil
	}
	return nil
}
