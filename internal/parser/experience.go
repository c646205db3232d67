package parser

import (
	"math"
	"strconv"
	"strings"
	"time"

	"jobai-go/internal/logger"
	"jobai-go/internal/types"

	dps "github.com/markusmobius/go-dateparser"
)

const (
	maxTotalYears      = 50.0
	maxRangeMonths     = 240
	minRangeStartYear  = 2000
	positionScanWindow = 5000
	maxPositions       = 5
)

// ExperienceExtractor derives total years and position strings. The clock is injectable
// so "present" ranges are reproducible in tests.
type ExperienceExtractor struct {
	now func() time.Time
}

// ExperienceOption configures an ExperienceExtractor.
type ExperienceOption func(*ExperienceExtractor)

// WithClock overrides the source of "now".
func WithClock(now func() time.Time) ExperienceOption {
	return func(e *ExperienceExtractor) {
		if now != nil {
			e.now = now
		}
	}
}

// NewExperienceExtractor creates an extractor using time.Now unless overridden.
func NewExperienceExtractor(opts ...ExperienceOption) *ExperienceExtractor {
	e := &ExperienceExtractor{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultExperienceExtractor = NewExperienceExtractor()

// ExtractExperience runs the default extractor.
func ExtractExperience(text string) types.Experience {
	return defaultExperienceExtractor.Extract(text)
}

// Extract returns the experience summary. A direct "N years experience" mention wins;
// date ranges inside the experience section are only summed when there is none.
func (e *ExperienceExtractor) Extract(text string) types.Experience {
	exp := types.Experience{Positions: make([]string, 0)}

	lower := strings.ToLower(text)
	section, hasSection := experienceSection.Find(lower)

	if hasSection {
		exp.Positions = extractPositions(text)
	}

	years, found := directYears(lower)
	if !found && hasSection {
		years = e.yearsFromDateRanges(section)
	}
	exp.TotalYears = math.Min(years, maxTotalYears)

	return exp
}

// directYears collects every number from both mention patterns and keeps the largest
// value in (0, 50].
func directYears(lower string) (float64, bool) {
	best, found := 0.0, false
	for _, p := range directYearsPatterns {
		for _, m := range p.FindAllStringSubmatch(lower, -1) {
			v, err := strconv.ParseFloat(m[1], 64)
			if err != nil || v <= 0 || v > maxTotalYears {
				continue
			}
			if !found || v > best {
				best, found = v, true
			}
		}
	}
	return best, found
}

func (e *ExperienceExtractor) yearsFromDateRanges(section string) float64 {
	now := e.now()
	cfg := &dps.Configuration{
		CurrentTime:         now,
		PreferredDayOfMonth: dps.First,
	}

	totalMonths := 0
	for _, m := range dateRangePattern.FindAllStringSubmatch(section, -1) {
		startStr, endStr := m[1], m[2]

		start, err := dps.Parse(cfg, startStr)
		if err != nil {
			logger.Debug().Str("fragment", startStr).Err(err).Msg("skipping unparseable date range start")
			continue
		}

		end := now
		if !strings.Contains(endStr, "present") && !strings.Contains(endStr, "current") {
			parsed, err := dps.Parse(cfg, endStr)
			if err != nil {
				logger.Debug().Str("fragment", endStr).Err(err).Msg("skipping unparseable date range end")
				continue
			}
			end = parsed.Time
		}

		if start.Time.Year() < minRangeStartYear || start.Time.After(now) {
			continue
		}
		months := monthSpan(start.Time, end)
		if months > 0 && months <= maxRangeMonths {
			totalMonths += months
		}
	}

	if totalMonths == 0 {
		return 0
	}
	return math.Round(float64(totalMonths)/12*10) / 10
}

// monthSpan counts both the start and the end month, so Jan-Dec of one year is 12.
func monthSpan(start, end time.Time) int {
	return (end.Year()-start.Year())*12 + int(end.Month()-start.Month()) + 1
}

// extractPositions scans the head of the original text. Each pattern contributes at
// most its first five matches; the combined list is deduplicated and capped.
func extractPositions(text string) []string {
	window := TruncateRunes(text, positionScanWindow)

	positions := make([]string, 0, maxPositions)
	seen := make(map[string]struct{})
	for _, p := range positionPatterns {
		matches := p.FindAllStringSubmatch(window, maxPositions)
		for _, m := range matches {
			pos := strings.TrimSpace(m[1])
			if _, ok := seen[pos]; ok {
				continue
			}
			seen[pos] = struct{}{}
			positions = append(positions, pos)
		}
	}
	if len(positions) > maxPositions {
		positions = positions[:maxPositions]
	}
	return positions
}
