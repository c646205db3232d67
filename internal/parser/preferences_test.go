package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJobPreferences(t *testing.T) {
	text := "Looking for Full-Time or contract roles, open to remote. Expected 12-15 LPA. Prefer Bangalore or Pune."

	prefs := ExtractJobPreferences(text)

	assert.Equal(t, []string{"Full-time", "Contract"}, prefs.JobTypes)
	assert.True(t, prefs.RemotePreference)
	require.NotNil(t, prefs.SalaryExpectation)
	assert.Equal(t, "12-15 lpa", *prefs.SalaryExpectation)
	assert.Equal(t, []string{"Bangalore", "Pune", "Remote"}, prefs.PreferredLocations)
}

func TestExtractJobPreferences_SalaryKeyword(t *testing.T) {
	prefs := ExtractJobPreferences("Current CTC: 900000 per annum")

	require.NotNil(t, prefs.SalaryExpectation)
	assert.Equal(t, "ctc: 900000", *prefs.SalaryExpectation)
}

func TestExtractJobPreferences_WorkFromHome(t *testing.T) {
	prefs := ExtractJobPreferences("Happy to work from home")

	assert.True(t, prefs.RemotePreference)
	assert.Empty(t, prefs.PreferredLocations)
}

func TestExtractJobPreferences_Empty(t *testing.T) {
	prefs := ExtractJobPreferences("")

	assert.NotNil(t, prefs.JobTypes)
	assert.Empty(t, prefs.JobTypes)
	assert.NotNil(t, prefs.PreferredLocations)
	assert.False(t, prefs.RemotePreference)
	assert.Nil(t, prefs.SalaryExpectation)
}
