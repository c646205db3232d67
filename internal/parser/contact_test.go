package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractContactInfo_AllFields(t *testing.T) {
	text := `Priya Sharma
priya.sharma@example.com | +91 9876543210
Bangalore, India
linkedin.com/in/priya-sharma github.com/priyacodes`

	info := ExtractContactInfo(text)

	require.NotNil(t, info.Name)
	assert.Equal(t, "Priya Sharma", *info.Name)
	require.NotNil(t, info.Email)
	assert.Equal(t, "priya.sharma@example.com", *info.Email)
	require.NotNil(t, info.Phone)
	assert.Contains(t, *info.Phone, "9876543210")
	require.NotNil(t, info.Location)
	assert.Equal(t, "Bangalore", *info.Location)
	require.NotNil(t, info.LinkedIn)
	assert.Equal(t, "https://linkedin.com/in/priya-sharma", *info.LinkedIn)
	require.NotNil(t, info.GitHub)
	assert.Equal(t, "https://github.com/priyacodes", *info.GitHub)
}

func TestExtractContactInfo_NameRejected(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"digit in first line", "Resume 2024\nSomething else"},
		{"email in first line", "john@example.com\nJohn"},
		{"too many words", "This is a long sentence about me\nJohn"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, ExtractContactInfo(tt.text).Name)
		})
	}
}

func TestExtractContactInfo_SkipsLeadingBlankLines(t *testing.T) {
	info := ExtractContactInfo("\n\n   \n  Alex Kim  \nalex@kim.dev")

	require.NotNil(t, info.Name)
	assert.Equal(t, "Alex Kim", *info.Name)
}

func TestExtractContactInfo_Empty(t *testing.T) {
	info := ExtractContactInfo("")

	assert.Nil(t, info.Name)
	assert.Nil(t, info.Email)
	assert.Nil(t, info.Phone)
	assert.Nil(t, info.Location)
	assert.Nil(t, info.LinkedIn)
	assert.Nil(t, info.GitHub)
}

func TestExtractContactInfo_FirstEmailWins(t *testing.T) {
	info := ExtractContactInfo("a@one.com b@two.com")

	require.NotNil(t, info.Email)
	assert.Equal(t, "a@one.com", *info.Email)
}
