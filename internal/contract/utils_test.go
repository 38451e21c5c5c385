package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/codelinehq/codeline/schema"
)

func TestShouldIgnore(t *testing.T) {
	excludes := []string{".png", "vendor/", "*.min.js", "go.sum"}
	tests := []struct {
		path string
		want bool
	}{
		{"assets/logo.png", true},
		{"vendor/lib/a.go", true},
		{"static/app.min.js", true},
		{"go.sum", true},
		{"main.go", false},
		{"internal/core.go", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldIgnore(tt.path, excludes))
		})
	}
}

func TestFilterCommitFiles(t *testing.T) {
	commits := []schema.Commit{
		{
			Hash: "c1",
			Files: map[string]schema.FileChange{
				"main.go":         {Insertions: 1},
				"assets/logo.png": {Insertions: 1},
			},
		},
		{
			Hash: "c2",
			Files: map[string]schema.FileChange{
				"assets/icon.png": {Insertions: 1},
			},
		},
	}

	filtered := FilterCommitFiles(commits, []string{".png"})
	assert.Len(t, filtered[0].Files, 1)
	assert.Contains(t, filtered[0].Files, "main.go")

	// Fully excluded commits survive with empty file maps.
	assert.Len(t, filtered, 2)
	assert.Empty(t, filtered[1].Files)

	// Originals are untouched.
	assert.Len(t, commits[0].Files, 2)
}

func TestStrengthLabels(t *testing.T) {
	assert.Equal(t, "Strong", GetPlainStrength(0.9))
	assert.Equal(t, "Moderate", GetPlainStrength(0.5))
	assert.Equal(t, "Weak", GetPlainStrength(0.1))
}

func TestTruncatePath(t *testing.T) {
	assert.Equal(t, "short.go", TruncatePath("short.go", 20))
	assert.Equal(t, "...ng/path/file.go", TruncatePath("some/very/long/path/file.go", 18))
	assert.Equal(t, "ab", TruncatePath("ab", 2))
}

func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"yes", "TRUE", "1"} {
		got, err := ParseBoolString(s)
		assert.NoError(t, err)
		assert.True(t, got)
	}
	for _, s := range []string{"no", "False", "0"} {
		got, err := ParseBoolString(s)
		assert.NoError(t, err)
		assert.False(t, got)
	}
	_, err := ParseBoolString("maybe")
	assert.Error(t, err)
}
