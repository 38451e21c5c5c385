package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/codelinehq/codeline/schema"
)

// Color variables for console output.
var (
	StrongColor   = color.New(color.FgRed, color.Bold) // tight coupling, worth a look
	ModerateColor = color.New(color.FgYellow)
	WeakColor     = color.New(color.FgCyan)
)

// GetPlainStrength returns the plain text strength label for a relative
// affinity value in [0,1]. This is the core logic used for CSV, JSON, and
// table printing.
func GetPlainStrength(relative float64) string {
	label := string(schema.GetStrengthLabel(relative))
	return strings.ToUpper(label[:1]) + label[1:]
}

// GetColorStrength returns a colored strength label for console output.
func GetColorStrength(relative float64) string {
	text := GetPlainStrength(relative)
	switch schema.GetStrengthLabel(relative) {
	case schema.StrongLabel:
		return StrongColor.Sprint(text)
	case schema.ModerateLabel:
		return ModerateColor.Sprint(text)
	default:
		return WeakColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on
// the provided file path. An empty path means stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// ShouldIgnore returns true if the given path matches any of the exclude patterns.
// It supports simple glob patterns (using filepath.Match) when the pattern
// contains wildcard characters (*, ?, [ ]). Patterns ending with '/' are treated
// as prefixes. Patterns starting with '.' are treated as suffix (extension) matches.
// A user can provide patterns like "vendor/", "node_modules/", "*.min.js".
func ShouldIgnore(path string, excludes []string) bool {
	for _, ex := range excludes {
		ex = strings.TrimSpace(ex)
		if ex == "" {
			continue
		}

		if strings.ContainsAny(ex, "*?[") || strings.Contains(ex, "**") {
			pat := strings.ReplaceAll(ex, "**", "*")
			if ok, err := filepath.Match(pat, path); err == nil && ok {
				return true
			}
			// Also try matching against the base filename (e.g. *.min.js)
			if ok, err := filepath.Match(pat, filepath.Base(path)); err == nil && ok {
				return true
			}
			continue
		}

		switch {
		case strings.HasSuffix(ex, "/"):
			if strings.HasPrefix(path, ex) {
				return true
			}
		case strings.HasPrefix(ex, "."):
			if strings.HasSuffix(path, ex) {
				return true
			}
		case strings.Contains(path, ex):
			return true
		}
	}
	return false
}

// FilterCommitFiles drops excluded paths from each commit's file map,
// returning rewritten records. Commits left with no files are kept; they
// still anchor chains even when every change was excluded.
func FilterCommitFiles(commits []schema.Commit, excludes []string) []schema.Commit {
	filtered := make([]schema.Commit, len(commits))
	for i, c := range commits {
		files := make(map[string]schema.FileChange, len(c.Files))
		for path, fc := range c.Files {
			if ShouldIgnore(path, excludes) {
				continue
			}
			files[path] = fc
		}
		c.Files = files
		filtered[i] = c
	}
	return filtered
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for cache storage.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".codeline_cache.db"
	}
	return filepath.Join(homeDir, ".codeline_cache.db")
}

// GetRunDBFilePath returns the path to the SQLite DB file for run storage.
func GetRunDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".codeline_runs.db"
	}
	return filepath.Join(homeDir, ".codeline_runs.db")
}

// TruncatePath truncates a file path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 to ensure there's space for both the "..." prefix and
// at least one character of content.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
