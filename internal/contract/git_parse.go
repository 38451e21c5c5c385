package contract

import (
	"strconv"
	"strings"
	"time"

	"github.com/codelinehq/codeline/schema"
)

// ParseCommitLog converts raw 'git log --numstat' output (with the
// --%H|%P|%an|%ad header format) into commit records. Header lines start a
// new commit; each following non-blank line is a numstat entry for it.
// Malformed headers are skipped along with their stats rather than aborting
// the whole log.
func ParseCommitLog(out []byte) []schema.Commit {
	lines := strings.Split(string(out), "\n")
	var commits []schema.Commit
	var current *schema.Commit

	flush := func() {
		if current != nil {
			commits = append(commits, *current)
			current = nil
		}
	}

	for _, l := range lines {
		l = strings.Trim(l, " \t\r\n")
		if strings.HasPrefix(l, "--") {
			flush()
			if c, ok := parseCommitHeader(l); ok {
				current = &c
			}
			continue
		}
		if l == "" || current == nil {
			continue
		}
		path, change, ok := parseNumstatLine(l)
		if !ok {
			continue
		}
		current.Files[path] = change
	}
	flush()
	return commits
}

// parseCommitHeader extracts hash, parents, author and date from a header
// line of the form --hash|parent parent|author|date.
func parseCommitHeader(line string) (schema.Commit, bool) {
	parts := strings.SplitN(line[2:], "|", 4)
	if len(parts) != 4 {
		return schema.Commit{}, false
	}
	hash, parentStr, author, dateStr := parts[0], parts[1], parts[2], parts[3]
	if hash == "" {
		return schema.Commit{}, false
	}
	date, err := time.Parse(time.RFC3339, dateStr)
	if err != nil {
		return schema.Commit{}, false
	}
	var parents []string
	if parentStr != "" {
		parents = strings.Fields(parentStr)
	}
	return schema.Commit{
		Hash:      hash,
		Parents:   parents,
		Author:    author,
		Timestamp: date,
		Files:     make(map[string]schema.FileChange),
	}, true
}

// parseNumstatLine parses one "add\tdel\tpath" entry. Rename paths resolve to
// the new path, with the old path kept as RenamedFrom.
func parseNumstatLine(line string) (string, schema.FileChange, bool) {
	parts := strings.SplitN(line, "\t", 3)
	if len(parts) < 3 {
		return "", schema.FileChange{}, false
	}
	add := parseChurnValue(parts[0])
	del := parseChurnValue(parts[1])
	path := parts[2]

	change := schema.FileChange{Insertions: add, Deletions: del}
	if strings.Contains(path, " => ") {
		oldPath, newPath := parseRenamePath(path)
		if newPath == "" {
			return "", schema.FileChange{}, false
		}
		change.RenamedFrom = oldPath
		path = newPath
	}
	return path, change, true
}

// parseChurnValue converts a churn string to int, handling "-" as 0 for
// binary files.
func parseChurnValue(s string) int {
	if s == "-" {
		return 0
	}
	if val, err := strconv.Atoi(s); err == nil && val >= 0 {
		return val
	}
	return 0
}

// parseRenamePath extracts old and new paths from a rename string, handling
// both "old => new" and "prefix{old => new}suffix" forms.
func parseRenamePath(path string) (string, string) {
	if !strings.Contains(path, "{") {
		parts := strings.SplitN(path, " => ", 2)
		if len(parts) == 2 {
			return parts[0], parts[1]
		}
		return "", ""
	}

	braceStart := strings.Index(path, "{")
	braceEnd := strings.Index(path, "}")
	if braceStart == -1 || braceEnd == -1 || braceStart >= braceEnd {
		return "", ""
	}

	prefix := path[:braceStart]
	renamePart := path[braceStart+1 : braceEnd]
	suffix := path[braceEnd+1:]

	if !strings.Contains(renamePart, " => ") {
		return "", ""
	}

	renameParts := strings.SplitN(renamePart, " => ", 2)
	oldPath := prefix + renameParts[0] + suffix
	newPath := prefix + renameParts[1] + suffix
	return oldPath, newPath
}
