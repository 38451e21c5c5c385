package outwriter

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codelinehq/codeline/internal/contract"
	"github.com/codelinehq/codeline/schema"
)

func affinityFixture() *schema.AffinityResult {
	return &schema.AffinityResult{
		Pairs: []schema.FileAffinity{
			{Pair: schema.NewFilePair("a.go", "b.go"), Score: 4.0, Commits: 5},
			{Pair: schema.NewFilePair("b.go", "c.go"), Score: 2.0, Commits: 3},
			{Pair: schema.NewFilePair("a.go", "c.go"), Score: 0.5, Commits: 1},
		},
		TopFiles: []schema.FileTotal{
			{Path: "b.go", Total: 6.0},
			{Path: "a.go", Total: 4.5},
		},
		Threshold: schema.AffinityThreshold{Cutoff: 1.5, NodeCount: 3},
		Commits:   12,
		FileCount: 3,
	}
}

func affinityTestConfig() *contract.Config {
	return &contract.Config{
		ResultLimit:  10,
		Precision:    2,
		Width:        120,
		CacheBackend: schema.SQLiteBackend,
	}
}

func TestWriteAffinityTable(t *testing.T) {
	var buf bytes.Buffer
	fmtFloat, _ := createFormatters(2)

	err := writeAffinityTable(affinityFixture(), affinityTestConfig(), fmtFloat, time.Second, &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "a.go")
	assert.Contains(t, out, "4.00")
	assert.Contains(t, out, "Strong")
	assert.Contains(t, out, "Weak")
	assert.Contains(t, out, "Tuned cutoff 1.50 keeps 3 files")
	assert.Contains(t, out, "Analyzed 12 commits across 3 files")
}

func TestWriteAffinityTableRespectsLimit(t *testing.T) {
	var buf bytes.Buffer
	fmtFloat, _ := createFormatters(2)
	cfg := affinityTestConfig()
	cfg.ResultLimit = 1

	err := writeAffinityTable(affinityFixture(), cfg, fmtFloat, time.Second, &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "b.go")
	assert.NotContains(t, out, "0.50", "Pairs beyond the limit should be omitted")
}

func TestWriteCSVResultsForAffinity(t *testing.T) {
	var buf bytes.Buffer
	fmtFloat, _ := createFormatters(2)

	err := writeCSVResultsForAffinity(&buf, affinityFixture(), affinityTestConfig(), fmtFloat)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4, "Header plus three pair rows")
	assert.Equal(t, "rank,file_a,file_b,score,strength,commits", lines[0])
	assert.Equal(t, "1,a.go,b.go,4.00,Strong,5", lines[1])
	assert.Equal(t, "3,a.go,c.go,0.50,Weak,1", lines[3])
}

func TestWriteJSONResultsForAffinity(t *testing.T) {
	var buf bytes.Buffer

	err := writeJSONResultsForAffinity(&buf, affinityFixture(), affinityTestConfig())
	require.NoError(t, err)

	var decoded struct {
		Pairs []struct {
			Rank     int     `json:"rank"`
			Strength string  `json:"strength"`
			Score    float64 `json:"score"`
		} `json:"pairs"`
		TopFiles []schema.FileTotal `json:"top_files"`
		Commits  int                `json:"commits"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	require.Len(t, decoded.Pairs, 3)
	assert.Equal(t, 1, decoded.Pairs[0].Rank)
	assert.Equal(t, "Strong", decoded.Pairs[0].Strength)
	assert.Equal(t, 4.0, decoded.Pairs[0].Score)
	assert.Len(t, decoded.TopFiles, 2)
	assert.Equal(t, 12, decoded.Commits)
}

func TestRelativeStrength(t *testing.T) {
	assert.Equal(t, 1.0, relativeStrength(4.0, 4.0))
	assert.Equal(t, 0.5, relativeStrength(2.0, 4.0))
	assert.Zero(t, relativeStrength(1.0, 0))
}

func TestGetMaxTablePathWidth(t *testing.T) {
	narrow := &contract.Config{Width: 50}
	assert.Equal(t, 15, getMaxTablePathWidth(narrow))

	wide := &contract.Config{Width: 400}
	assert.Equal(t, 70, getMaxTablePathWidth(wide))

	medium := &contract.Config{Width: 120}
	assert.Equal(t, 40, getMaxTablePathWidth(medium))
}
