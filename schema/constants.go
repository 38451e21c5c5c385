package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching.
	DatabaseBackend string

	// StrengthLabel classifies a pair's relative affinity.
	StrengthLabel string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All cache backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// Relative strength bands, applied to Score / maxScore.
const (
	StrongLabel   StrengthLabel = "strong"   // >= 0.75
	ModerateLabel StrengthLabel = "moderate" // >= 0.40
	WeakLabel     StrengthLabel = "weak"     // everything else
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidCacheBackends lists all valid cache backends.
var ValidCacheBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// GetStrengthLabel buckets a relative strength value in [0,1].
func GetStrengthLabel(relative float64) StrengthLabel {
	switch {
	case relative >= 0.75:
		return StrongLabel
	case relative >= 0.40:
		return ModerateLabel
	default:
		return WeakLabel
	}
}
