package iocache

import (
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codelinehq/codeline/schema"
)

func TestCaching(t *testing.T) {
	t.Run("single setup", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "cache.db")
		runPath := filepath.Join(t.TempDir(), "runs.db")
		initOnce = sync.Once{}  // Reset for test
		closeOnce = sync.Once{} // Reset for test

		err := InitCaching(schema.SQLiteBackend, dbPath, schema.SQLiteBackend, runPath)
		require.NoError(t, err, "Failed to initialize persistence")

		assert.NotNil(t, Manager, "Manager should not be nil")
		assert.NotNil(t, Manager.GetAffinityStore(), "Affinity store should not be nil")
		assert.NotNil(t, Manager.GetRunStore(), "Run store should not be nil")

		CloseCaching()
	})

	t.Run("idempotent setup", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "cache.db")
		initOnce = sync.Once{}  // Reset for test
		closeOnce = sync.Once{} // Reset for test

		// Multiple initializations should be safe (sync.Once)
		err1 := InitCaching(schema.SQLiteBackend, dbPath, "", "")
		err2 := InitCaching(schema.SQLiteBackend, dbPath, "", "")

		assert.NoError(t, err1, "First init should not fail")
		assert.NoError(t, err2, "Second init should not fail")

		// Multiple closes should be safe (sync.Once)
		CloseCaching()
		CloseCaching()
	})

	t.Run("none backend operations", func(t *testing.T) {
		store, err := NewCacheStore("test_table", schema.NoneBackend, "")
		require.NoError(t, err, "Failed to create none backend store")

		// Get returns error (no data)
		_, _, _, err = store.Get("test_key")
		assert.Error(t, err, "Expected error from Get on none backend")

		// Set is no-op (no error)
		err = store.Set("test_key", []byte("test_value"), 1, 123456789)
		assert.NoError(t, err, "Set should not error on none backend")

		// Get still returns error after Set (no-op)
		_, _, _, err = store.Get("test_key")
		assert.Error(t, err, "Expected error from Get after Set on none backend")

		assert.NoError(t, store.Close(), "Close should not error on none backend")
	})
}

func TestValidateTableName(t *testing.T) {
	tests := []struct {
		name      string
		tableName string
		wantErr   bool
	}{
		{"valid simple name", "affinity_cache", false},
		{"valid name with numbers", "cache_v2", false},
		{"valid name starting with underscore", "_cache", false},
		{"empty name", "", true},
		{"starts with number", "2cache", true},
		{"contains dash", "affinity-cache", true},
		{"contains space", "affinity cache", true},
		{"sql injection attempt", "x'; DROP TABLE users; --", true},
		{"contains dot", "db.cache", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTableName(tt.tableName)
			if tt.wantErr {
				assert.Error(t, err, "validateTableName should error for %q", tt.tableName)
			} else {
				assert.NoError(t, err, "validateTableName should not error for %q", tt.tableName)
			}
		})
	}
}

func TestQuoteTableName(t *testing.T) {
	assert.Equal(t, `"affinity_cache"`, quoteTableName("affinity_cache", schema.SQLiteBackend))
	assert.Equal(t, "`affinity_cache`", quoteTableName("affinity_cache", schema.MySQLBackend))
	assert.Equal(t, `"affinity_cache"`, quoteTableName("affinity_cache", schema.PostgreSQLBackend))
}

func TestSQLiteBackendOperations(t *testing.T) {
	t.Run("set and get operations", func(t *testing.T) {
		store, err := NewCacheStore("test_table", schema.SQLiteBackend, ":memory:")
		require.NoError(t, err, "Failed to create SQLite store")
		defer func() { _ = store.Close() }()

		err = store.Set("test_key", []byte("test_value_data"), 1, 1234567890)
		assert.NoError(t, err, "Set should not fail")

		value, version, timestamp, err := store.Get("test_key")
		assert.NoError(t, err, "Get should not fail")
		assert.Equal(t, "test_value_data", string(value))
		assert.Equal(t, 1, version)
		assert.Equal(t, int64(1234567890), timestamp)
	})

	t.Run("upsert behavior", func(t *testing.T) {
		store, err := NewCacheStore("test_table", schema.SQLiteBackend, ":memory:")
		require.NoError(t, err, "Failed to create SQLite store")
		defer func() { _ = store.Close() }()

		require.NoError(t, store.Set("upsert_key", []byte("initial_value"), 1, 1000))
		require.NoError(t, store.Set("upsert_key", []byte("updated_value"), 2, 2000))

		value, version, timestamp, err := store.Get("upsert_key")
		assert.NoError(t, err, "Get after update should not fail")
		assert.Equal(t, "updated_value", string(value))
		assert.Equal(t, 2, version)
		assert.Equal(t, int64(2000), timestamp)
	})

	t.Run("get non-existent key", func(t *testing.T) {
		store, err := NewCacheStore("test_table", schema.SQLiteBackend, ":memory:")
		require.NoError(t, err, "Failed to create SQLite store")
		defer func() { _ = store.Close() }()

		_, _, _, err = store.Get("non_existent_key")
		assert.Equal(t, sql.ErrNoRows, err, "Get non-existent key should return sql.ErrNoRows")
	})
}

func TestGetUpsertQuery(t *testing.T) {
	tests := []struct {
		name         string
		backend      schema.DatabaseBackend
		wantContains []string
	}{
		{"SQLite backend", schema.SQLiteBackend, []string{"INSERT OR REPLACE", `"test_table"`}},
		{"MySQL backend", schema.MySQLBackend, []string{"INSERT INTO", "ON DUPLICATE KEY UPDATE", "`test_table`"}},
		{"PostgreSQL backend", schema.PostgreSQLBackend, []string{"INSERT INTO", "ON CONFLICT", "DO UPDATE SET", `"test_table"`, "$1", "$4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &CacheStoreImpl{backend: tt.backend, tableName: "test_table"}
			got := store.getUpsertQuery()
			for _, want := range tt.wantContains {
				assert.Contains(t, got, want, "getUpsertQuery() should contain %q", want)
			}
		})
	}
}

func TestNewCacheStoreErrors(t *testing.T) {
	t.Run("invalid table name", func(t *testing.T) {
		_, err := NewCacheStore("invalid-name", schema.SQLiteBackend, "")
		assert.Error(t, err, "Expected error for invalid table name")
	})

	t.Run("unsupported backend", func(t *testing.T) {
		_, err := NewCacheStore("test_table", "unsupported", "")
		assert.Error(t, err, "Expected error for unsupported backend")
	})
}

func TestClearCache(t *testing.T) {
	t.Run("SQLite backend removes file", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "test_clear.db")

		store, err := NewCacheStore("test_table", schema.SQLiteBackend, dbPath)
		require.NoError(t, err, "Failed to create database")
		require.NoError(t, store.Set("k", []byte("v"), 1, 1000))
		require.NoError(t, store.Close())

		err = ClearCache(schema.SQLiteBackend, dbPath, "")
		assert.NoError(t, err, "ClearCache should not fail")

		// Reopening yields an empty store
		store, err = NewCacheStore("test_table", schema.SQLiteBackend, dbPath)
		require.NoError(t, err)
		defer func() { _ = store.Close() }()
		_, _, _, err = store.Get("k")
		assert.Equal(t, sql.ErrNoRows, err)
	})

	t.Run("non-existent file", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "non_existent.db")
		assert.NoError(t, ClearCache(schema.SQLiteBackend, dbPath, ""))
	})

	t.Run("none backend", func(t *testing.T) {
		assert.NoError(t, ClearCache(schema.NoneBackend, "", ""))
	})

	t.Run("empty dbFilePath for SQLite", func(t *testing.T) {
		assert.Error(t, ClearCache(schema.SQLiteBackend, "", ""))
	})
}

func TestCacheStoreGetStatus(t *testing.T) {
	t.Run("SQLite backend with data", func(t *testing.T) {
		store, err := NewCacheStore("test_status_table", schema.SQLiteBackend, ":memory:")
		require.NoError(t, err, "Failed to create SQLite store")
		defer func() { _ = store.Close() }()

		for _, data := range []struct {
			key string
			ts  int64
		}{
			{"key1", 1000},
			{"key2", 2000},
			{"key3", 1500},
		} {
			require.NoError(t, store.Set(data.key, []byte("value"), 1, data.ts))
		}

		status, err := store.GetStatus()
		assert.NoError(t, err, "GetStatus should not fail")
		assert.Equal(t, "sqlite", status.Backend)
		assert.True(t, status.Connected)
		assert.Equal(t, 3, status.TotalEntries)
		assert.Equal(t, time.Unix(2000, 0), status.LastEntryTime)
		assert.Equal(t, time.Unix(1000, 0), status.OldestEntryTime)
	})

	t.Run("none backend", func(t *testing.T) {
		store, err := NewCacheStore("test_none", schema.NoneBackend, "")
		require.NoError(t, err)

		status, err := store.GetStatus()
		assert.NoError(t, err)
		assert.Equal(t, "none", status.Backend)
		assert.False(t, status.Connected)
		assert.Equal(t, 0, status.TotalEntries)
	})
}
