package core

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/codelinehq/codeline/internal/contract"
	"github.com/codelinehq/codeline/internal/iocache"
	"github.com/codelinehq/codeline/schema"
)

// fakeGitClient serves a fixed commit log for core tests.
type fakeGitClient struct {
	commits []schema.Commit
	err     error
}

func (f *fakeGitClient) Run(_ context.Context, _ string, _ ...string) ([]byte, error) {
	return nil, nil
}

func (f *fakeGitClient) GetCommitLog(_ context.Context, _ string, _, _ time.Time) ([]schema.Commit, error) {
	return f.commits, f.err
}

func (f *fakeGitClient) GetCommitTime(_ context.Context, _ string, _ string) (time.Time, error) {
	return time.Time{}, nil
}

func (f *fakeGitClient) GetRepoHash(_ context.Context, _ string) (string, error) {
	return "deadbeef", nil
}

func (f *fakeGitClient) GetRepoRoot(_ context.Context, _ string) (string, error) {
	return "/repo", nil
}

func cachingTestConfig() *contract.Config {
	return &contract.Config{
		RepoPath:       "/repo",
		StartTime:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndTime:        time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		ResultLimit:    10,
		TargetNodes:    15,
		TunerTolerance: 2,
	}
}

func cachingTestCommits() []schema.Commit {
	return []schema.Commit{
		testCommit("c1", nil, 0, "a.go", "b.go"),
		testCommit("c2", []string{"c1"}, 1, "a.go", "b.go"),
		testCommit("c3", []string{"c2"}, 2, "b.go", "c.go"),
	}
}

func TestCachedAffinityResultMiss(t *testing.T) {
	cfg := cachingTestConfig()
	client := &fakeGitClient{commits: cachingTestCommits()}

	store := &iocache.MockCacheStore{}
	store.On("Get", mock.Anything).Return([]byte(nil), 0, int64(0), sql.ErrNoRows)
	store.On("Set", mock.Anything, mock.Anything, currentCacheVersion, mock.Anything).Return(nil)

	mgr := &iocache.MockCacheManager{}
	mgr.On("GetAffinityStore").Return(store)

	result, err := cachedAffinityResult(context.Background(), cfg, client, mgr)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, 3, result.Commits)
	assert.Equal(t, 3, result.FileCount)
	assert.NotEmpty(t, result.Pairs)
	store.AssertCalled(t, "Set", mock.Anything, mock.Anything, currentCacheVersion, mock.Anything)
}

func TestCachedAffinityResultHit(t *testing.T) {
	cfg := cachingTestConfig()
	client := &fakeGitClient{commits: nil}

	cached := &schema.AffinityResult{Commits: 42, FileCount: 7}
	data, err := json.Marshal(cached)
	require.NoError(t, err)

	store := &iocache.MockCacheStore{}
	store.On("Get", mock.Anything).Return(data, currentCacheVersion, time.Now().Unix(), nil)

	mgr := &iocache.MockCacheManager{}
	mgr.On("GetAffinityStore").Return(store)

	result, err := cachedAffinityResult(context.Background(), cfg, client, mgr)
	require.NoError(t, err)
	assert.Equal(t, 42, result.Commits)
	assert.Equal(t, 7, result.FileCount)
	store.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCachedAffinityResultStaleEntry(t *testing.T) {
	cfg := cachingTestConfig()
	client := &fakeGitClient{commits: cachingTestCommits()}

	cached := &schema.AffinityResult{Commits: 42}
	data, err := json.Marshal(cached)
	require.NoError(t, err)

	// Entry is older than the 7-day staleness window
	staleTS := time.Now().Add(-8 * 24 * time.Hour).Unix()
	store := &iocache.MockCacheStore{}
	store.On("Get", mock.Anything).Return(data, currentCacheVersion, staleTS, nil)
	store.On("Set", mock.Anything, mock.Anything, currentCacheVersion, mock.Anything).Return(nil)

	mgr := &iocache.MockCacheManager{}
	mgr.On("GetAffinityStore").Return(store)

	result, err := cachedAffinityResult(context.Background(), cfg, client, mgr)
	require.NoError(t, err)

	// Stale entry is ignored and recomputed from the live commit log
	assert.Equal(t, 3, result.Commits)
	store.AssertCalled(t, "Set", mock.Anything, mock.Anything, currentCacheVersion, mock.Anything)
}

func TestCachedAffinityResultNilStore(t *testing.T) {
	cfg := cachingTestConfig()
	client := &fakeGitClient{commits: cachingTestCommits()}

	mgr := &iocache.MockCacheManager{}
	mgr.On("GetAffinityStore").Return(nil)

	result, err := cachedAffinityResult(context.Background(), cfg, client, mgr)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Commits)
}

// blockingGitClient stalls commit log reads until released, holding
// concurrent callers inside the memoization window.
type blockingGitClient struct {
	fakeGitClient
	logReads int32
	release  chan struct{}
}

func (b *blockingGitClient) GetCommitLog(_ context.Context, _ string, _, _ time.Time) ([]schema.Commit, error) {
	atomic.AddInt32(&b.logReads, 1)
	<-b.release
	return b.commits, nil
}

// memoryCacheStore is a threadsafe single-entry store, so a caller arriving
// after the in-flight computation finishes still gets a cache hit.
type memoryCacheStore struct {
	mu      sync.Mutex
	value   []byte
	version int
	ts      int64
	filled  bool
}

func (m *memoryCacheStore) Get(string) ([]byte, int, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.filled {
		return nil, 0, 0, sql.ErrNoRows
	}
	return m.value, m.version, m.ts, nil
}

func (m *memoryCacheStore) Set(_ string, value []byte, version int, ts int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value, m.version, m.ts, m.filled = value, version, ts, true
	return nil
}

func (m *memoryCacheStore) GetStatus() (schema.CacheStatus, error) { return schema.CacheStatus{}, nil }

func (m *memoryCacheStore) Close() error { return nil }

func TestCachedAffinityResultConcurrentComputeOnce(t *testing.T) {
	cfg := cachingTestConfig()
	client := &blockingGitClient{
		fakeGitClient: fakeGitClient{commits: cachingTestCommits()},
		release:       make(chan struct{}),
	}

	mgr := &iocache.MockCacheManager{}
	mgr.On("GetAffinityStore").Return(&memoryCacheStore{})

	const callers = 8
	var wg sync.WaitGroup
	results := make([]*schema.AffinityResult, callers)
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = cachedAffinityResult(context.Background(), cfg, client, mgr)
		}(i)
	}

	// Let the callers pile up behind the blocked computation, then release it.
	time.Sleep(50 * time.Millisecond)
	close(client.release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&client.logReads), "commit log should be read once")
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		require.NotNil(t, results[i])
		assert.Equal(t, 3, results[i].Commits)
		assert.Equal(t, 3, results[i].FileCount)
	}
}

func TestGenerateCacheKeyStable(t *testing.T) {
	cfg := cachingTestConfig()
	client := &fakeGitClient{}

	key1 := generateCacheKey(context.Background(), cfg, client)
	key2 := generateCacheKey(context.Background(), cfg, client)
	assert.Equal(t, key1, key2, "Same parameters should produce the same key")
	assert.Len(t, key1, 64, "Key should be a hex-encoded SHA-256 digest")

	// Different tuner target changes the key
	other := cfg.Clone()
	other.TargetNodes = 30
	assert.NotEqual(t, key1, generateCacheKey(context.Background(), other, client))
}
