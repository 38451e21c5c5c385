package core

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/codelinehq/codeline/internal/contract"
	"github.com/codelinehq/codeline/schema"
)

// currentCacheVersion defines the version of the cache schema
const currentCacheVersion = 1

// affinityGroup collapses concurrent computations of the same cache key.
var affinityGroup singleflight.Group

// cachedAffinityResult - Simplified and validated using DB columns
func cachedAffinityResult(ctx context.Context, cfg *contract.Config, client contract.GitClient, mgr contract.CacheManager) (*schema.AffinityResult, error) {
	store := mgr.GetAffinityStore()
	if store == nil {
		// Fallback to direct computation
		return runAffinityCore(ctx, cfg, client)
	}

	key := generateCacheKey(ctx, cfg, client)

	v, err, _ := affinityGroup.Do(key, func() (any, error) {
		// Check for cache hit
		if result := checkCacheHit(store, key); result != nil {
			return result, nil
		}

		// Cache miss: compute and store
		return computeAndStore(ctx, cfg, client, store, key)
	})
	if err != nil {
		return nil, err
	}
	return v.(*schema.AffinityResult), nil
}

// checkCacheHit attempts to retrieve and validate a cached result
func checkCacheHit(store contract.CacheStore, key string) *schema.AffinityResult {
	data, version, ts, err := store.Get(key)
	if err != nil {
		return nil // Cache miss
	}

	// Validate version and staleness
	if version == currentCacheVersion {
		entryTimestamp := time.Unix(ts, 0)
		if time.Since(entryTimestamp) <= 7*24*time.Hour {
			var result schema.AffinityResult
			if err := json.Unmarshal(data, &result); err == nil {
				return &result // Cache hit
			}
		}
	}

	return nil // Cache miss (stale or version mismatch)
}

// computeAndStore computes the result and stores it in cache
func computeAndStore(ctx context.Context, cfg *contract.Config, client contract.GitClient, store contract.CacheStore, key string) (*schema.AffinityResult, error) {
	result, err := runAffinityCore(ctx, cfg, client)
	if err != nil {
		return nil, err
	}

	// Store in cache
	if data, err := json.Marshal(result); err == nil {
		_ = store.Set(key, data, currentCacheVersion, time.Now().Unix())
	}

	return result, nil
}

// generateCacheKey creates a unique key based on analysis parameters
func generateCacheKey(ctx context.Context, cfg *contract.Config, client contract.GitClient) string {
	// Use canonical helpers from contract.Config to ensure consistent time granularity
	startHour := cfg.GetAnalysisStartTime()
	endHour := cfg.GetAnalysisEndTime()

	// Include repo hash to invalidate cache when repository state changes
	repoHash, err := client.GetRepoHash(ctx, cfg.RepoPath)
	if err != nil {
		repoHash = ""
	}

	key := fmt.Sprintf("%s:%d:%d:%s:%d:%d:%s",
		cfg.RepoPath,
		cfg.TargetNodes,
		cfg.TunerTolerance,
		strings.Join(cfg.Excludes, ","),
		startHour.Unix(),
		endHour.Unix(),
		repoHash,
	)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key)))
}
