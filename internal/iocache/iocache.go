// Package iocache is for caching I/O calls.
package iocache

import (
	"sync"

	"github.com/codelinehq/codeline/internal/contract"
)

// CacheStoreManager manages the affinity cache store and the run store.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	affinity     contract.CacheStore
	runs         contract.RunStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// GetAffinityStore returns the affinity CacheStore.
func (mgr *CacheStoreManager) GetAffinityStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.affinity
}

// GetRunStore returns the RunStore.
func (mgr *CacheStoreManager) GetRunStore() contract.RunStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.runs
}
