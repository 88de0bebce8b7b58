package core

import (
	"encoding/json"
	"time"

	"github.com/huangsam/repoquality/internal/contract"
	"github.com/huangsam/repoquality/schema"
)

// currentCacheVersion defines the version of the cached record layout
const currentCacheVersion = 1

// checkResumeHit returns the cached record for a repository, or nil on a miss
func checkResumeHit(store contract.CacheStore, fullName string) *schema.RepositoryAnalysisRecord {
	if store == nil {
		return nil
	}
	data, version, _, err := store.Get(fullName)
	if err != nil || version != currentCacheVersion {
		return nil // Cache miss or layout change
	}
	var rec schema.RepositoryAnalysisRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil
	}
	return &rec
}

// storeResult caches a finished record keyed by repository full name
func storeResult(store contract.CacheStore, rec schema.RepositoryAnalysisRecord) {
	if store == nil {
		return
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return
	}
	if err := store.Set(rec.Repository, data, currentCacheVersion, time.Now().Unix()); err != nil {
		contract.LogWarn("Failed to cache result for "+rec.Repository, err)
	}
}
