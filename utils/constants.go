package utils

import (
	"time"
)

// Cache constants
const (
	// LoketInfoCacheTTL bounds how stale a cached loket snapshot may be
	LoketInfoCacheTTL = 5 * time.Second

	// LoketInfoCacheKeyPrefix prefixes per-loket snapshot cache keys
	LoketInfoCacheKeyPrefix = "loket:info:"
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Queue constants
const (
	// QueueTxMaxRetries bounds retries of a queue transaction aborted by
	// store contention
	QueueTxMaxRetries = 3
)
