package core

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"
)

// CallCacheSize bounds the memoized eth_call results per router.
const CallCacheSize = 4096

func newCallCache(size int) *lru.TwoQueueCache {
	cache, err := lru.New2Q(size)
	if err != nil {
		panic(fmt.Errorf("init call cache failed: %v", err))
	}

	return cache
}
