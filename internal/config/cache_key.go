package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// DashboardViewKey returns the cache key for a computed dashboard view.
// Selection order does not change a view, so names are sorted before hashing.
func (r *CacheKeyStruct) DashboardViewKey(sortKey string, selected []string) string {
	names := append([]string(nil), selected...)
	sort.Strings(names)
	sum := xxhash.Sum64String(strings.Join(names, "\x1f"))
	return fmt.Sprintf("dashboard:view:%s:%016x", sortKey, sum)
}

// DashboardViewPattern matches every cached dashboard view.
func (r *CacheKeyStruct) DashboardViewPattern() string {
	return "dashboard:view:*"
}

var CacheKey = NewCacheKeyStruct()
