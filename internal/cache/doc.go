// Package cache stores fetched page bodies keyed by URL so repeated
// extractions within the TTL do not hit deetlist again.
//
// MemoryCache lives for one process; RedisCache can be shared between runs
// and machines.
package cache
