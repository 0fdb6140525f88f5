// Package cache provides file-based caching with TTL expiration.
//
// It holds two kinds of data for openfootprint:
//   - responses from the CarbonKit flight calculation endpoint, kept for 24 hours
//     so repeated footprint queries do not hit the remote API
//   - rendered CSRD documents, so a download URL returned by the generate
//     operation can serve the bytes it refers to
//
// Entries are JSON files under the configured cache directory
// (~/.openfootprint/cache by default) and are written atomically.
package cache
