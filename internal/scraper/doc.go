// Package scraper fetches deetlist pages over HTTP.
//
// Fetcher is the seam between the parsers and the network: the pipeline only
// depends on the interface, so tests hand it canned documents. Client is the
// HTTP implementation; it sets a User-Agent, retries transient failures with
// exponential backoff and reports any non-200 response as an HTTPError.
// CachingFetcher puts a cache.Cache in front of any Fetcher.
package scraper
