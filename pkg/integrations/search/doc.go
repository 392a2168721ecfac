// Package search queries the Google Custom Search JSON API.
//
// Search results are the raw material for text-evidence compatibility
// checks: titles and snippets are mined for version numbers, CVE ids and
// compatibility phrases by the evidence package.
//
// A [Client] needs an API key and a search engine id; [NewClient] fails with
// a CONFIGURATION error when either is missing, so misconfiguration surfaces
// once at startup rather than on every query. Queries are never cached or
// retried: each call is a single request whose result count is clamped to
// the API's 1..10 range.
//
// [RateLimited] wraps any [Searcher] in a requests-per-minute limiter to
// stay inside the API's free-tier quota.
package search
