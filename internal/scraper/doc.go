// Package scraper fetches FilGoal pages over HTTP and hands them to the extractor.
//
// Requests are paced by a token-bucket limiter, rotate through a pool of
// browser user agents and are retried with exponential backoff on network
// errors and 5xx responses. 4xx responses fail immediately.
package scraper
