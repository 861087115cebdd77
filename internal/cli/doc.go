// Package cli implements the command-line interface for filgoal.
//
// The cli package provides the Cobra-based CLI: listing a day's matches
// (text, JSON or iCalendar, sorted by page order, league or kickoff),
// extracting articles, saving the daily snapshot and running the HTTP
// service with its snapshot scheduler. It wires the config, scraper,
// storage, scheduler and api packages together.
package cli
