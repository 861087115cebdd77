// Package match provides the record types produced from FilGoal pages.
//
// Match and Article are plain values created fresh for every extraction call.
// Optional fields are pointers so that a missing value serialises as JSON null
// instead of "". Text that is present but blank counts as missing. The package also
// holds the date helpers shared by the fetcher, the HTTP service and the
// calendar export.
package match
