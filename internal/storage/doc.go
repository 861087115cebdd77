// Package storage provides JSON-based persistence for daily match snapshots.
//
// Each day is stored in its own file, matches_YYYY-MM-DD.json, holding the
// date, the time it was written and the matches extracted for that day. The
// default storage location is $XDG_DATA_HOME/filgoal.
package storage
