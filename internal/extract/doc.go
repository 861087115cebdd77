// Package extract turns FilGoal HTML documents into match and article records.
//
// Extraction is a pure function of the parsed document: nothing is fetched,
// cached or shared between calls, so a single Extractor may be used from many
// goroutines. Missing markup never fails a call. Optional fields come back nil,
// scores fall back to "-", and fragments that cannot be identified are skipped.
// The only failure is a document that could not be read as markup at all
// (ErrUnparseable), which lets callers tell "no matches today" apart from
// "could not read the page".
//
// Auxiliary match fields (stadium, kickoff time, broadcast channel) carry no
// text labels on the site. They are told apart by the icon referenced next to
// each value, falling back to their position only for markup that has no icons.
package extract
