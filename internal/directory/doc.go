// Package directory resolves the gym and area names written in the config
// to the numeric ids the booking API expects.
//
// # Loading
//
// Load fetches GET /gyms once. The returned Directory is owned by startup
// code and is discarded after every target has been resolved; nothing is
// cached at package level and names are never re-resolved mid-run.
// Reservation areas are fetched lazily, the first time a gym is resolved,
// and kept per gym for the rest of startup.
//
// # Matching
//
// Gyms are matched against id_name, slug, name and name_short; areas only
// against name. Matching is case-insensitive and runs in two passes:
//
//  1. Exact: a field equal to the query. One hit wins. Two or more hits are
//     ambiguous and the substring pass is skipped.
//  2. Substring: the query contained in a field. Used only when no field
//     matched exactly.
//
// A pass must end with exactly one candidate. Zero candidates is a
// ResolutionError of kind NotFound, several is kind Ambiguous and lists the
// candidate names. Both satisfy errors.Is with ErrNotFound or ErrAmbiguous.
//
// A gym that fails to resolve never triggers an area lookup.
package directory
