// Package analysis defines the contracts between the fix engine and its
// plugins: rules that report findings and providers that propose edits.
//
// Rules and providers are grouped into origins. An Origin is loaded once per
// run and exposes the rules for a language together with the providers it
// ships. Rules are keyed by Key (origin, language); providers declare the
// finding identifiers they can fix and the languages they apply to.
//
// Providers never mutate snapshots. They return an Edit describing text
// changes against the snapshot they were given; the engine decides whether to
// apply it.
//
// Rule and Provider values are compared with == when indices are built, so
// implementations must be comparable: pointers or structs without slices or maps.
package analysis
