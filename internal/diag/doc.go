// Package diag defines the finding model shared by rules, providers and the
// fix engine.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - ID – string identifier declared by the rule (see Descriptor).
//   - Severity – ordered enum (Hidden, Info, Warning, Error) defined in severity.go.
//   - Message – human oriented text; keep it short and actionable.
//   - Primary span – the source.Span pointing to the issue.
//   - Notes – optional secondary spans/messages for additional context.
//
// Spans carry version-specific file ids. A diagnostic produced against one
// snapshot must not be used to edit a later one; the fix engine re-analyzes
// after every accepted edit. Fingerprint gives a version-independent identity
// used to remember findings across iterations.
//
// TextEdit is the unit of change produced by providers. OldText acts as an
// optional guard validated before the edit is applied.
//
// # Emitting diagnostics
//
// Rules report through a diag.Reporter. BagReporter aggregates into a Bag;
// DedupReporter suppresses identical reports from a single pass.
//
// Package diag does not perform formatting or IO. Rendering lives in
// internal/report, application of edits in internal/workspace.
package diag
