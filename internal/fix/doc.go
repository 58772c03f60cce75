// Package fix drives automated remediation of one unit to a fixpoint.
//
// Each iteration re-analyzes the current snapshot, selects the next fixable
// finding, tries to fix every instance of its identifier at once (bulk) and
// falls back to fixing the selected instance (single). Accepted edits are
// committed to the workspace before the next iteration.
//
// Strategy outcomes:
//
//   - Succeeded – an edit was applied; the loop commits and re-analyzes.
//   - Skipped – no provider produced an edit; the finding stays unresolved.
//   - Fatal – a provider failed, an edit could not be applied or a bulk fix
//     left instances behind; the run stops.
//
// A run that ends with unresolved findings fails softly with ErrUnresolved.
package fix
