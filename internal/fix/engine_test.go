package fix

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"remedy/internal/analysis"
	"remedy/internal/diag"
	"remedy/internal/logging"
	"remedy/internal/registry"
	"remedy/internal/source"
	"remedy/internal/workspace"
)

func text(t *testing.T, ws *workspace.Workspace, path string) string {
	t.Helper()
	f, ok := ws.Current().File(path)
	require.True(t, ok)
	return string(f.Content)
}

func run(ws *workspace.Workspace, engine *Engine, ui *registry.UnitIndex) *Result {
	return engine.Run(context.Background(), ws, "u", ui)
}

func TestSingleFixesConverge(t *testing.T) {
	ws := newWorkspace(workspace.File{Path: "a.go", Content: "a unused b unused c unused"})
	p := newSingle("remove", deleteFinding)
	ui := unitIndex([]analysis.Rule{newWordRule("unused", unusedVar)}, p)

	res := run(ws, NewEngine(nil, nil, Options{}), ui)

	require.NoError(t, res.Err)
	assert.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, 3, res.Iterations)
	assert.Equal(t, uint64(3), ws.Current().Version())
	assert.Equal(t, "a  b  c ", text(t, ws, "a.go"))
	assert.Equal(t, map[string]int{unusedVar: 3}, res.Ledger.Single())
	assert.Empty(t, res.Ledger.Bulk())
	require.Len(t, res.Applied, 3)
	assert.Equal(t, StrategySingle, res.Applied[0].Strategy)
	assert.Empty(t, res.Outstanding)
	assert.Same(t, ws.Current(), res.Snapshot)
}

func TestConvergedUnitIsIdempotent(t *testing.T) {
	ws := newWorkspace(workspace.File{Path: "a.go", Content: "a unused"})
	ui := unitIndex([]analysis.Rule{newWordRule("unused", unusedVar)}, newSingle("remove", deleteFinding))
	engine := NewEngine(nil, nil, Options{})

	first := run(ws, engine, ui)
	require.True(t, first.Succeeded())
	version := ws.Current().Version()

	second := run(ws, engine, ui)
	require.True(t, second.Succeeded())
	assert.Equal(t, 0, second.Iterations)
	assert.Equal(t, version, ws.Current().Version())
}

func TestBulkFixInOneIteration(t *testing.T) {
	ws := newWorkspace(workspace.File{Path: "a.go", Content: "a unused b unused c unused"})
	p := newBulk("remove-all", -1)
	ui := unitIndex([]analysis.Rule{newWordRule("unused", unusedVar)}, p)

	res := run(ws, NewEngine(nil, nil, Options{}), ui)

	require.NoError(t, res.Err)
	assert.Equal(t, 1, res.Iterations)
	assert.Equal(t, map[string]int{unusedVar: 3}, res.Ledger.Bulk())
	assert.Equal(t, "a  b  c ", text(t, ws, "a.go"))
	assert.Equal(t, 0, p.calls, "single fix is not attempted after a bulk success")
	require.Len(t, res.Applied, 1)
	assert.Equal(t, StrategyBulk, res.Applied[0].Strategy)
	assert.Equal(t, 3, res.Applied[0].Instances)
}

func TestBulkGroupsSeeEarlierGroups(t *testing.T) {
	ws := newWorkspace(
		workspace.File{Path: "a.go", Content: "unused unused"},
		workspace.File{Path: "b.go", Content: "x unused"},
	)
	ui := unitIndex([]analysis.Rule{newWordRule("unused", unusedVar)}, newBulk("remove-all", -1))

	res := run(ws, NewEngine(nil, nil, Options{}), ui)

	require.NoError(t, res.Err)
	assert.Equal(t, map[string]int{unusedVar: 3}, res.Ledger.Bulk())
	assert.Equal(t, uint64(2), ws.Current().Version(), "one version per group, one commit")
	assert.Equal(t, " ", text(t, ws, "a.go"))
	assert.Equal(t, "x ", text(t, ws, "b.go"))
}

func TestBulkLoopPrevention(t *testing.T) {
	ws := newWorkspace(workspace.File{Path: "a.go", Content: "unused unused unused"})
	p := newBulk("remove-first", 1)
	ui := unitIndex([]analysis.Rule{newWordRule("unused", unusedVar)}, p)
	logger := logging.NewTestLogger()

	res := run(ws, NewEngine(logger.Logger, nil, Options{}), ui)

	assert.Equal(t, StatusFailure, res.Status)
	require.ErrorIs(t, res.Err, ErrBulkIncomplete)
	assert.Equal(t, 1, p.groupsCalls, "providers are not invoked again for the same identifier")
	assert.Equal(t, 0, p.calls)
	assert.Equal(t, 2, res.Iterations)
	assert.Equal(t, uint64(1), ws.Current().Version())
	logger.AssertLogged(t, zapcore.ErrorLevel, "after applying a bulk fix, detected more instances")
}

func TestBulkWithoutProjectScopeFallsBackToSingle(t *testing.T) {
	ws := newWorkspace(workspace.File{Path: "a.go", Content: "unused"})
	p := newBulk("document-only", -1)
	p.scopes = []analysis.Scope{analysis.ScopeDocument}
	ui := unitIndex([]analysis.Rule{newWordRule("unused", unusedVar)}, p)

	res := run(ws, NewEngine(nil, nil, Options{}), ui)

	require.NoError(t, res.Err)
	assert.Equal(t, 0, p.groupsCalls)
	assert.Equal(t, 1, p.calls)
}

func TestBulkDisabled(t *testing.T) {
	ws := newWorkspace(workspace.File{Path: "a.go", Content: "unused unused"})
	p := newBulk("remove-all", -1)
	ui := unitIndex([]analysis.Rule{newWordRule("unused", unusedVar)}, p)

	res := run(ws, NewEngine(nil, nil, Options{DisableBulk: true}), ui)

	require.NoError(t, res.Err)
	assert.Equal(t, 0, p.groupsCalls)
	assert.Equal(t, 2, p.calls)
	assert.Empty(t, res.Ledger.Bulk())
}

func TestBulkGroupsErrorIsFatal(t *testing.T) {
	ws := newWorkspace(workspace.File{Path: "a.go", Content: "unused"})
	p := newBulk("broken", -1)
	p.groupsErr = errors.New("cannot compute groups")
	ui := unitIndex([]analysis.Rule{newWordRule("unused", unusedVar)}, p)

	res := run(ws, NewEngine(nil, nil, Options{}), ui)

	assert.Equal(t, StatusFailure, res.Status)
	assert.ErrorContains(t, res.Err, "cannot compute groups")
	assert.Equal(t, 0, p.calls, "a fatal bulk failure does not fall back to single fixes")
	assert.Equal(t, uint64(0), ws.Current().Version())
}

func TestApplyFailureKeepsCommittedFixes(t *testing.T) {
	ws := newWorkspace(workspace.File{Path: "a.go", Content: "a unused b unused"})
	p := newSingle("flaky", func(fc *analysis.FixContext, call int) (*analysis.Edit, error) {
		if call == 2 {
			return analysis.DeleteSpan("Remove variable", fc.Finding.Primary, "nope"), nil
		}
		return deleteFinding(fc, call)
	})
	ui := unitIndex([]analysis.Rule{newWordRule("unused", unusedVar)}, p)

	res := run(ws, NewEngine(nil, nil, Options{}), ui)

	assert.Equal(t, StatusFailure, res.Status)
	require.ErrorIs(t, res.Err, workspace.ErrGuardMismatch)
	assert.Equal(t, uint64(1), ws.Current().Version())
	assert.Equal(t, "a  b unused", text(t, ws, "a.go"))
	assert.Len(t, res.Applied, 1)
}

func TestProviderFallbackOrder(t *testing.T) {
	ws := newWorkspace(workspace.File{Path: "a.go", Content: "unused"})
	declines := newSingle("declines", decline)
	empty := newSingle("empty", func(*analysis.FixContext, int) (*analysis.Edit, error) {
		return &analysis.Edit{Title: "nothing"}, nil
	})
	fixes := newSingle("fixes", deleteFinding)
	never := newSingle("never", deleteFinding)
	ui := unitIndex([]analysis.Rule{newWordRule("unused", unusedVar)}, declines, empty, fixes, never)
	logger := logging.NewTestLogger()

	res := run(ws, NewEngine(logger.Logger, nil, Options{}), ui)

	require.NoError(t, res.Err)
	assert.Equal(t, 1, declines.calls)
	assert.Equal(t, 1, empty.calls)
	assert.Equal(t, 1, fixes.calls)
	assert.Equal(t, 0, never.calls)
	require.Len(t, res.Applied, 1)
	assert.Equal(t, "fixes", res.Applied[0].Provider)
	logger.AssertLogged(t, zapcore.ErrorLevel, "no applicable changes were provided")
}

func TestHiddenFindingsAreNeverSelected(t *testing.T) {
	ws := newWorkspace(workspace.File{Path: "a.go", Content: "unused"})
	rule := newWordRule("unused", unusedVar)
	rule.sev = diag.SevHidden
	p := newSingle("remove", deleteFinding)
	ui := unitIndex([]analysis.Rule{rule}, p)

	res := run(ws, NewEngine(nil, nil, Options{}), ui)

	require.NoError(t, res.Err)
	assert.Equal(t, 0, res.Iterations)
	assert.Equal(t, 0, p.calls)
	assert.Empty(t, res.Outstanding)
}

func TestFindingsWithoutProvidersAreNotSelected(t *testing.T) {
	ws := newWorkspace(workspace.File{Path: "a.go", Content: "unused todo"})
	ui := unitIndex([]analysis.Rule{newWordRule("todo", "TODO"), newWordRule("unused", unusedVar)}, newSingle("remove", deleteFinding))

	res := run(ws, NewEngine(nil, nil, Options{}), ui)

	require.NoError(t, res.Err)
	assert.Equal(t, 1, res.Iterations)
	require.Len(t, res.Outstanding, 1)
	assert.Equal(t, "TODO", res.Outstanding[0].ID)
}

func TestUnfixableFindingsFailSoftly(t *testing.T) {
	ws := newWorkspace(workspace.File{Path: "a.go", Content: "unused unused"})
	p := newSingle("declines", decline)
	ui := unitIndex([]analysis.Rule{newWordRule("unused", unusedVar)}, p)

	res := run(ws, NewEngine(nil, nil, Options{}), ui)

	assert.Equal(t, StatusFailure, res.Status)
	require.ErrorIs(t, res.Err, ErrUnresolved)
	assert.Len(t, res.Unresolved, 2)
	assert.Equal(t, 2, p.calls, "each instance is attempted once")
	assert.Equal(t, uint64(0), ws.Current().Version())
}

func TestSkippedFindingStaysExcludedWhenTextMoves(t *testing.T) {
	ws := newWorkspace(workspace.File{Path: "a.go", Content: "unused keep unused"})
	keep := &singleProvider{name: "keep", ids: []string{"KEEP"}, fn: decline}
	remove := newSingle("remove", deleteFinding)
	ui := unitIndex([]analysis.Rule{newWordRule("keep", "KEEP"), newWordRule("unused", unusedVar)}, keep, remove)

	res := run(ws, NewEngine(nil, nil, Options{}), ui)

	require.ErrorIs(t, res.Err, ErrUnresolved)
	require.Len(t, res.Unresolved, 1)
	assert.Equal(t, "KEEP", res.Unresolved[0].ID)
	assert.Equal(t, 1, keep.calls, "a declined instance is not retried after an earlier edit")
	assert.Equal(t, 3, res.Iterations)
	assert.Equal(t, " keep ", text(t, ws, "a.go"))
}

func TestNoProgressIsDetected(t *testing.T) {
	ws := newWorkspace(workspace.File{Path: "a.go", Content: "unused"})
	p := newSingle("noop", func(fc *analysis.FixContext, _ int) (*analysis.Edit, error) {
		return analysis.ReplaceSpan("Rewrite", fc.Finding.Primary, "unused", "unused"), nil
	})
	ui := unitIndex([]analysis.Rule{newWordRule("unused", unusedVar)}, p)

	res := run(ws, NewEngine(nil, nil, Options{}), ui)

	require.ErrorIs(t, res.Err, ErrNoProgress)
	assert.Equal(t, 1, p.calls)
	assert.Equal(t, uint64(1), ws.Current().Version())
}

func TestProviderPanicIsFatal(t *testing.T) {
	ws := newWorkspace(workspace.File{Path: "a.go", Content: "unused"})
	p := newSingle("panics", func(*analysis.FixContext, int) (*analysis.Edit, error) {
		panic("provider exploded")
	})
	ui := unitIndex([]analysis.Rule{newWordRule("unused", unusedVar)}, p)

	res := run(ws, NewEngine(nil, nil, Options{}), ui)

	require.ErrorIs(t, res.Err, ErrProviderPanic)
	assert.ErrorContains(t, res.Err, "provider exploded")
}

func TestRuleFailuresAreLogged(t *testing.T) {
	ws := newWorkspace(workspace.File{Path: "a.go", Content: "unused"})
	failing := newWordRule("unused", unusedVar)
	failing.err = errors.New("partial analysis")
	panicking := newWordRule("x", "X")
	panicking.panics = true
	ui := unitIndex([]analysis.Rule{panicking, failing}, newSingle("remove", deleteFinding))
	logger := logging.NewTestLogger()

	res := run(ws, NewEngine(logger.Logger, nil, Options{}), ui)

	require.NoError(t, res.Err)
	assert.Equal(t, 1, res.Iterations, "findings of a failing rule are kept")
	logger.AssertLogged(t, zapcore.WarnLevel, "rule failed")
	assert.Len(t, logger.FilterMessage("rule failed").All(), 4, "two rules fail on both passes")
}

func TestIterationLimit(t *testing.T) {
	ws := newWorkspace(workspace.File{Path: "a.go", Content: "unused unused unused"})
	ui := unitIndex([]analysis.Rule{newWordRule("unused", unusedVar)}, newSingle("remove", deleteFinding))

	res := run(ws, NewEngine(nil, nil, Options{MaxIterations: 2}), ui)

	require.ErrorIs(t, res.Err, ErrIterationLimit)
	assert.Equal(t, 2, res.Iterations)
	assert.Equal(t, uint64(2), ws.Current().Version())
}

func TestMissingFileIsFatal(t *testing.T) {
	ws := newWorkspace(workspace.File{Path: "a.go", Content: "x"})
	ui := unitIndex([]analysis.Rule{staleRule{}}, newSingle("remove", deleteFinding))

	res := run(ws, NewEngine(nil, nil, Options{}), ui)

	require.ErrorIs(t, res.Err, ErrMissingFile)
}

func TestCancellationNeverCommits(t *testing.T) {
	ws := newWorkspace(workspace.File{Path: "a.go", Content: "unused"})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := newSingle("cancels", func(fc *analysis.FixContext, call int) (*analysis.Edit, error) {
		cancel()
		return deleteFinding(fc, call)
	})
	ui := unitIndex([]analysis.Rule{newWordRule("unused", unusedVar)}, p)

	res := NewEngine(nil, nil, Options{}).Run(ctx, ws, "u", ui)

	assert.Equal(t, StatusFailure, res.Status)
	require.ErrorIs(t, res.Err, context.Canceled)
	assert.Equal(t, uint64(0), ws.Current().Version())
}

func TestUnknownUnit(t *testing.T) {
	ws := newWorkspace()
	res := NewEngine(nil, nil, Options{}).Run(context.Background(), ws, "missing", nil)
	assert.Equal(t, StatusFailure, res.Status)
	assert.ErrorContains(t, res.Err, "missing")
}

// staleRule reports a finding in a file version that does not exist.
type staleRule struct{}

func (staleRule) Name() string { return "stale" }

func (staleRule) SupportedFindings() []diag.Descriptor {
	return []diag.Descriptor{{ID: unusedVar, Severity: diag.SevWarning}}
}

func (staleRule) Analyze(_ context.Context, pass *analysis.Pass) error {
	pass.Report(diag.New(unusedVar, diag.SevWarning, source.Span{File: 42, Start: 0, End: 1}, "unused variable"))
	return nil
}
