// Package registry indexes the rules and providers available to a workspace.
//
// Build resolves every rule reference of every unit through an origin loader,
// groups rules by analysis.Key and cross-references the finding identifiers
// they declare with the providers able to fix them. Origins that fail to load
// are skipped with a warning; an index with no rules is valid.
//
// The index is read-only after Build.
package registry

import (
	"context"

	"go.uber.org/zap"

	"remedy/internal/analysis"
	"remedy/internal/logging"
	"remedy/internal/origin"
	"remedy/internal/workspace"
)

// FixableEntry ties a finding identifier declared by a rule to its providers.
type FixableEntry struct {
	ID        string
	Rule      analysis.Rule
	Providers []analysis.Provider
}

// Index is the run-wide remediation index.
type Index struct {
	// Keys lists rule keys in first-seen order.
	Keys []analysis.Key
	// Rules maps each key to the rules of that origin for that language.
	Rules map[analysis.Key][]analysis.Rule
	// Providers maps finding identifiers to providers, first discovered first.
	Providers map[string][]analysis.Provider
	// Fixable lists, per key, the identifiers with at least one provider.
	Fixable map[analysis.Key][]FixableEntry
	// Origins lists successfully loaded origin names in load order.
	Origins []string
	// Versions maps loaded origin names to their API version.
	Versions map[string]string
	// Skipped maps origins that failed to load to the load error.
	Skipped map[string]error
}

// Build creates the index for every unit of snap.
func Build(ctx context.Context, snap *workspace.Snapshot, loader origin.Loader, logger *logging.Logger) *Index {
	if logger == nil {
		logger = logging.Nop()
	}
	idx := &Index{
		Rules:     make(map[analysis.Key][]analysis.Rule),
		Providers: make(map[string][]analysis.Provider),
		Fixable:   make(map[analysis.Key][]FixableEntry),
		Versions:  make(map[string]string),
		Skipped:   make(map[string]error),
	}

	loaded := make(map[string]analysis.Origin)
	load := func(name string) (analysis.Origin, bool) {
		if o, ok := loaded[name]; ok {
			return o, true
		}
		if _, failed := idx.Skipped[name]; failed {
			return nil, false
		}
		o, err := loader.Load(ctx, name)
		if err != nil {
			idx.Skipped[name] = err
			logger.Warn(ctx, "rule origin skipped", zap.String("origin", name), zap.Error(err))
			return nil, false
		}
		loaded[name] = o
		idx.Origins = append(idx.Origins, name)
		idx.Versions[name] = o.APIVersion()
		return o, true
	}

	for _, unit := range snap.Units() {
		for _, ref := range unit.RuleRefs {
			key := analysis.Key{Origin: ref.Origin, Language: unit.Language}
			if _, seen := idx.Rules[key]; seen {
				continue
			}
			o, ok := load(ref.Origin)
			if !ok {
				continue
			}
			idx.Keys = append(idx.Keys, key)
			idx.Rules[key] = o.Rules(unit.Language)
		}
	}

	languages := snap.Languages()
	registered := make(map[providerRef]struct{})
	for _, name := range idx.Origins {
		for _, p := range loaded[name].Providers() {
			if !appliesToAny(p, languages) {
				continue
			}
			for _, id := range p.FixableIDs() {
				ref := providerRef{origin: name, name: p.Name(), id: id}
				if _, dup := registered[ref]; dup {
					continue
				}
				registered[ref] = struct{}{}
				idx.Providers[id] = append(idx.Providers[id], p)
			}
		}
	}

	for _, key := range idx.Keys {
		entries := make([]FixableEntry, 0)
		for _, rule := range idx.Rules[key] {
			for _, id := range analysis.IDs(rule) {
				providers := providersFor(idx.Providers[id], key.Language)
				if len(providers) == 0 {
					continue
				}
				entries = append(entries, FixableEntry{ID: id, Rule: rule, Providers: providers})
			}
		}
		idx.Fixable[key] = entries
	}
	return idx
}

func appliesToAny(p analysis.Provider, languages []string) bool {
	for _, lang := range languages {
		if analysis.AppliesTo(p, lang) {
			return true
		}
	}
	return false
}

// providersFor keeps the providers usable for units of language.
func providersFor(providers []analysis.Provider, language string) []analysis.Provider {
	out := make([]analysis.Provider, 0, len(providers))
	for _, p := range providers {
		if analysis.AppliesTo(p, language) {
			out = append(out, p)
		}
	}
	return out
}

// providerRef identifies a provider registration. Providers are plugin values
// of any type, so they are told apart by origin and name, never by ==.
type providerRef struct {
	origin string
	name   string
	id     string
}

// UnitIndex is the part of an Index that applies to one unit.
type UnitIndex struct {
	Rules     []analysis.Rule
	Providers map[string][]analysis.Provider
}

// HasProviders reports whether id has at least one provider for the unit.
func (u *UnitIndex) HasProviders(id string) bool {
	return u != nil && len(u.Providers[id]) > 0
}

// ForUnit restricts the index to the rule references of unit: its active rules
// in first-seen order and the union of their fixable identifiers.
func (idx *Index) ForUnit(unit *workspace.Unit) *UnitIndex {
	out := &UnitIndex{Providers: make(map[string][]analysis.Provider)}
	if unit == nil {
		return out
	}
	seenKey := make(map[analysis.Key]struct{})
	for _, ref := range unit.RuleRefs {
		key := analysis.Key{Origin: ref.Origin, Language: unit.Language}
		if _, ok := seenKey[key]; ok {
			continue
		}
		seenKey[key] = struct{}{}
		out.Rules = append(out.Rules, idx.Rules[key]...)
		for _, entry := range idx.Fixable[key] {
			if _, ok := out.Providers[entry.ID]; ok {
				continue
			}
			out.Providers[entry.ID] = entry.Providers
		}
	}
	return out
}
