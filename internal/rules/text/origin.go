// Package text provides the built-in "text" rule origin: language-agnostic
// whitespace and encoding hygiene rules together with their providers.
package text

import (
	"context"

	"remedy/internal/analysis"
	"remedy/internal/origin"
)

// Name is the origin name used in manifests.
const Name = "text"

const apiVersion = "v1.2.0"

func init() {
	origin.Register(Name, "builtin:"+Name, New)
}

type textOrigin struct {
	rules     []analysis.Rule
	providers []analysis.Provider
}

// New creates the text origin.
func New(context.Context) (analysis.Origin, error) {
	return &textOrigin{
		rules: []analysis.Rule{
			trailingWhitespaceRule{},
			finalNewlineRule{},
			normalizationRule{},
		},
		providers: []analysis.Provider{
			trailingWhitespaceProvider{},
			finalNewlineProvider{},
			normalizationProvider{},
		},
	}, nil
}

func (o *textOrigin) Name() string       { return Name }
func (o *textOrigin) APIVersion() string { return apiVersion }

// Rules returns the same rules for every language.
func (o *textOrigin) Rules(string) []analysis.Rule {
	return o.rules
}

func (o *textOrigin) Providers() []analysis.Provider {
	return o.providers
}
