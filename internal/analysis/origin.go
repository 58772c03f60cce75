package analysis

// MinAPIVersion is the oldest origin API version the engine can load.
const MinAPIVersion = "v1.2.0"

// Origin is a loaded source of rules and providers.
type Origin interface {
	Name() string
	// APIVersion is the semantic version of the contract the origin was built for.
	APIVersion() string
	// Rules returns the rules for language in a stable order.
	Rules(language string) []Rule
	Providers() []Provider
}
