package analysis

import "fmt"

// Key identifies the rules one origin contributes for one language.
type Key struct {
	Origin   string
	Language string
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s", k.Origin, k.Language)
}
