package workspace

// UnitID identifies a program unit for the lifetime of a workspace.
type UnitID string

// RuleRef is a unit's reference to a rule origin.
type RuleRef struct {
	Origin string
}

// Unit is one project: a language, a set of files and the rule origins it
// references.
type Unit struct {
	ID       UnitID
	Name     string
	Language string
	Dir      string
	// Paths are slash-normalized file paths in manifest order.
	Paths    []string
	RuleRefs []RuleRef
}

func (u *Unit) clone() Unit {
	out := *u
	out.Paths = append([]string(nil), u.Paths...)
	out.RuleRefs = append([]RuleRef(nil), u.RuleRefs...)
	return out
}
