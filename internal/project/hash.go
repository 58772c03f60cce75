package project

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"

	"remedy/internal/workspace"
)

// Digest is a fixed 256-bit hash, compatible with source.File.Hash.
type Digest [32]byte

func (d Digest) String() string { return hex.EncodeToString(d[:]) }
func (d Digest) IsZero() bool   { return d == Digest{} }

// Combine builds an aggregate hash: H(content || dep1 || dep2 ...).
// The order of deps must be deterministic.
func Combine(content Digest, deps ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, d := range deps {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// OfString hashes s.
func OfString(s string) Digest {
	return sha256.Sum256([]byte(s))
}

// UnitDigest identifies everything a remediation run of unit depends on: its
// language, the rule set it activates and the path and content of each of its
// current files. rules are "origin@version" strings; their order is irrelevant.
func UnitDigest(snap *workspace.Snapshot, unit *workspace.Unit, rules []string) Digest {
	sorted := append([]string(nil), rules...)
	sort.Strings(sorted)

	parts := make([]Digest, 0, len(sorted)+2*len(unit.Paths))
	for _, r := range sorted {
		parts = append(parts, OfString(r))
	}
	for _, f := range snap.Files(unit) {
		parts = append(parts, OfString(f.Path), Digest(f.Hash))
	}
	return Combine(OfString(unit.Language), parts...)
}
