// Package report renders the outcome of a remediation run: a JSON document for
// tooling, findings with source context for humans and a per-unit summary.
package report
