// Package assertx provides a single build-tag-gated debug assertion,
// used to check invariants that are expensive or awkward to prove
// statically (e.g. that two independently supplied comparator callbacks
// agree with one another) without paying for the check in production
// builds.
//
// Build with -tags assertions_disabled to compile True out entirely.
package assertx
