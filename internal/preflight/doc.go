// Package preflight provides readiness checks for the services and local
// paths JazzMate depends on.
//
// The CLI "jazzmate doctor" command runs RunAll and renders each Result;
// individual checks are exported so callers can check a single dependency.
package preflight
