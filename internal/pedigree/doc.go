// Package pedigree implements the pedigree graph engine: the bounded ancestor
// walker, the binary ancestor matrix, completeness scoring, common-ancestor
// detection and Wright's coefficient of inbreeding.
//
// Every function is a pure computation over a domain.IndividualFinder (or an
// already materialised tree) and allocates fresh results per call. Lookups
// that miss are treated as an absent parent, never as an error.
package pedigree
