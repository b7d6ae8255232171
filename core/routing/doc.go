// Package routing turns the locations of a scheduling request into a travel
// time matrix. A Provider answers single origin/destination queries; the
// MatrixBuilder fans those queries out over a bounded worker pool and
// collects the answers into a dense Matrix indexed by location.
package routing
