// Package planner runs one scheduling request end to end: it validates the
// request, builds the travel matrix through the configured routing provider,
// searches for the best assignment and formats the per-vehicle routes. Each
// run gets a plan ID and is reported on the event bus, the metrics sink and
// the plan log.
package planner
