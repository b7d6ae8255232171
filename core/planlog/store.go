// Package planlog persists one record per scheduling run and supports
// filtering them by time range, vehicle and status.
package planlog

import (
	"context"
	"slices"
	"time"

	"github.com/kilianp07/powerfleet/core/model"
)

// Record captures one scheduling request and its outcome.
type Record struct {
	PlanID     string        `json:"plan_id"`
	Timestamp  time.Time     `json:"timestamp"`
	Status     string        `json:"status"`
	Message    string        `json:"message,omitempty"`
	Tasks      []string      `json:"tasks"`
	Vehicles   []string      `json:"vehicles"`
	TotalTime  float64       `json:"total_time"`
	Exhaustive bool          `json:"exhaustive"`
	ElapsedMS  float64       `json:"elapsed_ms"`
	Routes     []model.Route `json:"routes,omitempty"`
}

// Query defines filters for retrieving records. Zero values match everything.
type Query struct {
	Start     time.Time
	End       time.Time
	VehicleID string
	Status    string
}

// Match reports whether r satisfies every filter of q.
func (q Query) Match(r Record) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.Status != "" && r.Status != q.Status {
		return false
	}
	if q.VehicleID != "" && !slices.Contains(r.Vehicles, q.VehicleID) {
		return false
	}
	return true
}

// Store persists Records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

// NopStore discards records.
type NopStore struct{}

func (NopStore) Append(context.Context, Record) error           { return nil }
func (NopStore) Query(context.Context, Query) ([]Record, error) { return nil, nil }
func (NopStore) Close() error                                   { return nil }
