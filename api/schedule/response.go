// Package schedule exposes the scheduling engine over HTTP.
package schedule

import (
	"github.com/kilianp07/powerfleet/core/model"
	"github.com/kilianp07/powerfleet/core/planner"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// SearchInfo summarises the work done for a plan.
type SearchInfo struct {
	Assignments  int     `json:"assignments"`
	Combinations int     `json:"combinations"`
	Evaluations  int     `json:"evaluations"`
	Pruned       int     `json:"pruned"`
	SeedFeasible bool    `json:"seed_feasible"`
	FailedEdges  int     `json:"failed_edges"`
	ElapsedMS    float64 `json:"elapsed_ms"`
}

// Response is the success body of POST /api/schedule.
type Response struct {
	Status     string        `json:"status"`
	PlanID     string        `json:"plan_id"`
	Exhaustive bool          `json:"exhaustive"`
	TotalTime  float64       `json:"total_time"`
	Routes     []model.Route `json:"routes"`
	Search     SearchInfo    `json:"search"`
}

// ErrorBody is returned with every non-2xx status.
type ErrorBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// NewResponse converts a planner result into the success body.
func NewResponse(res *planner.Result) Response {
	return Response{
		Status:     StatusSuccess,
		PlanID:     res.PlanID,
		Exhaustive: res.Exhaustive,
		TotalTime:  res.TotalTime,
		Routes:     res.Routes,
		Search: SearchInfo{
			Assignments:  res.Search.Assignments,
			Combinations: res.Search.Combinations,
			Evaluations:  res.Search.Evaluations,
			Pruned:       res.Search.Pruned,
			SeedFeasible: res.Search.SeedFeasible,
			FailedEdges:  res.Matrix.Failed,
			ElapsedMS:    float64(res.Elapsed.Microseconds()) / 1000,
		},
	}
}

// ErrorResponse builds an error body.
func ErrorResponse(msg string) ErrorBody {
	return ErrorBody{Status: StatusError, Message: msg}
}
