package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/kilianp07/powerfleet/core/logger"
	"github.com/kilianp07/powerfleet/core/model"
	"github.com/kilianp07/powerfleet/core/planlog"
	"github.com/kilianp07/powerfleet/core/planner"
	coreschedule "github.com/kilianp07/powerfleet/core/schedule"
)

// MaxRequestBytes bounds the size of a scheduling request body.
const MaxRequestBytes = 1 << 20

// Planner runs scheduling requests.
type Planner interface {
	Plan(ctx context.Context, req model.Request) (*planner.Result, error)
}

// PlanQuerier lists plan log records.
type PlanQuerier interface {
	Plans(ctx context.Context, q planlog.Query) ([]planlog.Record, error)
}

// StatusFor maps a planning error to its HTTP status code and public message.
func StatusFor(err error) (int, string) {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Error()
	case errors.Is(err, coreschedule.ErrInfeasible):
		return http.StatusUnprocessableEntity, err.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// NewScheduleHandler returns the handler of POST /api/schedule.
func NewScheduleHandler(p Planner, log logger.Logger) http.Handler {
	log = logger.OrNop(log)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Errorf("schedule handler panic: %v", rec)
				writeJSON(w, http.StatusInternalServerError, ErrorResponse("internal error"))
			}
		}()
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req model.Request
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxRequestBytes)).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse(fmt.Sprintf("decode request: %v", err)))
			return
		}
		res, err := p.Plan(r.Context(), req)
		if err != nil {
			code, msg := StatusFor(err)
			if code == http.StatusInternalServerError {
				log.Errorf("schedule failed: %v", err)
			}
			writeJSON(w, code, ErrorResponse(msg))
			return
		}
		writeJSON(w, http.StatusOK, NewResponse(res))
	})
}

// NewPlansHandler returns the handler of GET /api/plans. Requests must carry
// "Authorization: Bearer <token>" when token is non-empty.
func NewPlansHandler(q PlanQuerier, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		query := planlog.Query{
			VehicleID: r.URL.Query().Get("vehicle_id"),
			Status:    r.URL.Query().Get("status"),
		}
		for name, dst := range map[string]*time.Time{"start": &query.Start, "end": &query.End} {
			s := r.URL.Query().Get(name)
			if s == "" {
				continue
			}
			t, err := time.Parse(time.RFC3339, s)
			if err != nil {
				http.Error(w, fmt.Sprintf("invalid %s: %v", name, err), http.StatusBadRequest)
				return
			}
			*dst = t
		}
		records, err := q.Plans(r.Context(), query)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if records == nil {
			records = []planlog.Record{}
		}
		writeJSON(w, http.StatusOK, records)
	})
}

// NewHealthHandler returns the handler of GET /healthz.
func NewHealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

// Register mounts every handler on mux.
func Register(mux *http.ServeMux, p interface {
	Planner
	PlanQuerier
}, token string, log logger.Logger) {
	mux.Handle("/api/schedule", NewScheduleHandler(p, log))
	mux.Handle("/api/plans", NewPlansHandler(p, token))
	mux.Handle("/healthz", NewHealthHandler())
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
