package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/kilianp07/powerfleet/core/model"
)

// WriteJSON writes the vehicle routes to w in JSON format.
func WriteJSON(w io.Writer, routes []model.Route) error {
	enc := json.NewEncoder(w)
	return enc.Encode(routes)
}

// WriteCSV flattens the route timelines into one row per event.
func WriteCSV(w io.Writer, routes []model.Route) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"vehicle_id", "type", "start", "end", "from", "to", "at", "task"}); err != nil {
		return err
	}
	for _, r := range routes {
		for _, e := range r.Timeline {
			rec := []string{
				r.VehicleID,
				string(e.Type),
				strconv.FormatFloat(e.Start, 'f', -1, 64),
				strconv.FormatFloat(e.End, 'f', -1, 64),
				e.From,
				e.To,
				e.At,
				e.Task,
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
