package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/powerfleet/core/metrics"
	"github.com/kilianp07/powerfleet/infra/logger"
)

// InfluxSink writes scheduling runs to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// Close releases the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }

// RecordPlan writes one plan point.
func (s *InfluxSink) RecordPlan(res coremetrics.PlanResult) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("plan").
		AddTag("plan_id", res.PlanID).
		AddTag("status", res.Status).
		AddTag("exhaustive", strconv.FormatBool(res.Exhaustive)).
		AddField("tasks", res.Tasks).
		AddField("vehicles", res.Vehicles).
		AddField("total_time_h", round3(res.TotalTime)).
		AddField("elapsed_ms", round3(res.Elapsed.Seconds()*1000)).
		SetTime(res.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordRoutes writes one point per vehicle route.
func (s *InfluxSink) RecordRoutes(routes []coremetrics.RouteResult) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, r := range routes {
		p := write.NewPointWithMeasurement("route").
			AddTag("plan_id", r.PlanID).
			AddTag("vehicle_id", r.VehicleID).
			AddTag("depot", r.Depot).
			AddField("tasks", r.Tasks).
			AddField("trips", r.Trips).
			AddField("total_time_h", round3(r.TotalTime)).
			AddField("energy_kwh", round3(r.TotalEnergy)).
			AddField("peak_power_kw", round3(r.PeakPower)).
			SetTime(r.Time)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// RecordMatrixBuild writes the travel matrix statistics of a plan.
func (s *InfluxSink) RecordMatrixBuild(ev coremetrics.MatrixBuild) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("travel_matrix").
		AddTag("plan_id", ev.PlanID).
		AddField("locations", ev.Locations).
		AddField("requested", ev.Requested).
		AddField("failed", ev.Failed).
		AddField("elapsed_ms", round3(ev.Elapsed.Seconds()*1000)).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordEdgeFailure writes a failed routing query.
func (s *InfluxSink) RecordEdgeFailure(ev coremetrics.EdgeFailure) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("edge_failure").
		AddTag("from", ev.From).
		AddTag("to", ev.To).
		AddField("error", ev.Error).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
