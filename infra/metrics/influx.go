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

	coremetrics "github.com/kilianp07/robsolve/core/metrics"
	"github.com/kilianp07/robsolve/infra/logger"
)

// InfluxSink writes solve events to an InfluxDB instance using the official client.
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

// RecordSolve writes the run as a solve_run point.
func (s *InfluxSink) RecordSolve(ev coremetrics.SolveEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("solve_run").
		AddTag("run_id", ev.RunID).
		AddTag("backend", ev.Backend.String()).
		AddTag("ambiguous", strconv.FormatBool(ev.Ambiguous)).
		AddTag("success", strconv.FormatBool(ev.Success())).
		AddField("periods", ev.Periods).
		AddField("duration_s", round3(ev.Duration.Seconds())).
		SetTime(eventTime(ev.Time))
	if ev.Stage != "" {
		p = p.AddTag("stage", ev.Stage)
	}
	if ev.Err != nil {
		p = p.AddField("error", ev.Err.Error())
	}
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordAmbiguity writes one ambiguity_period point per period.
func (s *InfluxSink) RecordAmbiguity(ev coremetrics.AmbiguityEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	ts := eventTime(ev.Time)
	for _, per := range ev.Periods {
		p := write.NewPointWithMeasurement("ambiguity_period").
			AddTag("run_id", ev.RunID).
			AddTag("backend", ev.Backend.String()).
			AddTag("period", strconv.Itoa(per.Period)).
			AddField("success", per.Success).
			AddField("failure", per.Failure).
			SetTime(ts)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }

func eventTime(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
