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

	coremetrics "github.com/kilianp07/opsreport/core/metrics"
	"github.com/kilianp07/opsreport/infra/logger"
)

// InfluxSink writes report results back to an InfluxDB instance so they can be
// charted next to the raw sensor data.
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
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.Sink {
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

// RecordRun writes a report_run point.
func (s *InfluxSink) RecordRun(ev coremetrics.RunEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("report_run").
		AddTag("report", ev.Report).
		AddTag("run_id", ev.RunID).
		AddTag("sent", strconv.FormatBool(ev.Sent)).
		AddField("figures", ev.Figures).
		AddField("failures", ev.Failures).
		AddField("duration_s", round3(ev.Duration.Seconds())).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordLocation writes the daily figures of a location, stamped at the
// start of the reported day.
func (s *InfluxSink) RecordLocation(sum coremetrics.LocationSummary) error {
	if len(sum.Values) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("location_summary").
		AddTag("location", sum.Location).
		AddTag("connection_type", sum.Connection).
		AddTag("designation", sum.Designation).
		AddTag("run_id", sum.RunID)
	for k, v := range sum.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		p = p.AddField(k, round3(v))
	}
	p = p.SetTime(sum.Day)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordFailure writes a report_failure point.
func (s *InfluxSink) RecordFailure(ev coremetrics.FailureEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("report_failure").
		AddTag("report", ev.Report).
		AddTag("stage", ev.Stage).
		AddTag("location", ev.Location).
		AddTag("run_id", ev.RunID).
		AddField("error", ev.Err).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the client.
func (s *InfluxSink) Close() { s.client.Close() }

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
