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

	coremetrics "github.com/kilianp07/energyalloc/core/metrics"
	"github.com/kilianp07/energyalloc/infra/logger"
)

// InfluxSink writes sampler events to an InfluxDB instance using the official client.
// Individual attempts are not written; they are too frequent to be useful as points.
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

// RecordAttempt is a no-op.
func (s *InfluxSink) RecordAttempt(coremetrics.AttemptEvent) error { return nil }

// RecordSample writes one point per allocation entry, tagged with its source
// and consumer names.
func (s *InfluxSink) RecordSample(ev coremetrics.SampleEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	cols := len(ev.Consumers)
	for i, src := range ev.Sources {
		for j, dst := range ev.Consumers {
			idx := i*cols + j
			if idx >= len(ev.Flows) {
				break
			}
			p := write.NewPointWithMeasurement("allocation_flow").
				AddTag("run_id", ev.RunID).
				AddTag("sample", strconv.Itoa(ev.Index)).
				AddTag("source", src).
				AddTag("consumer", dst).
				AddField("flow", round3(ev.Flows[idx])).
				SetTime(ev.SampleTime)
			if err := s.writeAPI.WritePoint(ctx, p); err != nil {
				return err
			}
		}
	}
	p := write.NewPointWithMeasurement("allocation_cost").
		AddTag("run_id", ev.RunID).
		AddTag("sample", strconv.Itoa(ev.Index)).
		AddField("cost", round3(ev.Cost)).
		SetTime(ev.SampleTime)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordBatch persists the summary of a batch run.
func (s *InfluxSink) RecordBatch(ev coremetrics.BatchEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("sampler_batch").
		AddTag("run_id", ev.RunID).
		AddTag("failed", strconv.FormatBool(ev.Failed)).
		AddField("requested", ev.Requested).
		AddField("accepted", ev.Accepted).
		AddField("duplicates", ev.Duplicates).
		AddField("attempts", ev.Attempts).
		AddField("duration_ms", round3(ev.Duration.Seconds()*1000)).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
