package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/kilianp07/energyalloc/core/factory"
	coremetrics "github.com/kilianp07/energyalloc/core/metrics"
)

func captureServer(t *testing.T) (*httptest.Server, func() []string) {
	t.Helper()
	var (
		mu     sync.Mutex
		bodies []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, strings.TrimSpace(string(b)))
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), bodies...)
	}
}

func TestInfluxSink_RecordSample(t *testing.T) {
	srv, bodies := captureServer(t)
	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	defer sink.Close()

	now := time.Now()
	ev := coremetrics.SampleEvent{
		RunID:      "run1",
		Index:      0,
		Flows:      []float64{1.5, 2, 1.5, 3},
		Cost:       0.575,
		Sources:    []string{"Solar", "Wind"},
		Consumers:  []string{"A", "B"},
		SampleTime: now,
	}
	if err := sink.RecordSample(ev); err != nil {
		t.Fatalf("record: %v", err)
	}

	got := bodies()
	if len(got) != 5 {
		t.Fatalf("expected 5 writes, got %d: %#v", len(got), got)
	}
	flow := write.NewPointWithMeasurement("allocation_flow").
		AddTag("run_id", "run1").
		AddTag("sample", "0").
		AddTag("source", "Wind").
		AddTag("consumer", "A").
		AddField("flow", 1.5).
		SetTime(now)
	if exp := strings.TrimSpace(write.PointToLineProtocol(flow, time.Nanosecond)); got[2] != exp {
		t.Errorf("flow point: got %s want %s", got[2], exp)
	}
	c := write.NewPointWithMeasurement("allocation_cost").
		AddTag("run_id", "run1").
		AddTag("sample", "0").
		AddField("cost", 0.575).
		SetTime(now)
	if exp := strings.TrimSpace(write.PointToLineProtocol(c, time.Nanosecond)); got[4] != exp {
		t.Errorf("cost point: got %s want %s", got[4], exp)
	}
}

func TestInfluxSink_RecordBatch(t *testing.T) {
	srv, bodies := captureServer(t)
	sink := NewInfluxSink(srv.URL+"/api/v2/write", "token", "org", "bucket")
	defer sink.Close()

	now := time.Now()
	ev := coremetrics.BatchEvent{RunID: "run1", Requested: 10, Accepted: 9, Duplicates: 1, Attempts: 40, Duration: 2 * time.Millisecond, Time: now}
	if err := sink.RecordBatch(ev); err != nil {
		t.Fatalf("record: %v", err)
	}
	p := write.NewPointWithMeasurement("sampler_batch").
		AddTag("run_id", "run1").
		AddTag("failed", "false").
		AddField("requested", 10).
		AddField("accepted", 9).
		AddField("duplicates", 1).
		AddField("attempts", 40).
		AddField("duration_ms", 2.0).
		SetTime(now)
	exp := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	if got := bodies(); len(got) != 1 || got[0] != exp {
		t.Errorf("bodies: %#v", got)
	}
}

func TestInfluxSink_RecordAttemptIsNoop(t *testing.T) {
	srv, bodies := captureServer(t)
	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	defer sink.Close()
	if err := sink.RecordAttempt(coremetrics.AttemptEvent{Outcome: coremetrics.OutcomeAccepted}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if got := bodies(); len(got) != 0 {
		t.Errorf("unexpected writes: %#v", got)
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(srv.URL+"/api/v2/write", "tok", "org", "bucket")
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatalf("health endpoint not called")
	}
}

func TestSinkFactories(t *testing.T) {
	sink, err := coremetrics.NewSink(nil)
	if err != nil {
		t.Fatalf("nil config: %v", err)
	}
	if _, ok := sink.(coremetrics.NopSink); !ok {
		t.Fatalf("expected NopSink, got %T", sink)
	}
	if _, err := coremetrics.NewSink([]factory.ModuleConfig{{Type: "influx", Conf: map[string]any{"org": "o"}}}); err == nil {
		t.Fatal("expected error for influx sink without url")
	}
	if _, err := coremetrics.NewSink([]factory.ModuleConfig{{Type: "prometheus", Conf: map[string]any{"port": 1}}}); err == nil {
		t.Fatal("expected error for unknown prometheus option")
	}
}
