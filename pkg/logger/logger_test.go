package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLoggerExtractsContextFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewFromZap(zap.New(core))

	ctx := WithValue(context.Background(), KeyTraceID, "trace-1")
	ctx = WithValue(ctx, KeyOrderID, "A1")
	ctx = WithValue(ctx, KeyWorkerID, 3)

	log.Infof(ctx, "dispatched %d", 1)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.Message != "dispatched 1" {
		t.Fatalf("unexpected message %q", entry.Message)
	}
	fields := entry.ContextMap()
	if fields["trace_id"] != "trace-1" {
		t.Fatalf("trace_id = %v", fields["trace_id"])
	}
	if fields["order_id"] != "A1" {
		t.Fatalf("order_id = %v", fields["order_id"])
	}
	if fields["worker_id"] != int64(3) {
		t.Fatalf("worker_id = %v (%T)", fields["worker_id"], fields["worker_id"])
	}
	if _, ok := fields["action_type"]; ok {
		t.Fatalf("empty action_type should not be logged")
	}
}

func TestParseLevelFallsBackToInfo(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"verbose": zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestTraceID(t *testing.T) {
	if got := TraceID(context.Background()); got != "" {
		t.Fatalf("expected empty trace id, got %q", got)
	}
	ctx := WithValue(context.Background(), KeyTraceID, "abc")
	if got := TraceID(ctx); got != "abc" {
		t.Fatalf("TraceID = %q", got)
	}
}
