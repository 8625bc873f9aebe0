// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package telemetry

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{
		Enabled:      false,
		ServiceName:  "test-service",
		ExporterType: "grpc",
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if provider.tp != nil {
		t.Error("Expected noop provider (tp == nil)")
	}

	_, span := otel.Tracer("test").Start(context.Background(), "noop-check")
	if span.IsRecording() {
		t.Error("Expected noop tracer span to be non-recording")
	}
	span.End()

	if err := provider.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown on noop provider: %v", err)
	}
}

func TestNewProvider_InvalidExporter(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{
		Enabled:      true,
		ServiceName:  "test-service",
		ExporterType: "invalid",
	})
	if err == nil {
		t.Fatal("Expected error for invalid exporter type")
	}

	expectedMsg := "unsupported exporter type: invalid (supported: grpc, http)"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}
}

func TestSamplerFor(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1.0, sdktrace.AlwaysSample().Description()},
		{2.0, sdktrace.AlwaysSample().Description()},
		{0.0, sdktrace.NeverSample().Description()},
		{-1, sdktrace.NeverSample().Description()},
		{0.25, sdktrace.TraceIDRatioBased(0.25).Description()},
	}
	for _, tt := range tests {
		if got := samplerFor(tt.rate).Description(); got != tt.want {
			t.Errorf("samplerFor(%v) = %q, want %q", tt.rate, got, tt.want)
		}
	}
}

func TestNilProviderShutdown(t *testing.T) {
	var p *Provider
	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatalf("nil provider Shutdown: %v", err)
	}
}

func TestConnAttributes(t *testing.T) {
	attrs := ConnAttributes("127.0.0.1:50000", "c-1")
	if len(attrs) != 2 {
		t.Fatalf("Expected 2 attributes, got %d", len(attrs))
	}
	verifyAttribute(t, attrs, NetPeerAddrKey, "127.0.0.1:50000")
	verifyAttribute(t, attrs, ConnIDKey, "c-1")

	if got := ConnAttributes("", ""); len(got) != 0 {
		t.Errorf("Expected no attributes for empty input, got %d", len(got))
	}
}

func TestPayloadAttributes(t *testing.T) {
	attrs := PayloadAttributes(25, "system")
	if len(attrs) != 2 {
		t.Fatalf("Expected 2 attributes, got %d", len(attrs))
	}
	verifyAttribute(t, attrs, ClockSourceKey, "system")
	for _, a := range attrs {
		if string(a.Key) == PayloadBytesKey && a.Value.AsInt64() != 25 {
			t.Errorf("payload bytes = %d, want 25", a.Value.AsInt64())
		}
	}
}

func TestErrorAttributes(t *testing.T) {
	attrs := ErrorAttributes("write")
	verifyAttribute(t, attrs, ErrorTypeKey, "write")
}

func verifyAttribute(t *testing.T, attrs []attribute.KeyValue, key, want string) {
	t.Helper()
	for _, a := range attrs {
		if string(a.Key) == key {
			if got := a.Value.AsString(); got != want {
				t.Errorf("attribute %s = %q, want %q", key, got, want)
			}
			return
		}
	}
	t.Errorf("attribute %s not found", key)
}
