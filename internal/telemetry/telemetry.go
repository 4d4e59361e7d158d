// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package telemetry holds the OpenTelemetry instruments shared by the server packages.
package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "github.com/go-a2a/a2a-wire"

// Outcome values recorded with every measurement.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics holds the instruments of the A2A server.
type Metrics struct {
	requests       metric.Int64Counter
	latency        metric.Float64Histogram
	streamFrames   metric.Int64Counter
	pushDeliveries metric.Int64Counter
}

// New creates the instruments from mp. A nil mp records nothing.
func New(mp metric.MeterProvider) *Metrics {
	if mp == nil {
		mp = noop.NewMeterProvider()
	}
	m := mp.Meter(meterName)

	var err error
	metrics := &Metrics{}

	metrics.requests, err = m.Int64Counter("a2a.rpc.requests",
		metric.WithDescription("Count of handled JSON-RPC requests"),
	)
	if err != nil {
		otel.Handle(err)
		metrics.requests = noop.Int64Counter{}
	}

	metrics.latency, err = m.Float64Histogram("a2a.rpc.duration",
		metric.WithDescription("Duration of unary JSON-RPC requests"),
		metric.WithUnit("s"),
	)
	if err != nil {
		otel.Handle(err)
		metrics.latency = noop.Float64Histogram{}
	}

	metrics.streamFrames, err = m.Int64Counter("a2a.rpc.stream_frames",
		metric.WithDescription("Count of streamed response frames"),
	)
	if err != nil {
		otel.Handle(err)
		metrics.streamFrames = noop.Int64Counter{}
	}

	metrics.pushDeliveries, err = m.Int64Counter("a2a.push.deliveries",
		metric.WithDescription("Count of push notification deliveries"),
	)
	if err != nil {
		otel.Handle(err)
		metrics.pushDeliveries = noop.Int64Counter{}
	}

	return metrics
}

var defaultMetrics = sync.OnceValue(func() *Metrics {
	return New(otel.GetMeterProvider())
})

// Default returns the instruments created from the global meter provider.
func Default() *Metrics {
	return defaultMetrics()
}

// Outcome returns the outcome label of err.
func Outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeOK
}

// RecordRequest records one handled request.
func (m *Metrics) RecordRequest(ctx context.Context, method, outcome string, d time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("rpc.method", method),
		attribute.String("outcome", outcome),
	)
	m.requests.Add(ctx, 1, attrs)
	m.latency.Record(ctx, d.Seconds(), attrs)
}

// RecordStreamFrame records one streamed frame.
func (m *Metrics) RecordStreamFrame(ctx context.Context, method string) {
	m.streamFrames.Add(ctx, 1, metric.WithAttributes(attribute.String("rpc.method", method)))
}

// RecordPushDelivery records one push notification attempt.
func (m *Metrics) RecordPushDelivery(ctx context.Context, outcome string) {
	m.pushDeliveries.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
