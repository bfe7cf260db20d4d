package otel

import (
	"context"
	"sync"

	eventbus "github.com/hanpama/watchquery/internal/eventbus"
	events "github.com/hanpama/watchquery/internal/events"
	watchid "github.com/hanpama/watchquery/internal/watchid"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
)

// Setup configures OpenTelemetry and attaches eventbus subscribers that turn
// watch lifecycle events into spans. If endpoint is empty, no telemetry is
// configured.
func Setup(endpoint, service string) (func(context.Context) error, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	exp, err := otlptracegrpc.New(context.Background(),
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithDialOption(grpc.WithInsecure()))
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(service),
		)),
	)
	otel.SetTracerProvider(tp)

	sub := &subscriber{tracer: otel.Tracer("watchquery")}
	sub.register()

	return tp.Shutdown, nil
}

type subscriber struct {
	tracer     trace.Tracer
	watchSpans sync.Map // watch id -> trace.Span
}

func (s *subscriber) register() {
	eventbus.Subscribe(func(ctx context.Context, e events.WatchStart) {
		wid, _ := watchid.FromContext(ctx)
		_, span := s.tracer.Start(ctx, "graphql.watch")
		span.SetAttributes(
			attribute.String("graphql.operation.name", e.Operation),
			attribute.String("graphql.fetch_policy", e.FetchPolicy),
			attribute.Bool("graphql.watch.reused", e.Reused),
		)
		s.watchSpans.Store(wid, span)
	})

	eventbus.Subscribe(func(ctx context.Context, e events.WatchResult) {
		wid, _ := watchid.FromContext(ctx)
		v, ok := s.watchSpans.Load(wid)
		if !ok {
			return
		}
		v.(trace.Span).AddEvent("graphql.result", trace.WithAttributes(
			attribute.Bool("graphql.result.loading", e.Loading),
			attribute.String("graphql.result.network_status", e.NetworkStatus),
			attribute.Bool("graphql.result.has_data", e.HasData),
		))
	})

	eventbus.Subscribe(func(ctx context.Context, e events.WatchError) {
		wid, _ := watchid.FromContext(ctx)
		v, ok := s.watchSpans.Load(wid)
		if !ok {
			return
		}
		v.(trace.Span).RecordError(e.Err)
	})

	eventbus.Subscribe(func(ctx context.Context, e events.Resubscribe) {
		wid, _ := watchid.FromContext(ctx)
		v, ok := s.watchSpans.Load(wid)
		if !ok {
			return
		}
		v.(trace.Span).AddEvent("graphql.resubscribe")
	})

	eventbus.Subscribe(func(ctx context.Context, e events.WatchStop) {
		wid, _ := watchid.FromContext(ctx)
		v, ok := s.watchSpans.LoadAndDelete(wid)
		if !ok {
			return
		}
		v.(trace.Span).End()
	})
}
