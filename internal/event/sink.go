package event

import (
	"context"
	"log/slog"
)

// Sink receives events once they have been recorded. Events are delivered
// in order and are not retained after Publish returns.
type Sink interface {
	Publish(ctx context.Context, events ...Event)
}

// SinkFunc adapts a function into a Sink.
type SinkFunc func(ctx context.Context, events ...Event)

// Publish calls f.
func (f SinkFunc) Publish(ctx context.Context, events ...Event) { f(ctx, events...) }

// Fanout delivers every event to each sink in turn.
type Fanout []Sink

// Publish forwards events to all sinks.
func (f Fanout) Publish(ctx context.Context, events ...Event) {
	for _, s := range f {
		if s != nil {
			s.Publish(ctx, events...)
		}
	}
}

// LogSink writes each event as a structured log line.
type LogSink struct {
	Logger *slog.Logger
}

// Publish logs events at debug level.
func (s LogSink) Publish(ctx context.Context, events ...Event) {
	for _, e := range events {
		s.Logger.DebugContext(ctx, "event",
			slog.String("aggregate_id", e.AggregateID),
			slog.String("type", string(e.Type)),
			slog.Int("version", e.Version),
			slog.String("data", string(e.Data)),
		)
	}
}
