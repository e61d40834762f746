package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/jensholdgaard/player-auction/internal/clock"
	"github.com/jensholdgaard/player-auction/internal/event"
)

const instrumentationName = "github.com/jensholdgaard/player-auction/internal/importer"

// RosterID is the aggregate id of roster import events.
const RosterID = "roster"

// Manager handles roster uploads.
type Manager struct {
	mapper  Mapper
	preview *Preview
	sink    event.Sink
	logger  *slog.Logger
	tracer  trace.Tracer
	clock   clock.Clock
	rows    metric.Int64Counter

	mu      sync.Mutex
	version int
}

// NewManager returns a new import Manager that stores successful imports in
// preview.
func NewManager(mapper Mapper, preview *Preview, sink event.Sink, logger *slog.Logger, tp trace.TracerProvider, mp metric.MeterProvider, clk clock.Clock) (*Manager, error) {
	rows, err := mp.Meter(instrumentationName).Int64Counter("roster.import.rows",
		metric.WithDescription("Players read from uploaded spreadsheets."))
	if err != nil {
		return nil, fmt.Errorf("creating import rows counter: %w", err)
	}
	if sink == nil {
		sink = event.Fanout(nil)
	}
	return &Manager{
		mapper:  mapper,
		preview: preview,
		sink:    sink,
		logger:  logger,
		tracer:  tp.Tracer(instrumentationName),
		clock:   clk,
		rows:    rows,
	}, nil
}

// Import decodes the uploaded file and replaces the preview with its
// players. On failure the preview keeps its previous contents.
func (m *Manager) Import(ctx context.Context, filename string, r io.Reader) (Batch, error) {
	ctx, span := m.tracer.Start(ctx, "Manager.Import",
		trace.WithAttributes(attribute.String("filename", filename)),
	)
	defer span.End()

	format, err := FormatFromFilename(filename)
	if err != nil {
		return Batch{}, err
	}

	rows, err := Decode(r, format)
	if err != nil {
		m.logger.WarnContext(ctx, "roster import failed",
			slog.String("filename", filename),
			slog.Any("error", err),
		)
		return Batch{}, err
	}

	res := m.mapper.Map(rows)
	batch := Batch{
		Filename:   filename,
		ImportedAt: m.clock.Now().UTC(),
		Players:    res.Players,
		Warnings:   res.Warnings,
	}
	m.preview.Set(batch)
	m.rows.Add(ctx, int64(len(res.Players)),
		metric.WithAttributes(attribute.String("format", string(format))))
	span.SetAttributes(attribute.Int("players", len(res.Players)))

	m.publish(ctx, batch)

	for _, w := range res.Warnings {
		m.logger.WarnContext(ctx, "roster import warning",
			slog.String("filename", filename),
			slog.String("warning", w),
		)
	}
	m.logger.InfoContext(ctx, "roster imported",
		slog.String("filename", filename),
		slog.Int("players", len(res.Players)),
		slog.Int("warnings", len(res.Warnings)),
	)
	return batch, nil
}

// Preview returns the last successful import.
func (m *Manager) Preview(ctx context.Context) (Batch, bool) {
	_, span := m.tracer.Start(ctx, "Manager.Preview")
	defer span.End()

	return m.preview.Get()
}

func (m *Manager) publish(ctx context.Context, b Batch) {
	data, _ := json.Marshal(event.RosterImportedData{
		Filename: b.Filename,
		Players:  len(b.Players),
		Warnings: len(b.Warnings),
	})

	m.mu.Lock()
	m.version++
	evt := event.Event{
		AggregateID: RosterID,
		Type:        event.RosterImported,
		Data:        data,
		Version:     m.version,
		CreatedAt:   b.ImportedAt,
	}
	m.mu.Unlock()

	m.sink.Publish(ctx, evt)
}
