package event_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/jensholdgaard/player-auction/internal/event"
)

func TestFanout_Publish(t *testing.T) {
	var first, second []event.Event
	fan := event.Fanout{
		event.SinkFunc(func(_ context.Context, evs ...event.Event) { first = append(first, evs...) }),
		nil,
		event.SinkFunc(func(_ context.Context, evs ...event.Event) { second = append(second, evs...) }),
	}

	fan.Publish(context.Background(),
		event.Event{Type: event.BidPlaced, Version: 1},
		event.Event{Type: event.PlayerSold, Version: 2},
	)

	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("delivered %d and %d events, want 2 each", len(first), len(second))
	}
	if second[1].Type != event.PlayerSold {
		t.Errorf("second sink got %q last, want %q", second[1].Type, event.PlayerSold)
	}
}

func TestLogSink_Publish(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	data, _ := json.Marshal(event.BidPlacedData{PlayerID: "p1", TeamID: "t1", Amount: 1_500_000})
	event.LogSink{Logger: logger}.Publish(context.Background(), event.Event{
		AggregateID: "session",
		Type:        event.BidPlaced,
		Data:        data,
		Version:     1,
	})

	out := buf.String()
	if !strings.Contains(out, `"type":"session.bid_placed"`) {
		t.Errorf("log output missing event type: %s", out)
	}
}
