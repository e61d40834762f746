package announce_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/jensholdgaard/player-auction/internal/announce"
	"github.com/jensholdgaard/player-auction/internal/event"
	"github.com/jensholdgaard/player-auction/internal/roster"
	"github.com/jensholdgaard/player-auction/internal/store"
)

type sentMessage struct {
	channelID string
	embed     *discordgo.MessageEmbed
}

type mockSender struct {
	sent []sentMessage
	err  error
}

func (m *mockSender) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.sent = append(m.sent, sentMessage{channelID: channelID, embed: embed})
	return &discordgo.Message{ChannelID: channelID}, nil
}

type mockTeamRepo map[string]roster.Team

func (m mockTeamRepo) List(context.Context) ([]roster.Team, error) { return nil, nil }

func (m mockTeamRepo) Get(_ context.Context, id string) (*roster.Team, error) {
	t, ok := m[id]
	if !ok {
		return nil, fmt.Errorf("team %s: %w", id, store.ErrNotFound)
	}
	return &t, nil
}

var teams = mockTeamRepo{
	"t1": {ID: "t1", Name: "Mumbai Mavericks", Color: "#004BA0"},
}

func mustEvent(t *testing.T, typ event.Type, payload any) event.Event {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	return event.Event{
		AggregateID: "session",
		Type:        typ,
		Data:        data,
		CreatedAt:   time.Date(2025, 3, 22, 20, 0, 0, 0, time.UTC),
	}
}

func newAnnouncer(sender announce.Sender, logs *bytes.Buffer) *announce.Announcer {
	return announce.New(sender, "chan-1", teams, slog.New(slog.NewTextHandler(logs, nil)), noop.NewTracerProvider())
}

func TestAnnouncer_Sold(t *testing.T) {
	sender := &mockSender{}
	a := newAnnouncer(sender, &bytes.Buffer{})

	a.Publish(context.Background(), mustEvent(t, event.PlayerSold, event.SaleData{
		PlayerID: "p1", PlayerName: "Rohan Mehta", TeamID: "t1", Amount: 2_000_000,
	}))

	if len(sender.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sender.sent))
	}
	msg := sender.sent[0]
	if msg.channelID != "chan-1" {
		t.Errorf("channel = %q", msg.channelID)
	}
	if msg.embed.Title != "SOLD!" {
		t.Errorf("title = %q", msg.embed.Title)
	}
	want := "**Rohan Mehta** to **Mumbai Mavericks** for **₹20.0L**"
	if msg.embed.Description != want {
		t.Errorf("description = %q, want %q", msg.embed.Description, want)
	}
	if msg.embed.Color != 0x004BA0 {
		t.Errorf("color = %#x, want team color", msg.embed.Color)
	}
	if msg.embed.Timestamp != "2025-03-22T20:00:00Z" {
		t.Errorf("timestamp = %q", msg.embed.Timestamp)
	}
}

func TestAnnouncer_SoldToUnknownTeamUsesID(t *testing.T) {
	sender := &mockSender{}
	logs := &bytes.Buffer{}
	a := newAnnouncer(sender, logs)

	a.Publish(context.Background(), mustEvent(t, event.PlayerSold, event.SaleData{
		PlayerName: "Arjun", TeamID: "ghost", Amount: 500_000,
	}))

	if len(sender.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sender.sent))
	}
	if !strings.Contains(sender.sent[0].embed.Description, "**ghost**") {
		t.Errorf("description = %q", sender.sent[0].embed.Description)
	}
	if !strings.Contains(logs.String(), "unknown team") {
		t.Errorf("missing warning in logs: %s", logs.String())
	}
}

func TestAnnouncer_Unsold(t *testing.T) {
	sender := &mockSender{}
	a := newAnnouncer(sender, &bytes.Buffer{})

	a.Publish(context.Background(), mustEvent(t, event.PlayerUnsold, event.UnsoldData{PlayerID: "p4", PlayerName: "Kabir Shah"}))

	if len(sender.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sender.sent))
	}
	if got := sender.sent[0].embed.Description; got != "**Kabir Shah** goes unsold" {
		t.Errorf("description = %q", got)
	}
}

func TestAnnouncer_IgnoresOtherEvents(t *testing.T) {
	sender := &mockSender{}
	a := newAnnouncer(sender, &bytes.Buffer{})

	a.Publish(context.Background(),
		mustEvent(t, event.BidPlaced, event.BidPlacedData{PlayerID: "p1", TeamID: "t1", Amount: 1}),
		mustEvent(t, event.Advanced, event.AdvancedData{Index: 1}),
		mustEvent(t, event.RosterImported, event.RosterImportedData{Players: 3}),
	)
	if len(sender.sent) != 0 {
		t.Errorf("sent %d messages for non-result events", len(sender.sent))
	}
}

func TestAnnouncer_SendFailureIsLogged(t *testing.T) {
	sender := &mockSender{err: errors.New("rate limited")}
	logs := &bytes.Buffer{}
	a := newAnnouncer(sender, logs)

	a.Publish(context.Background(), mustEvent(t, event.PlayerUnsold, event.UnsoldData{PlayerName: "X"}))

	if !strings.Contains(logs.String(), "failed to post announcement") || !strings.Contains(logs.String(), "rate limited") {
		t.Errorf("logs = %s", logs.String())
	}
}

func TestAnnouncer_MalformedPayloadIsSkipped(t *testing.T) {
	sender := &mockSender{}
	logs := &bytes.Buffer{}
	a := newAnnouncer(sender, logs)

	a.Publish(context.Background(), event.Event{Type: event.PlayerSold, Data: json.RawMessage(`{"amount":"lots"}`)})

	if len(sender.sent) != 0 {
		t.Error("malformed event was announced")
	}
	if !strings.Contains(logs.String(), "failed to build announcement") {
		t.Errorf("logs = %s", logs.String())
	}
}
