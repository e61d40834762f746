// Package announce posts auction results to a Discord channel.
package announce

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jensholdgaard/player-auction/internal/config"
	"github.com/jensholdgaard/player-auction/internal/event"
	"github.com/jensholdgaard/player-auction/internal/roster"
	"github.com/jensholdgaard/player-auction/internal/store"
)

const (
	colorUnsold = 0x6B7280
	colorSold   = 0xF59E0B
)

// Sender is the part of *discordgo.Session the announcer uses.
type Sender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Announcer implements event.Sink. It reacts to sold and unsold results
// and ignores every other event.
type Announcer struct {
	sender    Sender
	channelID string
	teams     store.TeamRepository
	logger    *slog.Logger
	tracer    trace.Tracer
}

// New returns an Announcer posting to channelID through sender.
func New(sender Sender, channelID string, teams store.TeamRepository, logger *slog.Logger, tp trace.TracerProvider) *Announcer {
	return &Announcer{
		sender:    sender,
		channelID: channelID,
		teams:     teams,
		logger:    logger,
		tracer:    tp.Tracer("github.com/jensholdgaard/player-auction/internal/announce"),
	}
}

// Discord is an Announcer backed by a bot session.
type Discord struct {
	*Announcer
	session *discordgo.Session
}

// NewDiscord creates a bot session from cfg. Messages are sent over the
// REST API, so no gateway connection is opened.
func NewDiscord(cfg config.DiscordConfig, teams store.TeamRepository, logger *slog.Logger, tp trace.TracerProvider) (*Discord, error) {
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}
	return &Discord{
		Announcer: New(session, cfg.ChannelID, teams, logger, tp),
		session:   session,
	}, nil
}

// Close releases the bot session.
func (d *Discord) Close() error {
	return d.session.Close()
}

// Publish posts one message per result event. Failures are logged.
func (a *Announcer) Publish(ctx context.Context, events ...event.Event) {
	for _, e := range events {
		var (
			embed *discordgo.MessageEmbed
			err   error
		)
		switch e.Type {
		case event.PlayerSold:
			embed, err = a.soldEmbed(ctx, e)
		case event.PlayerUnsold:
			embed, err = unsoldEmbed(e)
		default:
			continue
		}
		if err != nil {
			a.logger.ErrorContext(ctx, "failed to build announcement",
				slog.String("type", string(e.Type)),
				slog.Any("error", err),
			)
			continue
		}
		a.send(ctx, e, embed)
	}
}

func (a *Announcer) send(ctx context.Context, e event.Event, embed *discordgo.MessageEmbed) {
	ctx, span := a.tracer.Start(ctx, "Announcer.send",
		trace.WithAttributes(
			attribute.String("event_type", string(e.Type)),
			attribute.String("channel_id", a.channelID),
		),
	)
	defer span.End()

	if _, err := a.sender.ChannelMessageSendEmbed(a.channelID, embed, discordgo.WithContext(ctx)); err != nil {
		span.RecordError(err)
		a.logger.ErrorContext(ctx, "failed to post announcement",
			slog.String("type", string(e.Type)),
			slog.Any("error", err),
		)
	}
}

func (a *Announcer) soldEmbed(ctx context.Context, e event.Event) (*discordgo.MessageEmbed, error) {
	var sale event.SaleData
	if err := json.Unmarshal(e.Data, &sale); err != nil {
		return nil, fmt.Errorf("decoding sale: %w", err)
	}

	teamName, color := sale.TeamID, colorSold
	if team, err := a.teams.Get(ctx, sale.TeamID); err == nil {
		teamName = team.Name
		if c, ok := parseColor(team.Color); ok {
			color = c
		}
	} else {
		a.logger.WarnContext(ctx, "announcing sale to unknown team",
			slog.String("team_id", sale.TeamID),
			slog.Any("error", err),
		)
	}

	return &discordgo.MessageEmbed{
		Title:       "SOLD!",
		Description: fmt.Sprintf("**%s** to **%s** for **%s**", sale.PlayerName, teamName, roster.Lakhs(sale.Amount)),
		Color:       color,
		Timestamp:   e.CreatedAt.Format(time.RFC3339),
	}, nil
}

func unsoldEmbed(e event.Event) (*discordgo.MessageEmbed, error) {
	var data event.UnsoldData
	if err := json.Unmarshal(e.Data, &data); err != nil {
		return nil, fmt.Errorf("decoding unsold: %w", err)
	}
	return &discordgo.MessageEmbed{
		Title:       "UNSOLD",
		Description: fmt.Sprintf("**%s** goes unsold", data.PlayerName),
		Color:       colorUnsold,
		Timestamp:   e.CreatedAt.Format(time.RFC3339),
	}, nil
}

// parseColor reads "#RRGGBB" into an embed color.
func parseColor(s string) (int, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return 0, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, false
	}
	return int(v), true
}
