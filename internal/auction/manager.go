package auction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/jensholdgaard/player-auction/internal/clock"
	"github.com/jensholdgaard/player-auction/internal/config"
	"github.com/jensholdgaard/player-auction/internal/event"
	"github.com/jensholdgaard/player-auction/internal/roster"
	"github.com/jensholdgaard/player-auction/internal/store"
)

const instrumentationName = "github.com/jensholdgaard/player-auction/internal/auction"

var (
	ErrNotStarted        = errors.New("auction not started")
	ErrNoLeadingTeam     = errors.New("no leading team")
	ErrResolutionPending = errors.New("result is still being shown")
	ErrAuctionFinished   = errors.New("auction finished")
	ErrUnknownTeam       = errors.New("unknown team")
)

// Manager owns the process-wide Session. It validates bidders against the
// team repository, schedules the automatic advance after a result has been
// shown, and publishes the session's events.
type Manager struct {
	mu      sync.Mutex
	session *Session
	timer   clock.Timer
	gen     uint64
	closed  bool
	outbox  outbox

	players store.PlayerRepository
	teams   store.TeamRepository
	sink    event.Sink
	cfg     config.AuctionConfig
	logger  *slog.Logger
	tracer  trace.Tracer
	clock   clock.Clock

	bids       metric.Int64Counter
	sold       metric.Int64Counter
	unsold     metric.Int64Counter
	saleAmount metric.Int64Histogram
}

// NewManager creates a Manager. The session is opened by Start.
func NewManager(
	players store.PlayerRepository,
	teams store.TeamRepository,
	sink event.Sink,
	cfg config.AuctionConfig,
	logger *slog.Logger,
	tp trace.TracerProvider,
	mp metric.MeterProvider,
	clk clock.Clock,
) (*Manager, error) {
	meter := mp.Meter(instrumentationName)

	bids, err := meter.Int64Counter("auction.bids",
		metric.WithDescription("Bids placed."))
	if err != nil {
		return nil, fmt.Errorf("creating bids counter: %w", err)
	}
	sold, err := meter.Int64Counter("auction.players.sold",
		metric.WithDescription("Players confirmed sold."))
	if err != nil {
		return nil, fmt.Errorf("creating sold counter: %w", err)
	}
	unsold, err := meter.Int64Counter("auction.players.unsold",
		metric.WithDescription("Players confirmed unsold."))
	if err != nil {
		return nil, fmt.Errorf("creating unsold counter: %w", err)
	}
	saleAmount, err := meter.Int64Histogram("auction.sale.amount",
		metric.WithDescription("Winning bid of each sale."),
		metric.WithUnit("{rupee}"))
	if err != nil {
		return nil, fmt.Errorf("creating sale amount histogram: %w", err)
	}

	if sink == nil {
		sink = event.Fanout(nil)
	}

	return &Manager{
		players:    players,
		teams:      teams,
		sink:       sink,
		cfg:        cfg,
		logger:     logger,
		tracer:     tp.Tracer(instrumentationName),
		clock:      clk,
		bids:       bids,
		sold:       sold,
		unsold:     unsold,
		saleAmount: saleAmount,
	}, nil
}

// Start loads the ordered roster and opens the session on its first player.
// Calling Start on a started Manager is a no-op.
func (m *Manager) Start(ctx context.Context) error {
	ctx, span := m.tracer.Start(ctx, "Manager.Start")
	defer span.End()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session != nil {
		return nil
	}

	players, err := m.players.List(ctx)
	if err != nil {
		return fmt.Errorf("loading players: %w", err)
	}
	s, err := NewSession(players, m.cfg.BidIncrement, m.clock)
	if err != nil {
		return err
	}
	m.session = s
	m.closed = false

	first := s.Snapshot()
	m.logger.InfoContext(ctx, "auction session started",
		slog.Int("players", first.Total),
		slog.String("player_id", first.Player.ID),
		slog.Int64("opening_bid", first.CurrentBid),
	)
	return nil
}

// Started reports whether the session has been opened.
func (m *Manager) Started() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session != nil
}

// Ready returns ErrNotStarted until Start has succeeded.
func (m *Manager) Ready(context.Context) error {
	if !m.Started() {
		return ErrNotStarted
	}
	return nil
}

// PlaceBid raises the bid on the current player for teamID.
func (m *Manager) PlaceBid(ctx context.Context, teamID string) (Snapshot, error) {
	ctx, span := m.tracer.Start(ctx, "Manager.PlaceBid",
		trace.WithAttributes(attribute.String("team_id", teamID)),
	)
	defer span.End()

	team, err := m.teams.Get(ctx, teamID)
	if errors.Is(err, store.ErrNotFound) {
		return Snapshot{}, fmt.Errorf("team %s: %w", teamID, ErrUnknownTeam)
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("looking up team: %w", err)
	}

	defer m.publish()
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		return Snapshot{}, ErrNotStarted
	}
	if !m.session.PlaceBid(teamID) {
		return m.session.Snapshot(), m.inertLocked()
	}

	snap := m.session.Snapshot()
	m.flushLocked(ctx)
	m.bids.Add(ctx, 1, metric.WithAttributes(attribute.String("team_id", teamID)))

	if remaining := roster.RemainingBudget(*team); snap.CurrentBid > remaining {
		m.logger.WarnContext(ctx, "bid exceeds remaining budget",
			slog.String("team_id", teamID),
			slog.Int64("bid", snap.CurrentBid),
			slog.Int64("remaining_budget", remaining),
		)
	}
	if roster.RemainingSlots(*team) <= 0 {
		m.logger.WarnContext(ctx, "bid from team with a full squad",
			slog.String("team_id", teamID),
			slog.Int("max_players", team.MaxPlayers),
		)
	}

	span.SetAttributes(attribute.Int64("bid", snap.CurrentBid))
	return snap, nil
}

// ConfirmSold sells the current player to the leading team and advances
// after the celebration has been shown.
func (m *Manager) ConfirmSold(ctx context.Context) (Snapshot, error) {
	ctx, span := m.tracer.Start(ctx, "Manager.ConfirmSold")
	defer span.End()

	defer m.publish()
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		return Snapshot{}, ErrNotStarted
	}
	if !m.session.ConfirmSold() {
		return m.session.Snapshot(), m.inertLocked()
	}

	snap := m.session.Snapshot()
	m.flushLocked(ctx)
	m.sold.Add(ctx, 1)
	m.saleAmount.Record(ctx, snap.CurrentBid,
		metric.WithAttributes(attribute.String("team_id", snap.LeadingTeam)))
	m.scheduleAdvanceLocked(m.cfg.CelebrationDuration)

	m.logger.InfoContext(ctx, "player sold",
		slog.String("player_id", snap.Player.ID),
		slog.String("team_id", snap.LeadingTeam),
		slog.Int64("amount", snap.CurrentBid),
	)
	return snap, nil
}

// ConfirmUnsold passes on the current player and advances after the unsold
// indicator has been shown.
func (m *Manager) ConfirmUnsold(ctx context.Context) (Snapshot, error) {
	ctx, span := m.tracer.Start(ctx, "Manager.ConfirmUnsold")
	defer span.End()

	defer m.publish()
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		return Snapshot{}, ErrNotStarted
	}
	if !m.session.ConfirmUnsold() {
		return m.session.Snapshot(), m.inertLocked()
	}

	snap := m.session.Snapshot()
	m.flushLocked(ctx)
	m.unsold.Add(ctx, 1)
	m.scheduleAdvanceLocked(m.cfg.UnsoldDuration)

	m.logger.InfoContext(ctx, "player unsold", slog.String("player_id", snap.Player.ID))
	return snap, nil
}

// Snapshot returns the current session state.
func (m *Manager) Snapshot(ctx context.Context) (Snapshot, error) {
	_, span := m.tracer.Start(ctx, "Manager.Snapshot")
	defer span.End()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		return Snapshot{}, ErrNotStarted
	}
	return m.session.Snapshot(), nil
}

// Close stops an outstanding advance. A result that is being shown stays
// on screen.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

// scheduleAdvanceLocked arms the single advance timer. Must hold m.mu.
func (m *Manager) scheduleAdvanceLocked(d time.Duration) {
	if m.timer != nil {
		m.timer.Stop()
	}
	m.gen++
	gen := m.gen
	m.timer = m.clock.AfterFunc(d, func() { m.advance(gen) })
}

func (m *Manager) advance(gen uint64) {
	ctx, span := m.tracer.Start(context.Background(), "Manager.advance")
	defer span.End()

	defer m.publish()
	m.mu.Lock()
	defer m.mu.Unlock()

	// A stopped timer may still fire if it was already running.
	if m.closed || gen != m.gen || m.session == nil {
		return
	}
	m.timer = nil

	m.session.Advance()
	m.flushLocked(ctx)

	snap := m.session.Snapshot()
	if snap.Finished {
		m.logger.InfoContext(ctx, "auction finished", slog.Int("players", snap.Total))
		return
	}
	m.logger.InfoContext(ctx, "next player up",
		slog.Int("index", snap.Index),
		slog.String("player_id", snap.Player.ID),
		slog.Int64("opening_bid", snap.CurrentBid),
	)
}

// flushLocked queues the session's pending events. Must hold m.mu so
// batches enter the outbox in session order.
func (m *Manager) flushLocked(ctx context.Context) {
	if events := m.session.PendingEvents(); len(events) > 0 {
		m.outbox.push(ctx, events)
	}
}

// publish hands queued events to the sink. Must not hold m.mu: sinks may
// block on network calls.
func (m *Manager) publish() {
	m.outbox.drain(m.sink)
}

// inertLocked explains why a transition was refused. Must hold m.mu.
func (m *Manager) inertLocked() error {
	snap := m.session.Snapshot()
	switch {
	case snap.Finished:
		return ErrAuctionFinished
	case snap.Resolving:
		return ErrResolutionPending
	default:
		return ErrNoLeadingTeam
	}
}
