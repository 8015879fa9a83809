package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/lox/pokerrooms/internal/ai"
	"github.com/lox/pokerrooms/internal/randutil"
	"github.com/lox/pokerrooms/internal/room"
	"github.com/lox/pokerrooms/internal/roomcode"
	"github.com/lox/pokerrooms/internal/store"
)

const (
	// DefaultAIDelay is how long an AI player "thinks" before acting.
	DefaultAIDelay = 2 * time.Second

	// timerBudget bounds the store work done from a timer callback.
	timerBudget = 10 * time.Second
	// codeAttempts is how many fresh codes CreateRoom tries before giving up.
	codeAttempts = 8
)

// Client is the connection that sent a request. The service binds it to a
// seat and answers it directly.
type Client interface {
	ID() string
	Bind(roomCode, playerID string)
	Send(msg *Message) error
}

// Broadcaster delivers a message to whichever connection holds a seat.
type Broadcaster interface {
	SendToPlayer(roomCode, playerID string, msg *Message) error
	// Release unbinds and closes every connection seated as playerID except
	// keepConnectionID.
	Release(roomCode, playerID, keepConnectionID string)
}

// ServiceConfig holds the knobs of the game service.
type ServiceConfig struct {
	AIDelay   time.Duration
	Defaults  room.Settings
	AIPlayers int
}

// DefaultServiceConfig returns the stock configuration.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		AIDelay:   DefaultAIDelay,
		Defaults:  room.DefaultSettings(),
		AIPlayers: 1,
	}
}

// GameService runs every room. Each request is one unit of work under the
// room's lock: load, validate and mutate, save, then broadcast.
type GameService struct {
	store       store.Store
	broadcaster Broadcaster
	clock       quartz.Clock
	rng         *randutil.Locked
	codes       *roomcode.Generator
	cfg         ServiceConfig
	logger      *log.Logger

	locks *keyedMutex

	mu       sync.Mutex
	sessions map[string]*roomSession
}

// NewGameService creates a new game service
func NewGameService(st store.Store, broadcaster Broadcaster, cfg ServiceConfig, rng *randutil.Locked, clock quartz.Clock, logger *log.Logger) *GameService {
	if cfg.AIDelay <= 0 {
		cfg.AIDelay = DefaultAIDelay
	}
	return &GameService{
		store:       st,
		broadcaster: broadcaster,
		clock:       clock,
		rng:         rng,
		codes:       roomcode.NewGenerator(rng),
		cfg:         cfg,
		logger:      logger.WithPrefix("game-service"),
		locks:       newKeyedMutex(),
		sessions:    make(map[string]*roomSession),
	}
}

// CreateRoom opens a room with the caller as host, optionally with AI
// opponents, and binds the caller to it.
func (gs *GameService) CreateRoom(ctx context.Context, c Client, data CreateRoomData) error {
	settings, err := gs.settingsFrom(data.Settings)
	if err != nil {
		return err
	}

	now := gs.clock.Now()
	host := &room.Player{
		ID:           uuid.NewString(),
		ConnectionID: c.ID(),
		Token:        uuid.NewString(),
		Name:         data.PlayerName,
	}

	r, err := room.New("", host, settings, now)
	if err != nil {
		return err
	}

	if data.WithAI {
		count := data.AICount
		if count <= 0 {
			count = gs.cfg.AIPlayers
		}
		count = min(max(count, 1), room.MaxPlayers-1)
		for i := range count {
			bot := &room.Player{
				ID:   uuid.NewString(),
				Name: fmt.Sprintf("Bot %d", i+1),
				IsAI: true,
			}
			if _, err := r.AddPlayer(bot, now); err != nil {
				return err
			}
		}
	}

	if err := gs.allocate(ctx, r); err != nil {
		return err
	}

	gs.logger.Info("Room created", "room", r.Code, "host", host.Name, "players", len(r.Players))

	c.Bind(r.Code, host.ID)
	return gs.reply(c, MessageTypeRoomCreated, RoomJoinedData{
		RoomCode:     r.Code,
		PlayerID:     host.ID,
		SessionToken: host.Token,
		State:        r.ViewFor(host.ID),
	})
}

// allocate stores r under a fresh code, retrying on collisions.
func (gs *GameService) allocate(ctx context.Context, r *room.Room) error {
	for range codeAttempts {
		r.Code = gs.codes.Generate()
		err := gs.store.Create(ctx, r)
		if errors.Is(err, store.ErrCodeTaken) {
			continue
		}
		return err
	}
	return ErrCodeExhausted
}

// settingsFrom overlays client supplied settings onto the defaults.
func (gs *GameService) settingsFrom(raw json.RawMessage) (room.Settings, error) {
	settings := gs.cfg.Defaults
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &settings); err != nil {
			return room.Settings{}, fmt.Errorf("%w: settings: %v", ErrInvalidData, err)
		}
	}
	if err := settings.Validate(); err != nil {
		return room.Settings{}, err
	}
	return settings, nil
}

// JoinRoom seats the caller in an existing room. With a known PlayerID the
// caller reclaims that seat instead.
func (gs *GameService) JoinRoom(ctx context.Context, c Client, data JoinRoomData) error {
	code := roomcode.Normalize(data.RoomCode)
	if err := roomcode.Validate(code); err != nil {
		return fmt.Errorf("%w: %s", store.ErrNotFound, code)
	}

	return gs.withRoom(ctx, code, func(r *room.Room, now time.Time) (func(), error) {
		if data.PlayerID != "" {
			if _, ok := r.Player(data.PlayerID); ok {
				return gs.reconnect(r, c, data, now)
			}
		}

		p, err := r.AddPlayer(&room.Player{
			ID:           uuid.NewString(),
			ConnectionID: c.ID(),
			Token:        uuid.NewString(),
			Name:         data.PlayerName,
		}, now)
		if err != nil {
			return nil, err
		}

		return func() {
			c.Bind(r.Code, p.ID)
			_ = gs.reply(c, MessageTypeRoomJoined, RoomJoinedData{RoomCode: r.Code, PlayerID: p.ID, SessionToken: p.Token, State: r.ViewFor(p.ID)})
			gs.broadcast(r, MessageTypePlayerJoined, p.ID, func(viewer string) any {
				return PlayerEventData{PlayerID: p.ID, Name: p.Name, State: r.ViewFor(viewer)}
			})
			gs.logger.Info("Player joined", "room", r.Code, "player", p.Name)
		}, nil
	})
}

// reconnect moves a seat onto c. A connection still holding the seat is
// released so that only c receives the player's private state.
func (gs *GameService) reconnect(r *room.Room, c Client, data JoinRoomData, now time.Time) (func(), error) {
	p, err := r.Reconnect(data.PlayerID, data.SessionToken, c.ID(), now)
	if err != nil {
		return nil, err
	}
	return func() {
		gs.broadcaster.Release(r.Code, p.ID, c.ID())
		c.Bind(r.Code, p.ID)
		_ = gs.reply(c, MessageTypeRoomJoined, RoomJoinedData{RoomCode: r.Code, PlayerID: p.ID, SessionToken: p.Token, State: r.ViewFor(p.ID)})
		gs.broadcast(r, MessageTypePlayerReconnected, p.ID, func(viewer string) any {
			return PlayerEventData{PlayerID: p.ID, Name: p.Name, State: r.ViewFor(viewer)}
		})
		gs.logger.Info("Player reconnected", "room", r.Code, "player", p.Name)
	}, nil
}

// StartGame deals the first hand. Only the host may start.
func (gs *GameService) StartGame(ctx context.Context, code, playerID string) error {
	return gs.withRoom(ctx, code, func(r *room.Room, now time.Time) (func(), error) {
		if err := r.StartGame(playerID, gs.rng.Fork(), now); err != nil {
			return nil, err
		}
		return func() {
			gs.logger.Info("Game started", "room", r.Code, "players", len(r.Players))
			gs.broadcastState(r, MessageTypeGameStarted)
			gs.broadcastHandEnd(r)
		}, nil
	})
}

// PlayerAction applies a fold, check, call or raise for playerID.
func (gs *GameService) PlayerAction(ctx context.Context, code, playerID string, data PlayerActionData) error {
	kind, err := room.ParseActionKind(data.Action)
	if err != nil {
		return err
	}
	action := room.Action{Kind: kind, Amount: data.Amount}

	return gs.withRoom(ctx, code, func(r *room.Room, now time.Time) (func(), error) {
		if err := r.Apply(playerID, action, now); err != nil {
			return nil, err
		}
		return func() {
			gs.broadcastState(r, MessageTypeGameUpdate)
			gs.broadcastHandEnd(r)
		}, nil
	})
}

// NextRound deals the next hand after a showdown.
func (gs *GameService) NextRound(ctx context.Context, code, playerID string) error {
	return gs.withRoom(ctx, code, func(r *room.Room, now time.Time) (func(), error) {
		if err := r.NextRound(playerID, gs.rng.Fork(), now); err != nil {
			return nil, err
		}
		return func() {
			gs.broadcastState(r, MessageTypeGameUpdate)
			gs.broadcastHandEnd(r)
		}, nil
	})
}

// BuyBack restores chips to a busted player between hands.
func (gs *GameService) BuyBack(ctx context.Context, code, playerID string) error {
	return gs.withRoom(ctx, code, func(r *room.Room, now time.Time) (func(), error) {
		if err := r.BuyBack(playerID, now); err != nil {
			return nil, err
		}
		return func() {
			gs.broadcastState(r, MessageTypeGameUpdate)
		}, nil
	})
}

// Chat appends a message to the room's chat log.
func (gs *GameService) Chat(ctx context.Context, code, playerID string, data ChatMessageData) error {
	return gs.withRoom(ctx, code, func(r *room.Room, now time.Time) (func(), error) {
		entry, err := r.AddChat(playerID, data.Message, now)
		if err != nil {
			return nil, err
		}
		return func() {
			gs.broadcast(r, MessageTypeNewChatMessage, "", func(string) any {
				return ChatData{Entry: entry}
			})
		}, nil
	})
}

// Disconnect marks a seat as disconnected. A connection that has already been
// replaced by a reconnect does nothing.
func (gs *GameService) Disconnect(ctx context.Context, code, playerID, connectionID string) error {
	return gs.withRoom(ctx, code, func(r *room.Room, now time.Time) (func(), error) {
		p, ok := r.Player(playerID)
		if !ok {
			return nil, room.ErrPlayerNotFound
		}
		if p.ConnectionID != connectionID || !p.Connected {
			return nil, errNoChange
		}
		if err := r.Disconnect(playerID, now); err != nil {
			return nil, err
		}
		return func() {
			gs.logger.Info("Player disconnected", "room", r.Code, "player", p.Name)
			gs.broadcast(r, MessageTypePlayerDisconnected, p.ID, func(viewer string) any {
				return PlayerEventData{PlayerID: p.ID, Name: p.Name, State: r.ViewFor(viewer)}
			})
		}, nil
	})
}

// errNoChange aborts a unit of work without saving or reporting an error.
var errNoChange = errors.New("no change")

// mutation validates and mutates r. On success it returns the broadcasts to
// run once r has been saved.
type mutation func(r *room.Room, now time.Time) (func(), error)

// withRoom runs one unit of work against a freshly loaded room. Nothing is
// broadcast unless the save succeeded.
func (gs *GameService) withRoom(ctx context.Context, code string, fn mutation) error {
	unlock := gs.locks.Lock(code)
	defer unlock()

	r, err := gs.store.Get(ctx, code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: %s", store.ErrNotFound, code)
		}
		gs.logger.Error("Failed to load room", "room", code, "error", err)
		return err
	}

	now := gs.clock.Now()
	after, err := fn(r, now)
	if errors.Is(err, errNoChange) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := gs.store.Save(ctx, r); err != nil {
		gs.logger.Error("Failed to save room", "room", code, "error", err)
		return err
	}

	if after != nil {
		after()
	}
	gs.settle(r)
	return nil
}

// settle schedules whatever the room is waiting on: an AI decision, a turn
// timeout, or nothing.
func (gs *GameService) settle(r *room.Room) {
	sess := gs.session(r.Code)

	actor := r.Actor()
	if !r.Phase.IsBetting() || actor == nil || r.ConnectedHumans() == 0 {
		sess.cancel()
		return
	}

	code, ticket := r.Code, r.Ticket()
	switch {
	case actor.IsAI:
		sess.schedule(gs.clock, gs.cfg.AIDelay, ticket, "ai", func(t room.Ticket) {
			gs.runScheduled(code, t, gs.decideForAI)
		})
	case r.Settings.TurnTimeLimit > 0:
		sess.schedule(gs.clock, r.Settings.TurnTimeout(), ticket, "turn-timeout", func(t room.Ticket) {
			gs.runScheduled(code, t, gs.timeoutActor)
		})
	default:
		sess.cancel()
	}
}

func (gs *GameService) session(code string) *roomSession {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	sess, ok := gs.sessions[code]
	if !ok {
		sess = &roomSession{}
		gs.sessions[code] = sess
	}
	return sess
}

// runScheduled re-validates a timer's ticket against the stored room and
// applies fn only if nothing has changed since it was scheduled.
func (gs *GameService) runScheduled(code string, ticket room.Ticket, fn mutation) {
	ctx, cancel := context.WithTimeout(context.Background(), timerBudget)
	defer cancel()

	err := gs.withRoom(ctx, code, func(r *room.Room, now time.Time) (func(), error) {
		if r.Ticket() != ticket {
			gs.logger.Debug("Dropping stale timer", "room", code, "hand", ticket.HandNumber, "actor", ticket.ActorID)
			return nil, errNoChange
		}
		return fn(r, now)
	})

	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		gs.dropSession(code)
	default:
		gs.logger.Warn("Scheduled action failed", "room", code, "error", err)
	}
}

// Stop cancels every pending timer. Rooms stay in the store; their timers are
// scheduled again by the next request that touches them.
func (gs *GameService) Stop() {
	gs.mu.Lock()
	sessions := gs.sessions
	gs.sessions = make(map[string]*roomSession)
	gs.mu.Unlock()

	for _, sess := range sessions {
		sess.cancel()
	}
}

func (gs *GameService) dropSession(code string) {
	gs.mu.Lock()
	sess, ok := gs.sessions[code]
	delete(gs.sessions, code)
	gs.mu.Unlock()

	if ok {
		sess.cancel()
	}
}

// decideForAI plays the AI actor's turn from its sanitized view.
func (gs *GameService) decideForAI(r *room.Room, now time.Time) (func(), error) {
	actor := r.Actor()
	obs, ok := ai.ObservationFromView(r.ViewFor(actor.ID))
	if !ok {
		return nil, errNoChange
	}

	decision := ai.Decide(obs, gs.rng)
	if err := r.Apply(actor.ID, decision.Action, now); err != nil {
		gs.logger.Warn("AI chose an illegal action, falling back", "room", r.Code, "player", actor.Name, "action", decision.Action.Kind, "error", err)
		decision.Taunt = ai.TauntNone
		if err := r.Apply(actor.ID, r.DefaultAction(actor.ID), now); err != nil {
			return nil, err
		}
	}
	gs.logger.Debug("AI acted", "room", r.Code, "player", actor.Name, "action", decision.Action.Kind, "amount", decision.Action.Amount)

	var entry *room.ChatEntry
	if line := ai.TauntLine(decision.Taunt, gs.rng); line != "" {
		if e, err := r.AddChat(actor.ID, line, now); err == nil {
			entry = &e
		}
	}

	return func() {
		gs.broadcastState(r, MessageTypeGameUpdate)
		if entry != nil {
			gs.broadcast(r, MessageTypeNewChatMessage, "", func(string) any {
				return ChatData{Entry: *entry}
			})
		}
		gs.broadcastHandEnd(r)
	}, nil
}

// timeoutActor checks or folds for a human who ran out of time.
func (gs *GameService) timeoutActor(r *room.Room, now time.Time) (func(), error) {
	actor := r.Actor()
	action := r.DefaultAction(actor.ID)
	if err := r.Apply(actor.ID, action, now); err != nil {
		return nil, err
	}
	gs.logger.Info("Turn timed out", "room", r.Code, "player", actor.Name, "action", action.Kind)
	return func() {
		gs.broadcastState(r, MessageTypeGameUpdate)
		gs.broadcastHandEnd(r)
	}, nil
}

// broadcastState sends every seated human their own view of r.
func (gs *GameService) broadcastState(r *room.Room, typ MessageType) {
	gs.broadcast(r, typ, "", func(viewer string) any {
		return GameStateData{State: r.ViewFor(viewer)}
	})
}

// broadcastHandEnd announces a finished hand, if r just finished one.
func (gs *GameService) broadcastHandEnd(r *room.Room) {
	if r.Phase != room.PhaseShowdown || r.LastResult == nil {
		return
	}
	typ := MessageTypeRoundEnd
	if r.LastResult.Reason == room.EndShowdown {
		typ = MessageTypeShowdown
	}
	winners := r.Winners()
	gs.logger.Info("Hand finished", "room", r.Code, "hand", r.HandNumber, "reason", r.LastResult.Reason, "pot", r.LastResult.Pot)
	gs.broadcast(r, typ, "", func(viewer string) any {
		return HandEndData{Result: r.LastResult, Winners: winners, State: r.ViewFor(viewer)}
	})
}

// broadcast sends a per-viewer payload to every connected human except skip.
func (gs *GameService) broadcast(r *room.Room, typ MessageType, skip string, payload func(viewer string) any) {
	now := gs.clock.Now()
	for _, p := range r.Players {
		if p.IsAI || !p.Connected || p.ID == skip {
			continue
		}
		msg, err := NewMessage(typ, payload(p.ID), now)
		if err != nil {
			gs.logger.Error("Failed to create message", "type", typ, "error", err)
			continue
		}
		if err := gs.broadcaster.SendToPlayer(r.Code, p.ID, msg); err != nil {
			gs.logger.Debug("Failed to deliver message", "room", r.Code, "player", p.Name, "type", typ, "error", err)
		}
	}
}

func (gs *GameService) reply(c Client, typ MessageType, data any) error {
	msg, err := NewMessage(typ, data, gs.clock.Now())
	if err != nil {
		return err
	}
	return c.Send(msg)
}
