// Package room implements the per-room game session state machine: user
// membership, grid placement, round lifecycle, and the ordered outbound
// notifications each transition produces.
package room

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/oxquiz/oxquiz/internal/game/character"
	"github.com/oxquiz/oxquiz/internal/game/grid"
	"github.com/oxquiz/oxquiz/internal/game/nickname"
	"github.com/oxquiz/oxquiz/internal/game/quiz"
	"github.com/oxquiz/oxquiz/internal/game/referee"
)

// State is the room's lifecycle phase.
type State int

const (
	// StateLobby: game not started, free-roam movement, joiners are placed
	// immediately.
	StateLobby State = iota
	// StateInRound: a round is active and the countdown is running.
	StateInRound
	// StateRoundResolving: transient, while elimination bookkeeping runs.
	StateRoundResolving
)

// ErrRoomFull is returned when a join would exceed the member limit.
var ErrRoomFull = errors.New("room is full")

// Config holds per-room game parameters.
type Config struct {
	// Columns and Rows are the grid dimensions.
	Columns int
	Rows    int
	// TimeLimit is the round length in seconds.
	TimeLimit int
	// TickInterval is the wall-clock length of one countdown second.
	TickInterval time.Duration
	// MaxUsers caps room membership. Must not exceed Columns*Rows.
	MaxUsers int
	// MaxRounds ends the game after that many rounds; 0 = unlimited.
	MaxRounds int
}

// Room is one isolated game session. All state mutations are serialized by
// the room mutex; the countdown tick re-enters through the same lock, so
// join/leave/move/tick never interleave on the grid or roster.
type Room struct {
	id   string
	name string

	mu           sync.Mutex
	state        State
	epoch        uint64 // bumped per game; stale ticks carry the old value
	currentRound int
	currentQuiz  quiz.Quiz
	currentTime  int
	order        []string // user IDs in join order; order[0] is the owner
	characters   map[string]*character.Character
	grid         *grid.Grid
	pool         *nickname.Pool
	supply       *quiz.Supply
	referee      referee.Referee
	ticker       *RoundTicker
	sink         EventSink
	cfg          Config
	logger       *zap.Logger
}

// New creates a Room in the lobby state.
//
// Precondition: id must be unique; all collaborators must be non-nil;
// cfg.MaxUsers <= cfg.Columns*cfg.Rows.
func New(id, name string, cfg Config, g *grid.Grid, pool *nickname.Pool, supply *quiz.Supply, ref referee.Referee, sink EventSink, logger *zap.Logger) *Room {
	return &Room{
		id:         id,
		name:       name,
		state:      StateLobby,
		characters: make(map[string]*character.Character),
		grid:       g,
		pool:       pool,
		supply:     supply,
		referee:    ref,
		ticker:     NewRoundTicker(),
		sink:       sink,
		cfg:        cfg,
		logger:     logger.With(zap.String("room_id", id)),
	}
}

// ID returns the room identifier.
func (r *Room) ID() string { return r.id }

// Name returns the display name.
func (r *Room) Name() string { return r.name }

// State returns the current lifecycle phase.
func (r *Room) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// UserCount returns the number of joined users.
func (r *Room) UserCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

// Empty reports whether the room has no members and is eligible for
// teardown by its manager.
func (r *Room) Empty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order) == 0
}

// CanEnter reports whether a new user may join right now.
func (r *Room) CanEnter() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state == StateLobby && len(r.order) < r.cfg.MaxUsers
}

// OwnerID returns the user ID of the current owner (earliest-joined member
// still present), or "" for an empty room. Ownership is always recomputed
// from join order, never cached.
func (r *Room) OwnerID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ownerID()
}

// Join registers a user, assigns a nickname, places their character when the
// game has not started, and emits the roster delta to existing members
// followed by the full snapshot to the joiner.
//
// Postcondition: On error (full room, nickname provider failure) the room
// state is unchanged and nothing is emitted.
func (r *Room) Join(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.characters[userID]; exists {
		return nil
	}
	if len(r.order) >= r.cfg.MaxUsers {
		return ErrRoomFull
	}

	// The nickname fetch may hit the provider; do it before any mutation so
	// a failure leaves the room untouched.
	nick, err := r.pool.Take(ctx)
	if err != nil {
		return err
	}

	c := character.New(userID)
	c.Nickname = nick
	if r.state == StateLobby {
		x, y, err := r.grid.ReserveRandomEmptyCell(userID)
		if err != nil {
			// MaxUsers <= cell count makes this unreachable, but a
			// misconfigured room must not loop or crash: the character
			// simply stays unplaced until the next round reset.
			r.logger.Warn("no empty cell for joining user", zap.String("user_id", userID), zap.Error(err))
		} else {
			c.PlaceAt(x, y)
		}
	}

	r.order = append(r.order, userID)
	r.characters[userID] = c

	if c.Placed {
		entry := r.entryFor(c, "")
		r.sink.Broadcast(r.id, EventEnterNewUser, EnterNewUserPayload{
			CharacterList: []CharacterEntry{entry},
		}, userID)
	}

	payload := EnterRoomPayload{
		CharacterList: r.makeCharacterList(userID),
		IsGameStarted: r.state != StateLobby,
		IsOwner:       r.ownerID() == userID,
	}
	if r.state != StateLobby {
		payload.Question = r.currentQuiz.Question
		payload.TimeLimit = r.cfg.TimeLimit - r.currentTime
	}
	r.sink.Send(userID, EventEnterRoom, payload)

	r.logger.Info("user joined",
		zap.String("user_id", userID),
		zap.String("nickname", nick),
		zap.Int("members", len(r.order)),
	)
	return nil
}

// Leave removes a user, vacates their cell, returns their nickname to the
// pool, and notifies remaining members. Unknown users are ignored.
//
// Postcondition: The room may become Empty; teardown is the manager's job.
func (r *Room) Leave(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, exists := r.characters[userID]
	if !exists {
		return
	}

	wasOwner := r.ownerID() == userID

	if c.Placed {
		r.grid.Clear(c.X, c.Y)
		c.Unplace()
	}
	r.pool.Release(c.Nickname)
	delete(r.characters, userID)
	for i, id := range r.order {
		if id == userID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	r.sink.Broadcast(r.id, EventLeaveUser, LeaveUserPayload{
		Nickname: c.Nickname,
		IsOwner:  wasOwner,
	}, userID)

	if len(r.order) == 0 {
		r.ticker.Stop()
	}

	r.logger.Info("user left",
		zap.String("user_id", userID),
		zap.Bool("was_owner", wasOwner),
		zap.Int("members", len(r.order)),
	)
}

// StartGame begins the first round. Only the owner may start, and only from
// the lobby; any other request is silently ignored.
//
// Postcondition: On a quiz-supply failure the room stays in the lobby,
// unchanged, and the error is returned to the initiating flow.
func (r *Room) StartGame(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateLobby || r.ownerID() != userID {
		return nil
	}

	// Pull the first quiz before flipping any state so a provider failure
	// leaves the lobby intact.
	q, err := r.supply.Next(ctx, 0)
	if err != nil {
		r.logger.Error("cannot start game", zap.Error(err))
		return err
	}

	r.epoch++
	r.currentRound = 0
	r.beginRound(q)
	r.logger.Info("game started", zap.String("owner", userID))
	return nil
}

// Move shifts the user's character one cell in the given direction. Moves by
// unplaced characters, out-of-bounds moves, and moves into occupied cells
// are silently dropped with no broadcast.
func (r *Room) Move(userID string, dir Direction) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, exists := r.characters[userID]
	if !exists || !c.Placed {
		return
	}

	x, y := c.X, c.Y
	switch dir {
	case DirectionLeft:
		x--
	case DirectionRight:
		x++
	case DirectionUp:
		y--
	case DirectionDown:
		y++
	default:
		return
	}

	if !r.grid.CanMoveTo(x, y) {
		return
	}
	r.grid.Move(userID, c.X, c.Y, x, y)
	c.MoveTo(x, y)

	r.sink.Broadcast(r.id, EventMove, MovePayload{
		Nickname:  c.Nickname,
		Direction: dir,
	}, "")
}

// Chat relays a message from a member to the whole room. Unknown senders are
// ignored.
func (r *Room) Chat(userID, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, exists := r.characters[userID]
	if !exists {
		return
	}
	r.sink.Broadcast(r.id, EventChatMessage, ChatMessagePayload{
		Nickname: c.Nickname,
		Message:  message,
	}, "")
}

// Close stops the countdown so no pending tick fires after teardown.
func (r *Room) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ticker.Stop()
}

// beginRound starts a round for the already-selected quiz: resets the
// countdown and the grid, revives and re-places every member (the round
// reset is when last round's eliminated and mid-round joiners come back
// onto the board), emits start_round, and arms the ticker. Caller holds
// r.mu.
func (r *Room) beginRound(q quiz.Quiz) {
	r.state = StateInRound
	r.currentQuiz = q
	r.currentTime = 0

	r.grid.Reset()
	locations := make([]CharacterLocation, 0, len(r.order))
	for _, id := range r.order {
		c := r.characters[id]
		x, y, err := r.grid.ReserveRandomEmptyCell(id)
		if err != nil {
			r.logger.Warn("no empty cell at round start", zap.String("user_id", id), zap.Error(err))
			c.Unplace()
			continue
		}
		c.PlaceAt(x, y)
		locations = append(locations, CharacterLocation{UserID: id, IndexX: x, IndexY: y})
	}

	r.sink.Broadcast(r.id, EventStartRound, StartRoundPayload{
		Round:              r.currentRound,
		Question:           q.Question,
		CharacterLocations: locations,
		TimeLimit:          r.cfg.TimeLimit,
	}, "")

	epoch, round := r.epoch, r.currentRound
	r.ticker.Arm(r.cfg.TickInterval, func() { r.tick(epoch, round) })

	r.logger.Info("round started",
		zap.Int("round", r.currentRound),
		zap.Int64("quiz_id", q.ID),
	)
}

// tick advances the countdown by one second. Stale ticks are discarded: the
// round check alone is not enough because a new game restarts at round 0, so
// a tick that survived the ticker's liveness check while blocked on the
// mutex must also carry the current game's epoch.
func (r *Room) tick(epoch uint64, round int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateInRound || r.epoch != epoch || r.currentRound != round {
		return
	}

	r.currentTime++
	if r.currentTime < r.cfg.TimeLimit {
		r.ticker.Arm(r.cfg.TickInterval, func() { r.tick(epoch, round) })
		return
	}
	r.resolveRound()
}

// resolveRound applies elimination, emits end_round, and either begins the
// next round or ends the game. Caller holds r.mu.
func (r *Room) resolveRound() {
	r.state = StateRoundResolving

	// Only placed characters played the round; eliminated members and
	// mid-round joiners are not judged.
	eliminated := make([]string, 0)
	survivors := 0
	for _, id := range r.order {
		c := r.characters[id]
		if !c.Placed {
			continue
		}
		if r.referee.Survives(r.currentQuiz, c) {
			survivors++
			continue
		}
		c.Eliminate()
		r.grid.Clear(c.X, c.Y)
		c.Unplace()
		eliminated = append(eliminated, c.Nickname)
	}

	r.sink.Broadcast(r.id, EventEndRound, EndRoundPayload{
		Answer:     r.currentQuiz.Answer,
		Eliminated: eliminated,
	}, "")

	r.currentRound++
	r.logger.Info("round resolved",
		zap.Int("round", r.currentRound-1),
		zap.Int("survivors", survivors),
		zap.Int("eliminated", len(eliminated)),
	)

	if survivors <= 1 {
		r.endGame()
		return
	}
	if r.cfg.MaxRounds > 0 && r.currentRound >= r.cfg.MaxRounds {
		r.endGame()
		return
	}

	q, err := r.supply.Next(context.Background(), r.currentRound)
	if err != nil {
		// Exhausted supply (or a provider outage at rollover) ends the
		// game rather than stalling the room mid-round.
		if !errors.Is(err, quiz.ErrSupplyExhausted) {
			r.logger.Error("quiz fetch failed at round rollover", zap.Error(err))
		}
		r.endGame()
		return
	}
	r.beginRound(q)
}

// endGame returns the room to the lobby and announces the winner: the
// earliest-joined member still alive, falling back to the earliest-joined
// member when nobody survived. Every member is revived and placed back on
// the board for lobby free-roam. Caller holds r.mu.
func (r *Room) endGame() {
	r.ticker.Stop()
	r.state = StateLobby

	winner := ""
	for _, id := range r.order {
		if c := r.characters[id]; c.Alive {
			winner = c.Nickname
			break
		}
	}
	if winner == "" && len(r.order) > 0 {
		winner = r.characters[r.order[0]].Nickname
	}

	r.grid.Reset()
	for _, id := range r.order {
		c := r.characters[id]
		x, y, err := r.grid.ReserveRandomEmptyCell(id)
		if err != nil {
			r.logger.Warn("no empty cell at game end", zap.String("user_id", id), zap.Error(err))
			c.Unplace()
			continue
		}
		c.PlaceAt(x, y)
	}

	r.sink.Broadcast(r.id, EventEndGame, EndGamePayload{
		WinnerNickname: winner,
		CharacterList:  r.makeCharacterList(""),
		IsGameStarted:  false,
	}, "")

	r.logger.Info("game ended", zap.String("winner", winner))
}

// ownerID returns order[0] or "". Caller holds r.mu.
func (r *Room) ownerID() string {
	if len(r.order) == 0 {
		return ""
	}
	return r.order[0]
}

// makeCharacterList builds the roster of placed characters in join order.
// Caller holds r.mu.
func (r *Room) makeCharacterList(myID string) []CharacterEntry {
	list := make([]CharacterEntry, 0, len(r.order))
	for _, id := range r.order {
		c := r.characters[id]
		if !c.Placed {
			continue
		}
		list = append(list, r.entryFor(c, myID))
	}
	return list
}

func (r *Room) entryFor(c *character.Character, myID string) CharacterEntry {
	return CharacterEntry{
		UserID:   c.UserID,
		Nickname: c.Nickname,
		IndexX:   c.X,
		IndexY:   c.Y,
		IsMine:   c.UserID == myID && myID != "",
	}
}
