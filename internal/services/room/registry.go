package room

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/bingoparty/bingoparty-go/internal/dependencies/clock"
	"github.com/bingoparty/bingoparty-go/internal/dependencies/random"
	"github.com/bingoparty/bingoparty-go/internal/model"
	"github.com/bingoparty/bingoparty-go/internal/storage"
)

const (
	// JoinCodeLength is the length of generated join codes
	JoinCodeLength = 5
	// JoinCodeAlphabet is the characters used in join codes (avoid confusing chars)
	JoinCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	// TitleMaxLength is the maximum room title length
	TitleMaxLength = 255
)

// PrePopulateMode selects how the option pool is seeded at room creation
type PrePopulateMode string

const (
	PrePopulateOff          PrePopulateMode = "off"
	PrePopulatePlaceholders PrePopulateMode = "placeholders"
	PrePopulateAI           PrePopulateMode = "ai_gen"
)

// OptionGenerator produces themed bingo options from an external service
type OptionGenerator interface {
	GenerateOptions(ctx context.Context, theme string) ([]string, error)
}

// Registry manages room lifecycle and the shared option pool
type Registry struct {
	storage   storage.Storage
	generator OptionGenerator
	clock     clock.Clock
	random    random.Random

	// Per-room locks serialize pool/status read-modify-write cycles so
	// concurrent mutations cannot lose updates. Entries are refcounted
	// and dropped once the last holder releases, so the map stays
	// bounded by in-flight operations rather than rooms ever seen.
	locksMu sync.Mutex
	locks   map[model.RoomID]*roomLock
}

type roomLock struct {
	mu   sync.Mutex
	refs int
}

// NewRegistry creates a new room Registry. generator may be nil if AI
// pre-population is not configured.
func NewRegistry(storage storage.Storage, generator OptionGenerator, clock clock.Clock, random random.Random) *Registry {
	return &Registry{
		storage:   storage,
		generator: generator,
		clock:     clock,
		random:    random,
		locks:     make(map[model.RoomID]*roomLock),
	}
}

// acquireRoomLock takes the mutation lock for a room, creating the entry
// on first use. The refcount is bumped before blocking so a waiter's
// entry can never be dropped out from under it.
func (r *Registry) acquireRoomLock(id model.RoomID) *roomLock {
	r.locksMu.Lock()
	l, ok := r.locks[id]
	if !ok {
		l = &roomLock{}
		r.locks[id] = l
	}
	l.refs++
	r.locksMu.Unlock()

	l.mu.Lock()
	return l
}

// releaseRoomLock unlocks and drops the map entry once nobody holds or
// waits on it
func (r *Registry) releaseRoomLock(id model.RoomID, l *roomLock) {
	l.mu.Unlock()

	r.locksMu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(r.locks, id)
	}
	r.locksMu.Unlock()
}

// CreateRoom creates a new room with a unique join code. The option pool
// is seeded according to mode: left empty, filled with 24 placeholders,
// or generated from the title by the external generator service.
func (r *Registry) CreateRoom(ctx context.Context, title string, mode PrePopulateMode) (*model.Room, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", model.ErrValidation)
	}
	if len(title) > TitleMaxLength {
		return nil, fmt.Errorf("%w: title must be at most %d characters", model.ErrValidation, TitleMaxLength)
	}

	pool, err := r.seedPool(ctx, title, mode)
	if err != nil {
		return nil, err
	}

	// Generate unique join code, retrying on collision
	var code string
	for {
		code = r.random.String(JoinCodeLength, JoinCodeAlphabet)
		exists, err := r.storage.JoinCodeExists(ctx, code)
		if err != nil {
			return nil, err
		}
		if !exists {
			break
		}
	}

	now := r.clock.Now()
	room := &model.Room{
		ID:           model.RoomID(uuid.NewString()),
		JoinCode:     code,
		Title:        title,
		CreatorID:    nil, // set when the first player joins
		Status:       model.RoomStatusLobby,
		IsOpen:       true,
		OptionsPool:  pool,
		CreatedAt:    now,
		LastActivity: now,
	}

	if err := r.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	return room, nil
}

// seedPool builds the initial option pool for the given mode
func (r *Registry) seedPool(ctx context.Context, title string, mode PrePopulateMode) ([]string, error) {
	switch mode {
	case PrePopulatePlaceholders:
		return PlaceholderOptions(model.PoolMinimum), nil
	case PrePopulateAI:
		if r.generator == nil {
			return nil, model.ErrGeneratorUnavailable
		}
		options, err := r.generator.GenerateOptions(ctx, title)
		if err != nil {
			return nil, err
		}
		return options, nil
	default:
		return []string{}, nil
	}
}

// PlaceholderOptions returns n generic "Option N" strings
func PlaceholderOptions(n int) []string {
	options := make([]string, n)
	for i := range options {
		options[i] = fmt.Sprintf("Option %d", i+1)
	}
	return options
}

// GetByID retrieves a room by its identifier
func (r *Registry) GetByID(ctx context.Context, id model.RoomID) (*model.Room, error) {
	return r.storage.GetRoom(ctx, id)
}

// GetByJoinCode retrieves a room by join code, case-insensitively
func (r *Registry) GetByJoinCode(ctx context.Context, code string) (*model.Room, error) {
	return r.storage.GetRoomByJoinCode(ctx, code)
}

// Close marks a room as no longer accepting new players. Idempotent.
func (r *Registry) Close(ctx context.Context, id model.RoomID) error {
	l := r.acquireRoomLock(id)
	defer r.releaseRoomLock(id, l)

	room, err := r.storage.GetRoom(ctx, id)
	if err != nil {
		return err
	}

	room.IsOpen = false
	room.LastActivity = r.clock.Now()
	return r.storage.SaveRoom(ctx, room)
}

// AddOption appends an option to the room's pool. Fails once the room
// has left the lobby phase.
func (r *Registry) AddOption(ctx context.Context, id model.RoomID, option string) (*model.Room, error) {
	l := r.acquireRoomLock(id)
	defer r.releaseRoomLock(id, l)

	room, err := r.storage.GetRoom(ctx, id)
	if err != nil {
		return nil, err
	}

	if room.Status != model.RoomStatusLobby {
		return nil, model.ErrRoomNotInLobby
	}

	room.OptionsPool = append(room.OptionsPool, option)
	room.LastActivity = r.clock.Now()
	if err := r.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

// RemoveOption removes all pool entries equal to option. Value-based
// removal is deliberate: duplicates are filtered out together.
func (r *Registry) RemoveOption(ctx context.Context, id model.RoomID, option string) (*model.Room, error) {
	l := r.acquireRoomLock(id)
	defer r.releaseRoomLock(id, l)

	room, err := r.storage.GetRoom(ctx, id)
	if err != nil {
		return nil, err
	}

	if room.Status != model.RoomStatusLobby {
		return nil, model.ErrRoomNotInLobby
	}

	filtered := make([]string, 0, len(room.OptionsPool))
	for _, opt := range room.OptionsPool {
		if opt != option {
			filtered = append(filtered, opt)
		}
	}
	room.OptionsPool = filtered
	room.LastActivity = r.clock.Now()
	if err := r.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

// CanCreateCards reports whether the room's pool and status allow card creation
func (r *Registry) CanCreateCards(ctx context.Context, id model.RoomID) (bool, error) {
	room, err := r.storage.GetRoom(ctx, id)
	if err != nil {
		return false, err
	}
	return room.CanCreateCards(), nil
}

// WithRoomLock runs fn while holding the room's mutation lock. Used by
// the card engine so bulk card creation and the LOBBY->PLAYING flip are
// serialized against pool mutations.
func (r *Registry) WithRoomLock(id model.RoomID, fn func() error) error {
	l := r.acquireRoomLock(id)
	defer r.releaseRoomLock(id, l)
	return fn()
}

// PlayerState pairs a player with their card (nil before card creation)
type PlayerState struct {
	Player *model.Player
	Card   *model.Card
}

// Snapshot is a consistent view of a room with all players and their
// cards, spaces ordered by position. This is the "room state" sent to
// clients on join and reconnection.
type Snapshot struct {
	Room    *model.Room
	Players []PlayerState
}

// Snapshot assembles the full room state for the given room id
func (r *Registry) Snapshot(ctx context.Context, id model.RoomID) (*Snapshot, error) {
	room, err := r.storage.GetRoom(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.snapshotRoom(ctx, room)
}

// SnapshotByJoinCode assembles the full room state looked up by join code
func (r *Registry) SnapshotByJoinCode(ctx context.Context, code string) (*Snapshot, error) {
	room, err := r.storage.GetRoomByJoinCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return r.snapshotRoom(ctx, room)
}

func (r *Registry) snapshotRoom(ctx context.Context, room *model.Room) (*Snapshot, error) {
	players, err := r.storage.ListPlayersInRoom(ctx, room.ID)
	if err != nil {
		return nil, err
	}

	states := make([]PlayerState, 0, len(players))
	for _, p := range players {
		card, err := r.storage.GetCardForPlayer(ctx, p.ID)
		if err != nil {
			if !errors.Is(err, model.ErrCardNotFound) {
				return nil, err
			}
			card = nil
		}
		states = append(states, PlayerState{Player: p, Card: card})
	}

	return &Snapshot{Room: room, Players: states}, nil
}
