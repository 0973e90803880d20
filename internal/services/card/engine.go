package card

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/bingoparty/bingoparty-go/internal/dependencies/clock"
	"github.com/bingoparty/bingoparty-go/internal/dependencies/random"
	"github.com/bingoparty/bingoparty-go/internal/model"
	"github.com/bingoparty/bingoparty-go/internal/storage"
)

// RoomLocker serializes mutations of a single room. The room registry
// provides this so bulk card creation and pool edits cannot interleave.
type RoomLocker interface {
	WithRoomLock(id model.RoomID, fn func() error) error
}

// Engine generates and mutates bingo cards and runs win detection
type Engine struct {
	storage storage.Storage
	locker  RoomLocker
	clock   clock.Clock
	random  random.Random
}

// NewEngine creates a new card Engine
func NewEngine(storage storage.Storage, locker RoomLocker, clock clock.Clock, random random.Random) *Engine {
	return &Engine{
		storage: storage,
		locker:  locker,
		clock:   clock,
		random:  random,
	}
}

// CreateCardsForRoom generates one card per current player and flips the
// room to PLAYING. The status check runs under the room lock, so a
// concurrent second invocation fails instead of double-creating cards.
func (e *Engine) CreateCardsForRoom(ctx context.Context, roomID model.RoomID) error {
	return e.locker.WithRoomLock(roomID, func() error {
		room, err := e.storage.GetRoom(ctx, roomID)
		if err != nil {
			return err
		}

		if room.Status != model.RoomStatusLobby {
			return model.ErrCardsAlreadyCreated
		}
		if len(room.OptionsPool) < model.PoolMinimum {
			return model.ErrPoolTooSmall
		}

		players, err := e.storage.ListPlayersInRoom(ctx, roomID)
		if err != nil {
			return err
		}

		for _, p := range players {
			if _, err := e.createCard(ctx, p.ID, roomID, room.OptionsPool); err != nil {
				return err
			}
		}

		room.Status = model.RoomStatusPlaying
		room.LastActivity = e.clock.Now()
		return e.storage.SaveRoom(ctx, room)
	})
}

// CreateCardForPlayer generates a single card for a player, used for
// late joiners while the room is already PLAYING.
func (e *Engine) CreateCardForPlayer(ctx context.Context, playerID model.PlayerID, roomID model.RoomID, pool []string) (*model.Card, error) {
	if len(pool) < model.PoolMinimum {
		return nil, model.ErrPoolTooSmall
	}
	return e.createCard(ctx, playerID, roomID, pool)
}

// createCard builds and persists one card: a uniformly random free-space
// position, then the first 24 entries of a Fisher-Yates shuffled pool
// filling the remaining positions left-to-right, top-to-bottom.
func (e *Engine) createCard(ctx context.Context, playerID model.PlayerID, roomID model.RoomID, pool []string) (*model.Card, error) {
	freePosition := e.random.Intn(model.SpaceCount)
	options := e.random.Shuffle(pool)[:model.SpaceCount-1]

	spaces := make([]model.CardSpace, 0, model.SpaceCount)
	optionIndex := 0
	for position := 0; position < model.SpaceCount; position++ {
		if position == freePosition {
			spaces = append(spaces, model.CardSpace{
				Position:    position,
				OptionText:  model.FreeSpaceLabel,
				IsFreeSpace: true,
				IsMarked:    true, // free space is auto-marked
			})
			continue
		}
		spaces = append(spaces, model.CardSpace{
			Position:   position,
			OptionText: options[optionIndex],
		})
		optionIndex++
	}

	card := &model.Card{
		ID:        model.CardID(uuid.NewString()),
		PlayerID:  playerID,
		RoomID:    roomID,
		Spaces:    spaces,
		CreatedAt: e.clock.Now(),
	}

	if err := e.storage.SaveCard(ctx, card); err != nil {
		return nil, err
	}
	return card, nil
}

// MarkSpace marks a space and reports whether the card now has a winning
// line. Marking an already-marked space succeeds and changes nothing.
// The card is persisted as a whole, so the read-modify-write runs under
// the room lock to keep concurrent marks on the same card from losing
// each other.
func (e *Engine) MarkSpace(ctx context.Context, cardID model.CardID, position int) (*model.CardSpace, bool, error) {
	var result model.CardSpace
	var won bool
	err := e.withCardLock(ctx, cardID, func(card *model.Card) error {
		space := card.SpaceAt(position)
		if space == nil {
			return model.ErrSpaceNotFound
		}
		if space.IsFreeSpace {
			return model.ErrFreeSpace
		}

		space.IsMarked = true
		if err := e.storage.SaveCard(ctx, card); err != nil {
			return err
		}

		result = *space
		won = card.HasWin()
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &result, won, nil
}

// UnmarkSpace clears a space's mark. Unmarking an already-unmarked space
// succeeds and changes nothing.
func (e *Engine) UnmarkSpace(ctx context.Context, cardID model.CardID, position int) (*model.CardSpace, error) {
	var result model.CardSpace
	err := e.withCardLock(ctx, cardID, func(card *model.Card) error {
		space := card.SpaceAt(position)
		if space == nil {
			return model.ErrSpaceNotFound
		}
		if space.IsFreeSpace {
			return model.ErrFreeSpace
		}

		space.IsMarked = false
		if err := e.storage.SaveCard(ctx, card); err != nil {
			return err
		}

		result = *space
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// withCardLock resolves the card's room, takes that room's lock, and
// hands fn a fresh read of the card. The initial read only learns the
// room; RoomID never changes after creation.
func (e *Engine) withCardLock(ctx context.Context, cardID model.CardID, fn func(card *model.Card) error) error {
	card, err := e.storage.GetCard(ctx, cardID)
	if err != nil {
		return err
	}

	return e.locker.WithRoomLock(card.RoomID, func() error {
		card, err := e.storage.GetCard(ctx, cardID)
		if err != nil {
			return err
		}
		return fn(card)
	})
}

// CheckWin re-evaluates the card's grid from scratch
func (e *Engine) CheckWin(ctx context.Context, cardID model.CardID) (bool, error) {
	card, err := e.storage.GetCard(ctx, cardID)
	if err != nil {
		return false, err
	}
	return card.HasWin(), nil
}

// CardWithPlayer pairs a card with its owner's display name for the
// spectator "view all cards" feature
type CardWithPlayer struct {
	Card       *model.Card
	PlayerName string
}

// ListCardsInRoom returns every card in the room with owner names
func (e *Engine) ListCardsInRoom(ctx context.Context, roomID model.RoomID) ([]CardWithPlayer, error) {
	cards, err := e.storage.ListCardsInRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	result := make([]CardWithPlayer, 0, len(cards))
	for _, c := range cards {
		name := "Unknown"
		player, err := e.storage.GetPlayer(ctx, c.PlayerID)
		if err == nil {
			name = player.Name
		} else if !errors.Is(err, model.ErrPlayerNotFound) {
			return nil, err
		}
		result = append(result, CardWithPlayer{Card: c, PlayerName: name})
	}
	return result, nil
}
