package player

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/bingoparty/bingoparty-go/internal/dependencies/clock"
	"github.com/bingoparty/bingoparty-go/internal/model"
	"github.com/bingoparty/bingoparty-go/internal/storage"
)

// NameMaxLength is the maximum player display name length
const NameMaxLength = 50

// sessionTokenBytes is the entropy of a session token (256 bits)
const sessionTokenBytes = 32

// Registry manages players scoped to a room. Identity is the session
// token issued at join time; there is no other credential.
type Registry struct {
	storage storage.Storage
	clock   clock.Clock
}

// NewRegistry creates a new player Registry
func NewRegistry(storage storage.Storage, clock clock.Clock) *Registry {
	return &Registry{
		storage: storage,
		clock:   clock,
	}
}

// Join adds a player to an open room, issuing a fresh session token.
// The first player to join becomes the room's creator.
func (r *Registry) Join(ctx context.Context, roomID model.RoomID, name, avatarURL string) (*model.Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", model.ErrValidation)
	}
	if len(name) > NameMaxLength {
		return nil, fmt.Errorf("%w: name must be at most %d characters", model.ErrValidation, NameMaxLength)
	}
	if avatarURL != "" {
		u, err := url.Parse(avatarURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("%w: avatar URL is not a valid URL", model.ErrValidation)
		}
	}

	room, err := r.storage.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.IsOpen {
		return nil, model.ErrRoomClosed
	}

	token, err := generateSessionToken()
	if err != nil {
		return nil, err
	}

	now := r.clock.Now()
	player := &model.Player{
		ID:           model.PlayerID(uuid.NewString()),
		RoomID:       roomID,
		Name:         name,
		SessionToken: token,
		AvatarURL:    avatarURL,
		LastSeen:     now,
		CreatedAt:    now,
	}

	if err := r.storage.SavePlayer(ctx, player); err != nil {
		return nil, err
	}

	// First joiner becomes the creator
	players, err := r.storage.ListPlayersInRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if len(players) == 1 {
		room.CreatorID = &player.ID
		if err := r.storage.SaveRoom(ctx, room); err != nil {
			return nil, err
		}
	}

	return player, nil
}

// GetBySessionToken resolves a player from their bearer token. Returns
// model.ErrPlayerNotFound for unknown tokens; callers treat that as an
// invalid session, not a server fault.
func (r *Registry) GetBySessionToken(ctx context.Context, token string) (*model.Player, error) {
	return r.storage.GetPlayerBySessionToken(ctx, token)
}

// GetByID retrieves a player by identifier
func (r *Registry) GetByID(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	return r.storage.GetPlayer(ctx, id)
}

// TouchLastSeen updates the player's last-seen timestamp to now
func (r *Registry) TouchLastSeen(ctx context.Context, id model.PlayerID) error {
	player, err := r.storage.GetPlayer(ctx, id)
	if err != nil {
		return err
	}
	player.LastSeen = r.clock.Now()
	return r.storage.SavePlayer(ctx, player)
}

// BelongsToRoom reports whether the token resolves to a player of the
// given room. Unknown tokens resolve to false.
func (r *Registry) BelongsToRoom(ctx context.Context, token string, roomID model.RoomID) (*model.Player, error) {
	player, err := r.storage.GetPlayerBySessionToken(ctx, token)
	if err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}
	if player.RoomID != roomID {
		return nil, model.ErrPlayerNotFound
	}
	return player, nil
}

// generateSessionToken returns 32 bytes of crypto randomness hex-encoded
func generateSessionToken() (string, error) {
	b := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
