package factory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/bingoparty/bingoparty-go/internal/model"
	"github.com/bingoparty/bingoparty-go/internal/services/room"
)

type IntegrationSuite struct {
	suite.Suite
	ctx context.Context
	app *TestApp
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.ctx = context.Background()
	s.app = NewTestApp()
}

func TestNewWiresMemoryApp(t *testing.T) {
	app, err := New(Config{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if app.Storage == nil || app.Rooms == nil || app.Players == nil ||
		app.Cards == nil || app.Chat == nil || app.HubManager == nil || app.Gateway == nil {
		t.Fatal("app has unwired components")
	}
	if app.Generator != nil {
		t.Fatal("generator should be nil without config")
	}
}

func TestNewRejectsUnknownStorageType(t *testing.T) {
	_, err := New(Config{StorageType: "carrier-pigeon"})
	if err == nil {
		t.Fatal("expected error for unknown storage type")
	}
}

func (s *IntegrationSuite) TestGeneratorModeFailsWhenUnconfigured() {
	_, err := s.app.Rooms.CreateRoom(s.ctx, "Trivia Night", room.PrePopulateAI)
	s.Require().ErrorIs(err, model.ErrGeneratorUnavailable)
}

// TestFullGameFlow drives a complete game through the wired services:
// create, join, build the pool, deal, mark to a win, chat, close.
func (s *IntegrationSuite) TestFullGameFlow() {
	// Create a room and have two players join
	created, err := s.app.Rooms.CreateRoom(s.ctx, "Movie Night", room.PrePopulateOff)
	s.Require().NoError(err)

	alice, err := s.app.Players.Join(s.ctx, created.ID, "Alice", "")
	s.Require().NoError(err)
	s.app.MockClock.Advance(time.Second)
	bob, err := s.app.Players.Join(s.ctx, created.ID, "Bob", "")
	s.Require().NoError(err)

	snap, err := s.app.Rooms.Snapshot(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Require().Len(snap.Players, 2)
	s.Require().NotNil(snap.Room.CreatorID)
	s.Equal(alice.ID, *snap.Room.CreatorID)

	// Build up the option pool
	for i := 1; i <= model.PoolMinimum; i++ {
		_, err := s.app.Rooms.AddOption(s.ctx, created.ID, fmt.Sprintf("someone quotes line %d", i))
		s.Require().NoError(err)
	}

	ok, err := s.app.Rooms.CanCreateCards(s.ctx, created.ID)
	s.Require().NoError(err)
	s.True(ok)

	// Deal cards; free space for both cards at the center
	s.app.MockRandom.QueueIntn(12, 12)
	s.Require().NoError(s.app.Cards.CreateCardsForRoom(s.ctx, created.ID))

	got, err := s.app.Rooms.GetByID(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(model.RoomStatusPlaying, got.Status)

	aliceCard, err := s.app.Storage.GetCardForPlayer(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.True(aliceCard.SpaceAt(12).IsFreeSpace)

	// Alice marks the middle row; the free space fills the gap
	for _, pos := range []int{10, 11, 13} {
		_, won, err := s.app.Cards.MarkSpace(s.ctx, aliceCard.ID, pos)
		s.Require().NoError(err)
		s.False(won)
	}
	_, won, err := s.app.Cards.MarkSpace(s.ctx, aliceCard.ID, 14)
	s.Require().NoError(err)
	s.True(won)

	// Chat works throughout
	msg, err := s.app.Chat.Append(s.ctx, created.ID, bob.ID, bob.Name, "nice one!")
	s.Require().NoError(err)
	s.Equal("Bob", msg.PlayerName)

	history, err := s.app.Chat.History(s.ctx, created.ID, 0)
	s.Require().NoError(err)
	s.Require().Len(history, 1)

	// Close the room; nobody else can join
	s.Require().NoError(s.app.Rooms.Close(s.ctx, created.ID))
	_, err = s.app.Players.Join(s.ctx, created.ID, "Carol", "")
	s.Require().ErrorIs(err, model.ErrRoomClosed)
}

// TestLateJoinerGetsCard covers the mid-game join path end to end
func (s *IntegrationSuite) TestLateJoinerGetsCard() {
	created, err := s.app.Rooms.CreateRoom(s.ctx, "Movie Night", room.PrePopulatePlaceholders)
	s.Require().NoError(err)

	_, err = s.app.Players.Join(s.ctx, created.ID, "Alice", "")
	s.Require().NoError(err)
	s.Require().NoError(s.app.Cards.CreateCardsForRoom(s.ctx, created.ID))

	got, err := s.app.Rooms.GetByID(s.ctx, created.ID)
	s.Require().NoError(err)

	s.app.MockClock.Advance(time.Second)
	bob, err := s.app.Players.Join(s.ctx, created.ID, "Bob", "")
	s.Require().NoError(err)

	card, err := s.app.Cards.CreateCardForPlayer(s.ctx, bob.ID, created.ID, got.OptionsPool)
	s.Require().NoError(err)
	s.Len(card.Spaces, model.SpaceCount)

	cards, err := s.app.Cards.ListCardsInRoom(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Len(cards, 2)
}
