package ws_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"

	"github.com/bingoparty/bingoparty-go/internal/api/response"
	"github.com/bingoparty/bingoparty-go/internal/factory"
	"github.com/bingoparty/bingoparty-go/internal/model"
	"github.com/bingoparty/bingoparty-go/internal/services/room"
	"github.com/bingoparty/bingoparty-go/internal/ws"
)

type GatewaySuite struct {
	suite.Suite
	ctx    context.Context
	app    *factory.TestApp
	server *httptest.Server
}

func TestGatewaySuite(t *testing.T) {
	suite.Run(t, new(GatewaySuite))
}

func (s *GatewaySuite) SetupTest() {
	s.ctx = context.Background()
	s.app = factory.NewTestApp()
	s.server = httptest.NewServer(http.HandlerFunc(s.app.Gateway.HandleWS))
}

func (s *GatewaySuite) TearDownTest() {
	s.server.Close()
}

func (s *GatewaySuite) dial() *websocket.Conn {
	url := "ws" + strings.TrimPrefix(s.server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err)
	s.T().Cleanup(func() { conn.Close() })
	return conn
}

func (s *GatewaySuite) send(conn *websocket.Conn, event string, payload any) {
	data, err := json.Marshal(payload)
	s.Require().NoError(err)
	s.Require().NoError(conn.WriteJSON(ws.Envelope{Event: event, Data: data}))
}

func (s *GatewaySuite) receive(conn *websocket.Conn) ws.Envelope {
	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(2 * time.Second)))
	var env ws.Envelope
	s.Require().NoError(conn.ReadJSON(&env))
	return env
}

func (s *GatewaySuite) receiveEvent(conn *websocket.Conn, event string, payload any) {
	env := s.receive(conn)
	s.Require().Equal(event, env.Event)
	if payload != nil {
		s.Require().NoError(json.Unmarshal(env.Data, payload))
	}
}

func (s *GatewaySuite) receiveError(conn *websocket.Conn) string {
	var p ws.ErrorPayload
	s.receiveEvent(conn, ws.EventError, &p)
	return p.Message
}

// createRoom creates a room seeded with placeholder options
func (s *GatewaySuite) createRoom() *model.Room {
	r, err := s.app.Rooms.CreateRoom(s.ctx, "Game Night", room.PrePopulatePlaceholders)
	s.Require().NoError(err)
	return r
}

func (s *GatewaySuite) joinPlayer(roomID model.RoomID, name string) *model.Player {
	pl, err := s.app.Players.Join(s.ctx, roomID, name, "")
	s.Require().NoError(err)
	return pl
}

// connect dials and completes the join-room handshake, consuming the
// game-state event
func (s *GatewaySuite) connect(roomID model.RoomID, pl *model.Player) *websocket.Conn {
	conn := s.dial()
	s.send(conn, ws.EventJoinRoom, ws.JoinRoomPayload{
		RoomID:       string(roomID),
		SessionToken: pl.SessionToken,
	})
	s.receiveEvent(conn, ws.EventGameState, nil)
	return conn
}

func (s *GatewaySuite) TestJoinRoomReceivesGameState() {
	r := s.createRoom()
	pl := s.joinPlayer(r.ID, "Alice")
	_, err := s.app.Chat.Append(s.ctx, r.ID, pl.ID, pl.Name, "hello room")
	s.Require().NoError(err)

	conn := s.dial()
	s.send(conn, ws.EventJoinRoom, ws.JoinRoomPayload{
		RoomID:       string(r.ID),
		SessionToken: pl.SessionToken,
	})

	var state response.GameState
	s.receiveEvent(conn, ws.EventGameState, &state)

	s.Equal(string(r.ID), state.ID)
	s.Equal("Game Night", state.Title)
	s.Len(state.OptionsPool, model.PoolMinimum)
	s.Require().Len(state.Players, 1)
	s.Equal("Alice", state.Players[0].Name)
	s.Require().Len(state.ChatHistory, 1)
	s.Equal("hello room", state.ChatHistory[0].Message)
}

func (s *GatewaySuite) TestJoinRoomInvalidToken() {
	r := s.createRoom()

	conn := s.dial()
	s.send(conn, ws.EventJoinRoom, ws.JoinRoomPayload{
		RoomID:       string(r.ID),
		SessionToken: "not-a-token",
	})

	s.Equal("Invalid session", s.receiveError(conn))
}

func (s *GatewaySuite) TestJoinRoomWrongRoom() {
	r := s.createRoom()
	pl := s.joinPlayer(r.ID, "Alice")

	conn := s.dial()
	s.send(conn, ws.EventJoinRoom, ws.JoinRoomPayload{
		RoomID:       "some-other-room",
		SessionToken: pl.SessionToken,
	})

	s.Equal("Invalid session", s.receiveError(conn))
}

func (s *GatewaySuite) TestJoinNotifiesOthersButNotSelf() {
	r := s.createRoom()
	alice := s.joinPlayer(r.ID, "Alice")
	aliceConn := s.connect(r.ID, alice)

	bob := s.joinPlayer(r.ID, "Bob")
	bobConn := s.dial()
	s.send(bobConn, ws.EventJoinRoom, ws.JoinRoomPayload{
		RoomID:       string(r.ID),
		SessionToken: bob.SessionToken,
	})

	var joined ws.PlayerJoinedPayload
	s.receiveEvent(aliceConn, ws.EventPlayerJoined, &joined)
	s.Equal(string(bob.ID), joined.PlayerID)
	s.Equal("Bob", joined.Name)

	// Bob's first message is the game state, not his own announcement
	var state response.GameState
	s.receiveEvent(bobConn, ws.EventGameState, &state)
	s.Len(state.Players, 2)
}

func (s *GatewaySuite) TestAddAndRemoveOptionBroadcast() {
	r, err := s.app.Rooms.CreateRoom(s.ctx, "Game Night", room.PrePopulateOff)
	s.Require().NoError(err)
	pl := s.joinPlayer(r.ID, "Alice")
	conn := s.connect(r.ID, pl)

	s.send(conn, ws.EventAddOption, ws.OptionPayload{RoomID: string(r.ID), Option: "double bingo"})

	var added ws.OptionEventPayload
	s.receiveEvent(conn, ws.EventOptionAdded, &added)
	s.Equal("double bingo", added.Option)

	got, err := s.app.Rooms.GetByID(s.ctx, r.ID)
	s.Require().NoError(err)
	s.Contains(got.OptionsPool, "double bingo")

	s.send(conn, ws.EventRemoveOption, ws.OptionPayload{RoomID: string(r.ID), Option: "double bingo"})

	var removed ws.OptionEventPayload
	s.receiveEvent(conn, ws.EventOptionRemoved, &removed)
	s.Equal("double bingo", removed.Option)

	got, err = s.app.Rooms.GetByID(s.ctx, r.ID)
	s.Require().NoError(err)
	s.NotContains(got.OptionsPool, "double bingo")
}

func (s *GatewaySuite) TestAddOptionValidationError() {
	r := s.createRoom()
	pl := s.joinPlayer(r.ID, "Alice")
	conn := s.connect(r.ID, pl)

	s.send(conn, ws.EventAddOption, ws.OptionPayload{RoomID: string(r.ID), Option: "   "})

	s.NotEmpty(s.receiveError(conn))
}

func (s *GatewaySuite) TestCreateCardsBroadcast() {
	r := s.createRoom()
	alice := s.joinPlayer(r.ID, "Alice")
	bob := s.joinPlayer(r.ID, "Bob")
	conn := s.connect(r.ID, alice)

	s.send(conn, ws.EventCreateCards, ws.CreateCardsPayload{RoomID: string(r.ID)})

	var created ws.CardsCreatedPayload
	s.receiveEvent(conn, ws.EventCardsCreated, &created)
	s.Require().Len(created.Players, 2)
	names := make([]string, 0, 2)
	for _, p := range created.Players {
		s.Require().NotNil(p.Card, "player %s has no card", p.Name)
		s.Len(p.Card.Spaces, model.SpaceCount)
		names = append(names, p.Name)
	}
	s.ElementsMatch([]string{alice.Name, bob.Name}, names)

	got, err := s.app.Rooms.GetByID(s.ctx, r.ID)
	s.Require().NoError(err)
	s.Equal(model.RoomStatusPlaying, got.Status)
}

func (s *GatewaySuite) TestCreateCardsPoolTooSmall() {
	r, err := s.app.Rooms.CreateRoom(s.ctx, "Game Night", room.PrePopulateOff)
	s.Require().NoError(err)
	pl := s.joinPlayer(r.ID, "Alice")
	conn := s.connect(r.ID, pl)

	s.send(conn, ws.EventCreateCards, ws.CreateCardsPayload{RoomID: string(r.ID)})

	s.Contains(s.receiveError(conn), "24 options")
}

// dealCards creates cards and returns the joined player's card
func (s *GatewaySuite) dealCards(conn *websocket.Conn, r *model.Room, pl *model.Player) response.Card {
	s.send(conn, ws.EventCreateCards, ws.CreateCardsPayload{RoomID: string(r.ID)})

	var created ws.CardsCreatedPayload
	s.receiveEvent(conn, ws.EventCardsCreated, &created)
	for _, p := range created.Players {
		if p.ID == string(pl.ID) {
			s.Require().NotNil(p.Card)
			return *p.Card
		}
	}
	s.Require().FailNow("player card not found")
	return response.Card{}
}

func (s *GatewaySuite) TestMarkSpaceBroadcastAndWin() {
	r := s.createRoom()
	pl := s.joinPlayer(r.ID, "Alice")
	conn := s.connect(r.ID, pl)

	// Free space lands at position 2, in the middle of the first row
	s.app.MockRandom.QueueIntn(2)
	card := s.dealCards(conn, r, pl)
	s.True(card.Spaces[2].IsFreeSpace)

	// Mark the rest of row 0; the final mark completes the line
	for _, pos := range []int{0, 1, 3, 4} {
		s.send(conn, ws.EventMarkSpace, ws.SpacePayload{
			CardID:   card.ID,
			Position: pos,
			PlayerID: string(pl.ID),
			RoomID:   string(r.ID),
		})

		var marked ws.SpaceMarkedPayload
		s.receiveEvent(conn, ws.EventSpaceMarked, &marked)
		s.Equal(pos, marked.Position)
		s.Equal(card.ID, marked.CardID)
		s.Equal(card.Spaces[pos].OptionText, marked.OptionText)
	}

	var won ws.PlayerWonPayload
	s.receiveEvent(conn, ws.EventPlayerWon, &won)
	s.Equal(string(pl.ID), won.PlayerID)
	s.Equal("Alice", won.Name)
}

func (s *GatewaySuite) TestUnmarkSpaceBroadcast() {
	r := s.createRoom()
	pl := s.joinPlayer(r.ID, "Alice")
	conn := s.connect(r.ID, pl)
	card := s.dealCards(conn, r, pl)

	payload := ws.SpacePayload{
		CardID:   card.ID,
		Position: 5,
		PlayerID: string(pl.ID),
		RoomID:   string(r.ID),
	}
	s.send(conn, ws.EventMarkSpace, payload)
	s.receiveEvent(conn, ws.EventSpaceMarked, nil)

	s.send(conn, ws.EventUnmarkSpace, payload)

	var unmarked ws.SpaceMarkedPayload
	s.receiveEvent(conn, ws.EventSpaceUnmarked, &unmarked)
	s.Equal(5, unmarked.Position)
}

func (s *GatewaySuite) TestMarkFreeSpaceRejected() {
	r := s.createRoom()
	pl := s.joinPlayer(r.ID, "Alice")
	conn := s.connect(r.ID, pl)

	s.app.MockRandom.QueueIntn(7)
	card := s.dealCards(conn, r, pl)

	s.send(conn, ws.EventMarkSpace, ws.SpacePayload{
		CardID:   card.ID,
		Position: 7,
		PlayerID: string(pl.ID),
		RoomID:   string(r.ID),
	})

	s.Equal("The free space cannot be changed", s.receiveError(conn))
}

func (s *GatewaySuite) TestGetAllCardsPrivateReply() {
	r := s.createRoom()
	alice := s.joinPlayer(r.ID, "Alice")
	bob := s.joinPlayer(r.ID, "Bob")
	aliceConn := s.connect(r.ID, alice)
	bobConn := s.connect(r.ID, bob)
	s.receiveEvent(aliceConn, ws.EventPlayerJoined, nil)

	s.dealCards(aliceConn, r, alice)
	s.receiveEvent(bobConn, ws.EventCardsCreated, nil)

	s.send(aliceConn, ws.EventGetAllCards, ws.GetAllCardsPayload{RoomID: string(r.ID)})

	var list response.CardList
	s.receiveEvent(aliceConn, ws.EventAllCards, &list)
	s.Require().Len(list.Cards, 2)

	names := []string{list.Cards[0].PlayerName, list.Cards[1].PlayerName}
	s.ElementsMatch([]string{"Alice", "Bob"}, names)
}

func (s *GatewaySuite) TestChatMessageBroadcast() {
	r := s.createRoom()
	alice := s.joinPlayer(r.ID, "Alice")
	bob := s.joinPlayer(r.ID, "Bob")
	aliceConn := s.connect(r.ID, alice)
	bobConn := s.connect(r.ID, bob)
	s.receiveEvent(aliceConn, ws.EventPlayerJoined, nil)

	s.send(aliceConn, ws.EventSendChatMessage, ws.ChatPayload{
		RoomID:       string(r.ID),
		SessionToken: alice.SessionToken,
		Message:      "B-12!",
	})

	for _, conn := range []*websocket.Conn{aliceConn, bobConn} {
		var msg response.ChatMessage
		s.receiveEvent(conn, ws.EventChatMessage, &msg)
		s.Equal("Alice", msg.PlayerName)
		s.Equal("B-12!", msg.Message)
	}

	history, err := s.app.Chat.History(s.ctx, r.ID, 0)
	s.Require().NoError(err)
	s.Require().Len(history, 1)
}

func (s *GatewaySuite) TestChatRequiresMembership() {
	r := s.createRoom()
	pl := s.joinPlayer(r.ID, "Alice")
	conn := s.connect(r.ID, pl)

	s.send(conn, ws.EventSendChatMessage, ws.ChatPayload{
		RoomID:       string(r.ID),
		SessionToken: "stolen-token",
		Message:      "hi",
	})

	s.Equal("Invalid session", s.receiveError(conn))
}

func (s *GatewaySuite) TestCloseRoomBroadcast() {
	r := s.createRoom()
	pl := s.joinPlayer(r.ID, "Alice")
	conn := s.connect(r.ID, pl)

	s.send(conn, ws.EventCloseRoom, ws.CloseRoomPayload{RoomID: string(r.ID)})
	s.receiveEvent(conn, ws.EventRoomClosed, nil)

	// Closing only stops new joins; the room stays in its phase
	got, err := s.app.Rooms.GetByID(s.ctx, r.ID)
	s.Require().NoError(err)
	s.Equal(model.RoomStatusLobby, got.Status)
	s.False(got.IsOpen)

	// Members still in the lobby can keep editing the pool
	s.send(conn, ws.EventAddOption, ws.OptionPayload{RoomID: string(r.ID), Option: "late"})

	var added ws.OptionEventPayload
	s.receiveEvent(conn, ws.EventOptionAdded, &added)
	s.Equal("late", added.Option)
}

func (s *GatewaySuite) TestUnknownEvent() {
	r := s.createRoom()
	pl := s.joinPlayer(r.ID, "Alice")
	conn := s.connect(r.ID, pl)

	s.send(conn, "bogus-event", struct{}{})

	s.Equal("Unknown event: bogus-event", s.receiveError(conn))
}

func (s *GatewaySuite) TestMalformedMessage() {
	conn := s.dial()

	s.Require().NoError(conn.WriteMessage(websocket.TextMessage, []byte("not json")))

	s.Equal("Invalid message format", s.receiveError(conn))
}
