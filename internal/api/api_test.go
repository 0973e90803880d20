package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/bingoparty/bingoparty-go/internal/api"
	"github.com/bingoparty/bingoparty-go/internal/api/apierr"
	"github.com/bingoparty/bingoparty-go/internal/api/response"
	"github.com/bingoparty/bingoparty-go/internal/factory"
	"github.com/bingoparty/bingoparty-go/internal/model"
	"github.com/bingoparty/bingoparty-go/internal/testutil"
)

type APISuite struct {
	suite.Suite
	ctx    context.Context
	app    *factory.TestApp
	server *httptest.Server
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func (s *APISuite) SetupTest() {
	s.ctx = context.Background()
	s.app = factory.NewTestApp()

	router := api.NewRouter(api.RouterConfig{
		Logger:     testutil.NopLogger(),
		Rooms:      s.app.Rooms,
		Players:    s.app.Players,
		Cards:      s.app.Cards,
		Chat:       s.app.Chat,
		HubManager: s.app.HubManager,
		Gateway:    s.app.Gateway,
	})
	s.server = httptest.NewServer(router)
}

func (s *APISuite) TearDownTest() {
	s.server.Close()
}

func (s *APISuite) request(method, path, token string, body any) *http.Response {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		s.Require().NoError(err)
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, s.server.URL+path, reqBody)
	s.Require().NoError(err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	s.T().Cleanup(func() { resp.Body.Close() })
	return resp
}

func (s *APISuite) decode(resp *http.Response, out any) {
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(out))
}

func (s *APISuite) errorBody(resp *http.Response) string {
	var body apierr.ErrorResponse
	s.decode(resp, &body)
	return body.Error.Message
}

// createRoom creates a room through the API with a known join code
func (s *APISuite) createRoom(title, prePopulate string) response.RoomCreated {
	s.app.MockRandom.QueueString("ABCDE")

	resp := s.request(http.MethodPost, "/api/v1/rooms", "", map[string]string{
		"title":       title,
		"prePopulate": prePopulate,
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	var created response.RoomCreated
	s.decode(resp, &created)
	return created
}

func (s *APISuite) joinRoom(joinCode, name string) response.JoinResult {
	resp := s.request(http.MethodPost, fmt.Sprintf("/api/v1/rooms/by-code/%s/join", joinCode), "", map[string]string{
		"name": name,
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	var result response.JoinResult
	s.decode(resp, &result)
	return result
}

func (s *APISuite) TestHealth() {
	resp := s.request(http.MethodGet, "/api/v1/health", "", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *APISuite) TestCreateRoom() {
	created := s.createRoom("Friday Night", "")

	s.NotEmpty(created.RoomID)
	s.Equal("ABCDE", created.JoinCode)
	s.Equal("Friday Night", created.Title)
}

func (s *APISuite) TestCreateRoomInvalidBody() {
	req, err := http.NewRequest(http.MethodPost, s.server.URL+"/api/v1/rooms", bytes.NewReader([]byte("{")))
	s.Require().NoError(err)

	resp, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *APISuite) TestCreateRoomEmptyTitle() {
	resp := s.request(http.MethodPost, "/api/v1/rooms", "", map[string]string{"title": "   "})
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.NotEmpty(s.errorBody(resp))
}

func (s *APISuite) TestCreateRoomUnknownPrePopulateMode() {
	resp := s.request(http.MethodPost, "/api/v1/rooms", "", map[string]string{
		"title":       "Game",
		"prePopulate": "telepathy",
	})
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *APISuite) TestGetRoomState() {
	created := s.createRoom("Friday Night", "placeholders")
	s.joinRoom(created.JoinCode, "Alice")

	resp := s.request(http.MethodGet, "/api/v1/rooms/"+created.RoomID, "", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var state response.RoomState
	s.decode(resp, &state)
	s.Equal(created.RoomID, state.ID)
	s.Len(state.OptionsPool, model.PoolMinimum)
	s.Require().Len(state.Players, 1)
	s.Equal("Alice", state.Players[0].Name)
	s.Require().NotNil(state.CreatorID)
	s.Equal(state.Players[0].ID, *state.CreatorID)
}

func (s *APISuite) TestGetRoomNotFound() {
	resp := s.request(http.MethodGet, "/api/v1/rooms/nope", "", nil)
	s.Equal(http.StatusNotFound, resp.StatusCode)
	s.Equal("Room not found", s.errorBody(resp))
}

func (s *APISuite) TestLookupByJoinCode() {
	created := s.createRoom("Friday Night", "")

	resp := s.request(http.MethodGet, "/api/v1/rooms/by-code/abcde", "", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var summary response.RoomSummary
	s.decode(resp, &summary)
	s.Equal(created.RoomID, summary.ID)
	s.Equal(string(model.RoomStatusLobby), summary.Status)
	s.True(summary.IsOpen)
}

func (s *APISuite) TestLookupUnknownCode() {
	resp := s.request(http.MethodGet, "/api/v1/rooms/by-code/ZZZZZ", "", nil)
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *APISuite) TestJoinRoom() {
	created := s.createRoom("Friday Night", "")

	result := s.joinRoom(created.JoinCode, "Alice")

	s.Equal(created.RoomID, result.RoomID)
	s.NotEmpty(result.PlayerID)
	s.Len(result.SessionToken, 64)
	s.Nil(result.Card, "no card before the game starts")
}

func (s *APISuite) TestJoinClosedRoom() {
	created := s.createRoom("Friday Night", "")
	result := s.joinRoom(created.JoinCode, "Alice")

	resp := s.request(http.MethodPost, "/api/v1/rooms/"+created.RoomID+"/close", result.SessionToken, nil)
	s.Require().Equal(http.StatusNoContent, resp.StatusCode)

	resp = s.request(http.MethodPost, "/api/v1/rooms/by-code/"+created.JoinCode+"/join", "", map[string]string{"name": "Bob"})
	s.Equal(http.StatusConflict, resp.StatusCode)
}

func (s *APISuite) TestJoinMidGameDealsCard() {
	created := s.createRoom("Friday Night", "placeholders")
	s.joinRoom(created.JoinCode, "Alice")
	s.Require().NoError(s.app.Cards.CreateCardsForRoom(s.ctx, model.RoomID(created.RoomID)))

	result := s.joinRoom(created.JoinCode, "Bob")

	s.Require().NotNil(result.Card)
	s.Len(result.Card.Spaces, model.SpaceCount)
}

func (s *APISuite) TestProtectedRoutesRequireToken() {
	created := s.createRoom("Friday Night", "")

	for _, path := range []string{
		"/api/v1/rooms/" + created.RoomID + "/close",
		"/api/v1/rooms/" + created.RoomID + "/cards",
		"/api/v1/rooms/" + created.RoomID + "/chat",
	} {
		method := http.MethodGet
		if path == "/api/v1/rooms/"+created.RoomID+"/close" {
			method = http.MethodPost
		}
		resp := s.request(method, path, "", nil)
		s.Equal(http.StatusUnauthorized, resp.StatusCode, "path %s", path)
	}
}

func (s *APISuite) TestInvalidTokenRejected() {
	created := s.createRoom("Friday Night", "")
	s.joinRoom(created.JoinCode, "Alice")

	resp := s.request(http.MethodGet, "/api/v1/rooms/"+created.RoomID+"/cards", "bogus-token", nil)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *APISuite) TestSessionCookieAccepted() {
	created := s.createRoom("Friday Night", "")
	result := s.joinRoom(created.JoinCode, "Alice")

	req, err := http.NewRequest(http.MethodGet, s.server.URL+"/api/v1/rooms/"+created.RoomID+"/cards", nil)
	s.Require().NoError(err)
	req.AddCookie(&http.Cookie{Name: "session", Value: result.SessionToken})

	resp, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *APISuite) TestMembershipEnforcedAcrossRooms() {
	created := s.createRoom("Friday Night", "")
	result := s.joinRoom(created.JoinCode, "Alice")

	s.app.MockRandom.QueueString("FGHIJ")
	otherResp := s.request(http.MethodPost, "/api/v1/rooms", "", map[string]string{"title": "Other Room"})
	s.Require().Equal(http.StatusCreated, otherResp.StatusCode)
	var other response.RoomCreated
	s.decode(otherResp, &other)

	resp := s.request(http.MethodGet, "/api/v1/rooms/"+other.RoomID+"/cards", result.SessionToken, nil)
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *APISuite) TestCloseRoom() {
	created := s.createRoom("Friday Night", "")
	result := s.joinRoom(created.JoinCode, "Alice")

	resp := s.request(http.MethodPost, "/api/v1/rooms/"+created.RoomID+"/close", result.SessionToken, nil)
	s.Require().Equal(http.StatusNoContent, resp.StatusCode)

	// Closing only revokes openness; the room stays in its phase and
	// existing members keep playing.
	got, err := s.app.Rooms.GetByID(s.ctx, model.RoomID(created.RoomID))
	s.Require().NoError(err)
	s.Equal(model.RoomStatusLobby, got.Status)
	s.False(got.IsOpen)

	updated, err := s.app.Rooms.AddOption(s.ctx, model.RoomID(created.RoomID), "late entry")
	s.Require().NoError(err)
	s.Contains(updated.OptionsPool, "late entry")
}

func (s *APISuite) TestListCards() {
	created := s.createRoom("Friday Night", "placeholders")
	alice := s.joinRoom(created.JoinCode, "Alice")
	s.joinRoom(created.JoinCode, "Bob")
	s.Require().NoError(s.app.Cards.CreateCardsForRoom(s.ctx, model.RoomID(created.RoomID)))

	resp := s.request(http.MethodGet, "/api/v1/rooms/"+created.RoomID+"/cards", alice.SessionToken, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var list response.CardList
	s.decode(resp, &list)
	s.Require().Len(list.Cards, 2)
	s.ElementsMatch([]string{"Alice", "Bob"},
		[]string{list.Cards[0].PlayerName, list.Cards[1].PlayerName})
}

func (s *APISuite) TestChatHistoryWithLimit() {
	created := s.createRoom("Friday Night", "")
	result := s.joinRoom(created.JoinCode, "Alice")

	roomID := model.RoomID(created.RoomID)
	playerID := model.PlayerID(result.PlayerID)
	for i := 1; i <= 4; i++ {
		_, err := s.app.Chat.Append(s.ctx, roomID, playerID, "Alice", fmt.Sprintf("message %d", i))
		s.Require().NoError(err)
	}

	resp := s.request(http.MethodGet, "/api/v1/rooms/"+created.RoomID+"/chat?limit=2", result.SessionToken, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var history []response.ChatMessage
	s.decode(resp, &history)
	s.Require().Len(history, 2)
	s.Equal("message 3", history[0].Message)
	s.Equal("message 4", history[1].Message)
}

func (s *APISuite) TestChatHistoryInvalidLimit() {
	created := s.createRoom("Friday Night", "")
	result := s.joinRoom(created.JoinCode, "Alice")

	resp := s.request(http.MethodGet, "/api/v1/rooms/"+created.RoomID+"/chat?limit=banana", result.SessionToken, nil)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}
