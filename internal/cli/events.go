package cli

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

func newEventsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "events <room-id>",
		Short: "Stream room events over websocket",
		Long: `Connect to the server's websocket endpoint, join the room with the
saved session token, and stream events in real-time.

Events include:
  - game-state: Full room state on join
  - player-joined: A player joined the room
  - option-added / option-removed: Pool changed
  - cards-created: Cards were dealt
  - space-marked / space-unmarked: A card space changed
  - player-won: A player completed a line
  - chat-message: Chat activity
  - room-closed: Room closed to new players

Press Ctrl+C to disconnect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Token == "" {
				return fmt.Errorf("no session token - join a room first")
			}
			return streamEvents(args[0], jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")

	return cmd
}

// wireEvent is the websocket envelope
type wireEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// loggedEvent is the JSON-lines output form
type loggedEvent struct {
	Time  time.Time       `json:"time"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func streamEvents(roomID string, jsonOutput bool) error {
	wsURL, err := websocketURL(cfg.ServerURL)
	if err != nil {
		return err
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	// Join the room
	joinData, _ := json.Marshal(map[string]string{
		"roomId":       roomID,
		"sessionToken": cfg.Token,
	})
	if err := conn.WriteJSON(wireEvent{Event: "join-room", Data: joinData}); err != nil {
		return fmt.Errorf("failed to join room: %w", err)
	}

	if !jsonOutput {
		fmt.Printf("Connected to room %s\n", roomID)
	}

	// Close the connection cleanly on interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		select {
		case <-sigCh:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			_ = conn.Close()
		case <-done:
		}
	}()
	defer close(done)

	for {
		var evt wireEvent
		if err := conn.ReadJSON(&evt); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				err = nil
			}
			if !jsonOutput {
				fmt.Println("Disconnected")
			}
			if err != nil && !strings.Contains(err.Error(), "use of closed network connection") {
				return fmt.Errorf("stream error: %w", err)
			}
			return nil
		}
		printEvent(evt, jsonOutput)
	}
}

func printEvent(evt wireEvent, jsonOutput bool) {
	now := time.Now()

	if jsonOutput {
		data, _ := json.Marshal(loggedEvent{Time: now, Event: evt.Event, Data: evt.Data})
		fmt.Println(string(data))
	} else {
		display := string(evt.Data)
		if len(display) > 100 {
			display = display[:100] + "..."
		}
		display = strings.ReplaceAll(display, "\n", " ")
		fmt.Printf("[%s] %s: %s\n", now.Format("2006-01-02 15:04:05"), evt.Event, display)
	}
}

// websocketURL converts the configured server URL to the ws endpoint
func websocketURL(serverURL string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported server URL scheme: %s", u.Scheme)
	}
	u.Path = "/ws"
	return u.String(), nil
}
