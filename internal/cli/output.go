package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case RoomCreated:
		o.printRoomCreated(v)
	case RoomSummary:
		o.printRoomSummary(v)
	case RoomState:
		o.printRoomState(v)
	case JoinResult:
		o.printJoinResult(v)
	case CardList:
		o.printCardList(v)
	case []ChatMessage:
		o.printChatMessages(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// RoomCreated response type (matches API)
type RoomCreated struct {
	RoomID   string `json:"roomId"`
	JoinCode string `json:"joinCode"`
	Title    string `json:"title"`
}

// RoomSummary response type
type RoomSummary struct {
	ID       string `json:"id"`
	JoinCode string `json:"joinCode"`
	Title    string `json:"title"`
	Status   string `json:"status"`
	IsOpen   bool   `json:"isOpen"`
}

// Space response type
type Space struct {
	Position    int    `json:"position"`
	OptionText  string `json:"optionText"`
	IsFreeSpace bool   `json:"isFreeSpace"`
	IsMarked    bool   `json:"isMarked"`
}

// Card response type
type Card struct {
	ID       string  `json:"id"`
	PlayerID string  `json:"playerId"`
	RoomID   string  `json:"roomId"`
	Spaces   []Space `json:"spaces"`
}

// RoomPlayer response type
type RoomPlayer struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
	Card      *Card  `json:"card"`
}

// RoomState response type
type RoomState struct {
	ID          string       `json:"id"`
	JoinCode    string       `json:"joinCode"`
	Title       string       `json:"title"`
	Status      string       `json:"status"`
	IsOpen      bool         `json:"isOpen"`
	OptionsPool []string     `json:"optionsPool"`
	Players     []RoomPlayer `json:"players"`
}

// JoinResult response type
type JoinResult struct {
	RoomID       string `json:"roomId"`
	PlayerID     string `json:"playerId"`
	SessionToken string `json:"sessionToken"`
	Card         *Card  `json:"card"`
}

// PlayerCard response type
type PlayerCard struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Card       Card   `json:"card"`
}

// CardList response type
type CardList struct {
	Cards []PlayerCard `json:"cards"`
}

// ChatMessage response type
type ChatMessage struct {
	ID         string    `json:"id"`
	PlayerID   string    `json:"playerId"`
	PlayerName string    `json:"playerName"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"createdAt"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printRoomCreated(r RoomCreated) {
	fmt.Printf("Room created: %s\n", r.Title)
	fmt.Printf("  ID:        %s\n", r.RoomID)
	fmt.Printf("  Join code: %s\n", r.JoinCode)
}

func (o *Output) printRoomSummary(r RoomSummary) {
	fmt.Printf("Room %s (%s)\n", r.Title, r.JoinCode)
	fmt.Printf("  ID:     %s\n", r.ID)
	fmt.Printf("  Status: %s\n", r.Status)
	fmt.Printf("  Open:   %v\n", r.IsOpen)
}

func (o *Output) printRoomState(r RoomState) {
	fmt.Printf("Room %s (%s)\n", r.Title, r.JoinCode)
	fmt.Printf("  Status: %s  Open: %v\n", r.Status, r.IsOpen)
	fmt.Printf("  Options (%d):\n", len(r.OptionsPool))
	for _, opt := range r.OptionsPool {
		fmt.Printf("    - %s\n", opt)
	}
	fmt.Printf("  Players (%d):\n", len(r.Players))
	for _, p := range r.Players {
		hasCard := ""
		if p.Card != nil {
			hasCard = " [card dealt]"
		}
		fmt.Printf("    - %s%s\n", p.Name, hasCard)
	}
}

func (o *Output) printJoinResult(j JoinResult) {
	fmt.Printf("Joined room %s as player %s\n", j.RoomID, j.PlayerID)
	if j.Card != nil {
		fmt.Println("A card was dealt to you:")
		printCardGrid(*j.Card)
	}
}

func (o *Output) printCardList(list CardList) {
	fmt.Printf("Cards (%d):\n", len(list.Cards))
	for _, pc := range list.Cards {
		fmt.Printf("\n%s:\n", pc.PlayerName)
		printCardGrid(pc.Card)
	}
}

func (o *Output) printChatMessages(msgs []ChatMessage) {
	for _, m := range msgs {
		fmt.Printf("[%s] %s: %s\n", m.CreatedAt.Format("15:04:05"), m.PlayerName, m.Message)
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Server status: %s\n", h.Status)
}

// printCardGrid renders a 5x5 card, marking marked spaces with [x]
func printCardGrid(c Card) {
	for _, s := range c.Spaces {
		mark := "[ ]"
		if s.IsMarked {
			mark = "[x]"
		}
		label := s.OptionText
		if s.IsFreeSpace {
			label = "* " + label
		}
		fmt.Printf("  %2d %s %s\n", s.Position, mark, truncate(label, 60))
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return strings.TrimSpace(s[:max]) + "..."
}
