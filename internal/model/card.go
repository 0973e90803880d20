package model

import "time"

// CardID uniquely identifies a card
type CardID string

// Card geometry constants
const (
	GridSize   = 5
	SpaceCount = GridSize * GridSize
)

// FreeSpaceLabel is the text shown on the free space
const FreeSpaceLabel = "Free Space"

// CardSpace is a single cell of a card. Position is row-major:
// row = position/5, col = position%5.
type CardSpace struct {
	Position    int
	OptionText  string
	IsFreeSpace bool
	IsMarked    bool
}

// Card is a player's individual 5x5 grid. Structure is immutable after
// creation; only the spaces' marked flags change.
type Card struct {
	ID        CardID
	PlayerID  PlayerID
	RoomID    RoomID
	Spaces    []CardSpace // exactly SpaceCount entries, ordered by position
	CreatedAt time.Time
}

// SpaceAt returns the space at the given position, or nil if out of range
func (c *Card) SpaceAt(position int) *CardSpace {
	for i := range c.Spaces {
		if c.Spaces[i].Position == position {
			return &c.Spaces[i]
		}
	}
	return nil
}

// HasWin reports whether any full row, column, or diagonal is marked.
// The free space counts as always-marked. Evaluation is from scratch on
// every call; nothing tracks a previously announced win.
func (c *Card) HasWin() bool {
	var grid [GridSize][GridSize]bool
	for _, s := range c.Spaces {
		if s.Position < 0 || s.Position >= SpaceCount {
			continue
		}
		grid[s.Position/GridSize][s.Position%GridSize] = s.IsMarked
	}

	for i := 0; i < GridSize; i++ {
		rowWin, colWin := true, true
		for j := 0; j < GridSize; j++ {
			rowWin = rowWin && grid[i][j]
			colWin = colWin && grid[j][i]
		}
		if rowWin || colWin {
			return true
		}
	}

	diagWin, antiWin := true, true
	for i := 0; i < GridSize; i++ {
		diagWin = diagWin && grid[i][i]
		antiWin = antiWin && grid[i][GridSize-1-i]
	}
	return diagWin || antiWin
}
