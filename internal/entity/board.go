package entity

import (
	"fmt"
	"strings"
)

const BoardSize = 8

type Cell int

const (
	Empty Cell = iota
	Black
	White
)

func (that Cell) Opponent() Cell {
	switch that {
	case Black:
		return White
	case White:
		return Black
	default:
		return Empty
	}
}

func (that Cell) IsPlayer() bool {
	return that == Black || that == White
}

func (that Cell) String() string {
	switch that {
	case Black:
		return "black"
	case White:
		return "white"
	default:
		return "empty"
	}
}

func (that Cell) MarshalText() ([]byte, error) {
	return []byte(that.String()), nil
}

func (that *Cell) UnmarshalText(text []byte) error {
	if string(text) == "empty" {
		*that = Empty
		return nil
	}

	color, ok := ParseColor(string(text))
	if !ok {
		return fmt.Errorf("unknown cell %q", text)
	}

	*that = color

	return nil
}

// ParseColor accepts "black"/"b" and "white"/"w" in any case.
func ParseColor(s string) (Cell, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "black", "b":
		return Black, true
	case "white", "w":
		return White, true
	default:
		return Empty, false
	}
}

type Board [BoardSize][BoardSize]Cell

type Move struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (that Move) InBounds() bool {
	return that.Row >= 0 && that.Row < BoardSize && that.Col >= 0 && that.Col < BoardSize
}

func (that Move) IsCorner() bool {
	return (that.Row == 0 || that.Row == BoardSize-1) && (that.Col == 0 || that.Col == BoardSize-1)
}

func (that Move) IsEdge() bool {
	return that.Row == 0 || that.Row == BoardSize-1 || that.Col == 0 || that.Col == BoardSize-1
}

// String renders the move in board notation, column letter first: (2,3) is "d3".
func (that Move) String() string {
	if !that.InBounds() {
		return "??"
	}

	return string(rune('a'+that.Col)) + string(rune('1'+that.Row))
}

type Direction struct {
	DRow int
	DCol int
}

var Directions = [8]Direction{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

var Corners = [4]Move{
	{0, 0}, {0, BoardSize - 1}, {BoardSize - 1, 0}, {BoardSize - 1, BoardSize - 1},
}

type Scores struct {
	Black int `json:"black"`
	White int `json:"white"`
}

func (that Board) Count() (Scores, int) {
	var (
		scores Scores
		empty  int
	)

	for row := range that {
		for _, cell := range that[row] {
			switch cell {
			case Black:
				scores.Black++
			case White:
				scores.White++
			default:
				empty++
			}
		}
	}

	return scores, empty
}

func (that *Board) At(move Move) Cell {
	return that[move.Row][move.Col]
}
