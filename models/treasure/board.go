package treasure

import (
	"math/rand"

	cerr "github.com/saeidalz13/treasurehunt-backend/internal/error"
)

const DefaultTreasureCount int = 10

type Coordinates struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func NewCoordinates(row, col int) Coordinates {
	return Coordinates{Row: row, Col: col}
}

// Board is the server view of the hunt: where the treasures
// are hidden and which tiles have been dug by either player.
type Board struct {
	size          int
	treasures     map[Coordinates]bool
	dug           map[Coordinates]bool
	treasuresLeft int
}

// Places `treasures` distinct treasures on a size x size board.
// The count is clamped to the number of tiles.
func NewBoard(size, treasures int, rng *rand.Rand) *Board {
	if size <= 0 {
		size = GridSize
	}
	if treasures <= 0 {
		treasures = DefaultTreasureCount
	}
	if treasures > size*size {
		treasures = size * size
	}

	b := &Board{
		size:          size,
		treasures:     make(map[Coordinates]bool, treasures),
		dug:           make(map[Coordinates]bool, size*size),
		treasuresLeft: treasures,
	}

	for _, idx := range rng.Perm(size * size)[:treasures] {
		b.treasures[NewCoordinates(idx/size, idx%size)] = true
	}
	return b
}

// Used when the treasure layout must be known up front.
func NewBoardWithTreasures(size int, treasures []Coordinates) (*Board, error) {
	if size <= 0 {
		size = GridSize
	}
	if len(treasures) == 0 {
		return nil, cerr.ErrInvalidTreasureCount(0)
	}

	b := &Board{
		size:      size,
		treasures: make(map[Coordinates]bool, len(treasures)),
		dug:       make(map[Coordinates]bool, size*size),
	}
	for _, co := range treasures {
		if !isInBound(co.Row, co.Col, size) {
			return nil, cerr.ErrXorYOutOfGridBound(co.Row, co.Col)
		}
		b.treasures[co] = true
	}
	b.treasuresLeft = len(b.treasures)
	return b, nil
}

func (b *Board) Size() int {
	return b.size
}

func (b *Board) TreasuresLeft() int {
	return b.treasuresLeft
}

// The layout never changes after construction.
func (b *Board) HasTreasure(row, col int) bool {
	return b.treasures[NewCoordinates(row, col)]
}

func (b *Board) Dig(row, col int) (bool, error) {
	if !isInBound(row, col, b.size) {
		return false, cerr.ErrXorYOutOfGridBound(row, col)
	}

	co := NewCoordinates(row, col)
	if b.dug[co] {
		return false, cerr.ErrTileAlreadyDug(row, col)
	}
	b.dug[co] = true

	if b.treasures[co] {
		b.treasuresLeft--
		return true, nil
	}
	return false, nil
}
