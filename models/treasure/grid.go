package treasure

import (
	"strconv"
	"strings"

	cerr "github.com/saeidalz13/treasurehunt-backend/internal/error"
)

const GridSize int = 10

type TileState uint8

const (
	TileStateEmpty TileState = iota
	TileStateHit
	TileStateMiss
	// dug by the opponent
	TileStateTaken
)

// Image names used by the original client artwork.
const (
	ImageTileEmpty = "circle.fill"
	ImageTileHit   = "face.smiling"
	ImageTileMiss  = "x.circle"
	ImageTileTaken = "circle.slash"
)

func (ts TileState) Image() string {
	switch ts {
	case TileStateHit:
		return ImageTileHit
	case TileStateMiss:
		return ImageTileMiss
	case TileStateTaken:
		return ImageTileTaken
	default:
		return ImageTileEmpty
	}
}

func (ts TileState) Symbol() string {
	switch ts {
	case TileStateHit:
		return "$"
	case TileStateMiss:
		return "x"
	case TileStateTaken:
		return "o"
	default:
		return "."
	}
}

type Tile struct {
	Row   int
	Col   int
	State TileState
}

func (t Tile) Location() string {
	return CellLocation(t.Row, t.Col)
}

func CellLocation(row, col int) string {
	return strconv.Itoa(row) + "," + strconv.Itoa(col)
}

// Parses the "row,col" guess format against a grid of the
// given size. No whitespace is tolerated.
func ParseLocation(location string, size int) (int, int, error) {
	rowStr, colStr, found := strings.Cut(location, ",")
	if !found {
		return -1, -1, cerr.ErrInvalidLocation(location)
	}

	row, err := strconv.Atoi(rowStr)
	if err != nil {
		return -1, -1, cerr.ErrInvalidLocation(location)
	}
	col, err := strconv.Atoi(colStr)
	if err != nil {
		return -1, -1, cerr.ErrInvalidLocation(location)
	}

	if !isInBound(row, col, size) {
		return -1, -1, cerr.ErrXorYOutOfGridBound(row, col)
	}
	return row, col, nil
}

func isInBound(row, col, size int) bool {
	return row >= 0 && row < size && col >= 0 && col < size
}

// Grid is row-major; tiles[r][c] has Row r and Col c.
type Grid struct {
	size  int
	tiles [][]Tile
}

// Creates a new grid with every tile set to TileStateEmpty.
// A non-positive size falls back to GridSize.
func NewGrid(size int) *Grid {
	if size <= 0 {
		size = GridSize
	}

	tiles := make([][]Tile, size)
	for r := 0; r < size; r++ {
		tiles[r] = make([]Tile, size)
		for c := 0; c < size; c++ {
			tiles[r][c] = Tile{Row: r, Col: c, State: TileStateEmpty}
		}
	}

	return &Grid{size: size, tiles: tiles}
}

func (g *Grid) Size() int {
	return g.size
}

func (g *Grid) Tile(row, col int) (*Tile, error) {
	if !isInBound(row, col, g.size) {
		return nil, cerr.ErrXorYOutOfGridBound(row, col)
	}
	return &g.tiles[row][col], nil
}

// Returns a copy of all the tiles in row-major order.
func (g *Grid) Tiles() []Tile {
	out := make([]Tile, 0, g.size*g.size)
	for _, row := range g.tiles {
		out = append(out, row...)
	}
	return out
}

// A tile only transitions once, from empty to either hit or miss.
func (g *Grid) ApplyResult(tile *Tile, found bool) error {
	if tile.State != TileStateEmpty {
		return cerr.ErrTileAlreadyRevealed(tile.Row, tile.Col)
	}

	if found {
		tile.State = TileStateHit
	} else {
		tile.State = TileStateMiss
	}
	return nil
}

// Records a tile the opponent dug so it is not offered again.
func (g *Grid) MarkTaken(tile *Tile) error {
	if tile.State != TileStateEmpty {
		return cerr.ErrTileAlreadyRevealed(tile.Row, tile.Col)
	}
	tile.State = TileStateTaken
	return nil
}

func (g *Grid) String() string {
	var sb strings.Builder
	for _, row := range g.tiles {
		for c, tile := range row {
			if c > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(tile.State.Symbol())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
