package store

import (
	"context"
	"errors"
	"time"

	"github.com/AloySobek/ft-gomoku/engine"
)

var ErrNotFound = errors.New("not found")

// Snapshot is a saved position in persistence codes.
type Snapshot struct {
	ID            string    `json:"id"`
	Mode          string    `json:"mode"`
	BoardSize     int       `json:"board_size"`
	Rows          [][]int   `json:"rows"`
	BlackCaptures int       `json:"black_captures"`
	WhiteCaptures int       `json:"white_captures"`
	ToMove        int       `json:"to_move"`
	SavedAt       time.Time `json:"saved_at"`
}

// SnapshotOf captures the current position of g.
func SnapshotOf(id string, mode engine.Mode, g *engine.Game) Snapshot {
	return Snapshot{
		ID:            id,
		Mode:          mode.String(),
		BoardSize:     g.Size(),
		Rows:          g.ExportRows(),
		BlackCaptures: g.Captures(engine.CellBlack),
		WhiteCaptures: g.Captures(engine.CellWhite),
		ToMove:        engine.IntFromTokenColor(g.ToMove()),
		SavedAt:       time.Now().UTC(),
	}
}

// Restore loads s into g. The game must have the snapshot's board size.
func (s Snapshot) Restore(g *engine.Game) error {
	toMove, err := engine.TokenColorFromInt(s.ToMove)
	if err != nil {
		return err
	}
	return g.ImportPosition(s.Rows, s.BlackCaptures, s.WhiteCaptures, toMove)
}

type BoardStore interface {
	Save(ctx context.Context, snap Snapshot) error
	Load(ctx context.Context, id string) (Snapshot, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// GameRecord is a finished game as kept in the archive.
type GameRecord struct {
	ID            string       `json:"id" bson:"_id"`
	Mode          string       `json:"mode" bson:"mode"`
	BoardSize     int          `json:"board_size" bson:"board_size"`
	Result        string       `json:"result" bson:"result"`
	BlackCaptures int          `json:"black_captures" bson:"black_captures"`
	WhiteCaptures int          `json:"white_captures" bson:"white_captures"`
	Moves         []MoveRecord `json:"moves" bson:"moves"`
	FinishedAt    time.Time    `json:"finished_at" bson:"finished_at"`
}

type MoveRecord struct {
	X         int   `json:"x" bson:"x"`
	Y         int   `json:"y" bson:"y"`
	Color     int   `json:"color" bson:"color"`
	Captured  int   `json:"captured" bson:"captured"`
	Engine    bool  `json:"engine" bson:"engine"`
	Depth     int   `json:"depth,omitempty" bson:"depth,omitempty"`
	ElapsedMs int64 `json:"elapsed_ms" bson:"elapsed_ms"`
}

// RecordOf builds the archive record of g.
func RecordOf(id string, mode engine.Mode, g *engine.Game) GameRecord {
	history := g.History().All()
	moves := make([]MoveRecord, len(history))
	for i, h := range history {
		moves[i] = MoveRecord{
			X:         h.Move.X,
			Y:         h.Move.Y,
			Color:     engine.IntFromTokenColor(h.Color),
			Captured:  len(h.Captured),
			Engine:    h.IsEngine,
			Depth:     h.Depth,
			ElapsedMs: h.Elapsed.Milliseconds(),
		}
	}
	return GameRecord{
		ID:            id,
		Mode:          mode.String(),
		BoardSize:     g.Size(),
		Result:        g.Result().String(),
		BlackCaptures: g.Captures(engine.CellBlack),
		WhiteCaptures: g.Captures(engine.CellWhite),
		Moves:         moves,
		FinishedAt:    time.Now().UTC(),
	}
}

type Archive interface {
	Record(ctx context.Context, rec GameRecord) error
	Find(ctx context.Context, id string) (GameRecord, error)
	Recent(ctx context.Context, limit int) ([]GameRecord, error)
	Close(ctx context.Context) error
}
