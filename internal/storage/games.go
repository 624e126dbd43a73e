package storage

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"lukechampine.com/frand"

	"github.com/LittleKatyusha/minesweeper/internal/game"
)

const gamePrefix = "game/"

// GameRecord is a stored game: enough to replay it from the start position.
type GameRecord struct {
	ID        string    `json:"id"`
	StartFEN  string    `json:"start_fen"`
	Moves     []string  `json:"moves"`    // Coordinate notation, e.g. "e2e4"
	Notation  []string  `json:"notation"` // SAN
	Result    string    `json:"result"`   // PGN result token
	White     string    `json:"white"`
	Black     string    `json:"black"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewGameRecord captures the current state of g.
func NewGameRecord(g *game.Game) *GameRecord {
	start := g.StartBoard()
	moves := g.Moves()

	rec := &GameRecord{
		StartFEN: start.FEN(),
		Moves:    make([]string, len(moves)),
		Notation: g.Notation(),
		Result:   g.Result(),
	}
	for i, m := range moves {
		rec.Moves[i] = m.String()
	}
	return rec
}

// Replay rebuilds the game from the record.
func (r *GameRecord) Replay() (*game.Game, error) {
	g, err := game.FromFEN(r.StartFEN)
	if err != nil {
		return nil, fmt.Errorf("game %s: %w", r.ID, err)
	}
	for i, s := range r.Moves {
		b := g.Board()
		m, err := b.ParseMove(s)
		if err != nil {
			return nil, fmt.Errorf("game %s: move %d %q: %w", r.ID, i+1, s, err)
		}
		if err := g.Play(m); err != nil {
			return nil, fmt.Errorf("game %s: move %d %q: %w", r.ID, i+1, s, err)
		}
	}
	return g, nil
}

func newID() string {
	return hex.EncodeToString(frand.Bytes(8))
}

func gameKey(id string) []byte {
	return []byte(gamePrefix + id)
}

// SaveGame stores rec, assigning an ID on first save.
func (s *Storage) SaveGame(rec *GameRecord) error {
	now := time.Now()
	if rec.ID == "" {
		rec.ID = newID()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	return s.putJSON(gamePrefix+rec.ID, rec)
}

// LoadGame returns the record with the given ID.
func (s *Storage) LoadGame(id string) (*GameRecord, error) {
	var rec GameRecord
	if err := s.getJSON(gamePrefix+id, &rec); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("game %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &rec, nil
}

// DeleteGame removes a stored game. Deleting a missing game is not an error.
func (s *Storage) DeleteGame(id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(gameKey(id))
	})
}

// ListGames returns all stored games, most recently updated first.
func (s *Storage) ListGames() ([]*GameRecord, error) {
	var games []*GameRecord

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(gamePrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			rec := new(GameRecord)
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, rec)
			})
			if err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			games = append(games, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(games, func(a, b *GameRecord) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	return games, nil
}
