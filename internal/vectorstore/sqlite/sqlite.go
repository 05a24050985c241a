package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"ayurdiag/internal/domain"
	"ayurdiag/internal/vectorstore"
)

const schema = `
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS chunks (
	seq         INTEGER PRIMARY KEY AUTOINCREMENT,
	chunk_id    TEXT NOT NULL,
	document_id TEXT NOT NULL,
	idx         INTEGER NOT NULL,
	total       INTEGER NOT NULL,
	source      TEXT NOT NULL,
	path        TEXT NOT NULL,
	file_type   TEXT NOT NULL,
	metadata    TEXT NOT NULL,
	text        TEXT NOT NULL,
	vector      BLOB NOT NULL
);`

// Storage is a persistent vector store backed by a single SQLite file.
// Vectors are little-endian float64 blobs searched by brute-force cosine.
type Storage struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

// Open opens or creates the database at path.
func Open(ctx context.Context, path string, logger *zap.Logger) (*Storage, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate sqlite %s: %w", path, err)
	}
	return &Storage{db: db, path: path, logger: logger}, nil
}

func (s *Storage) Close() error { return s.db.Close() }

// Dimension returns the recorded vector dimension, or 0 if none.
func (s *Storage) Dimension(ctx context.Context) (int, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'dimension'`).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(v)
}

// Init records the dimension. Existing rows of a different dimension are dropped.
func (s *Storage) Init(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	current, err := s.Dimension(ctx)
	if err != nil {
		return err
	}
	if current != 0 && current != dimension {
		s.logger.Info("vector dimension changed; dropping stored chunks",
			zap.Int("old", current), zap.Int("new", dimension))
		if err := s.Clear(ctx); err != nil {
			return err
		}
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES ('dimension', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, strconv.Itoa(dimension))
	return err
}

func (s *Storage) Upsert(ctx context.Context, chunks []domain.Chunk, vectors [][]float64) error {
	if len(chunks) != len(vectors) {
		return errors.New("chunks and vectors length mismatch")
	}
	dim, err := s.Dimension(ctx)
	if err != nil {
		return err
	}
	if dim == 0 {
		return errors.New("store not initialised")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO chunks
		(chunk_id, document_id, idx, total, source, path, file_type, metadata, text, vector)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, c := range chunks {
		if len(vectors[i]) != dim {
			return fmt.Errorf("vector %d: dimension %d, want %d", i, len(vectors[i]), dim)
		}
		meta, err := json.Marshal(c.Metadata)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, c.ChunkID, c.DocumentID, c.Index, c.Total, c.Source, c.Path,
			c.FileType, string(meta), c.Text, encodeVector(vectors[i])); err != nil {
			return fmt.Errorf("insert chunk %s: %w", c.ChunkID, err)
		}
	}
	return tx.Commit()
}

func (s *Storage) Search(ctx context.Context, vector []float64, topK int) ([]domain.SearchResult, error) {
	chunks, vectors, err := s.load(ctx, true)
	if err != nil {
		return nil, err
	}
	idxs, scores := vectorstore.TopK(vector, vectors, topK)
	results := make([]domain.SearchResult, 0, len(idxs))
	for _, j := range idxs {
		results = append(results, domain.SearchResult{Chunk: chunks[j], Score: scores[j]})
	}
	return results, nil
}

func (s *Storage) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM chunks`)
	return err
}

func (s *Storage) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&n)
	return n, err
}

// Chunks returns every stored chunk in insertion order.
func (s *Storage) Chunks(ctx context.Context) ([]domain.Chunk, error) {
	chunks, _, err := s.load(ctx, false)
	return chunks, err
}

func (s *Storage) load(ctx context.Context, withVectors bool) ([]domain.Chunk, [][]float64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT chunk_id, document_id, idx, total, source, path,
		file_type, metadata, text, vector FROM chunks ORDER BY seq`)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var (
		chunks  []domain.Chunk
		vectors [][]float64
	)
	for rows.Next() {
		var (
			c    domain.Chunk
			meta string
			blob []byte
		)
		if err := rows.Scan(&c.ChunkID, &c.DocumentID, &c.Index, &c.Total, &c.Source, &c.Path,
			&c.FileType, &meta, &c.Text, &blob); err != nil {
			return nil, nil, err
		}
		if meta != "" && meta != "null" {
			if err := json.Unmarshal([]byte(meta), &c.Metadata); err != nil {
				return nil, nil, fmt.Errorf("chunk %s metadata: %w", c.ChunkID, err)
			}
		}
		chunks = append(chunks, c)
		if withVectors {
			vec, err := decodeVector(blob)
			if err != nil {
				return nil, nil, fmt.Errorf("chunk %s vector: %w", c.ChunkID, err)
			}
			vectors = append(vectors, vec)
		}
	}
	return chunks, vectors, rows.Err()
}

func encodeVector(v []float64) []byte {
	buf := make([]byte, 8*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(f))
	}
	return buf
}

func decodeVector(b []byte) ([]float64, error) {
	if len(b)%8 != 0 {
		return nil, fmt.Errorf("blob length %d is not a multiple of 8", len(b))
	}
	v := make([]float64, len(b)/8)
	for i := range v {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return v, nil
}
