package analysis

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// Summary is the listing shape for persisted analyses.
type Summary struct {
	ID          string    `json:"id"`
	Preset      string    `json:"preset"`
	Depth       int       `json:"depth"`
	MoveCount   int       `json:"move_count"`
	WorstDropCP int       `json:"worst_drop_cp"`
	CreatedAt   time.Time `json:"created_at"`
}

type Repository interface {
	Save(ctx context.Context, kifHash string, r *Report) error
	Recent(ctx context.Context, limit int) ([]Summary, error)
	Close() error
}

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(databaseURL string) (*PostgresRepository, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return &PostgresRepository{db: db}, nil
}

func (r *PostgresRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Save upserts a finished report; a record analyzed again with the same
// preset replaces its previous row.
func (r *PostgresRepository) Save(ctx context.Context, kifHash string, report *Report) error {
	if r == nil || r.db == nil || report == nil {
		return nil
	}

	evalsRaw, _ := json.Marshal(report.Evals)
	blundersRaw, _ := json.Marshal(report.Blunders)
	worst := 0
	if len(report.Blunders) > 0 {
		worst = report.Blunders[0].DropCP
	}
	moveCount := len(report.Evals)
	if moveCount > 0 {
		moveCount--
	}

	q := `INSERT INTO analyses (
	    id, kif_hash, preset, depth, move_count,
	    evals, blunders, worst_drop_cp, created_at
	  ) VALUES (
	    $1,$2,$3,$4,$5,$6,$7,$8,$9
	  ) ON CONFLICT (kif_hash) DO UPDATE SET
	    id=EXCLUDED.id,
	    preset=EXCLUDED.preset,
	    depth=EXCLUDED.depth,
	    move_count=EXCLUDED.move_count,
	    evals=EXCLUDED.evals,
	    blunders=EXCLUDED.blunders,
	    worst_drop_cp=EXCLUDED.worst_drop_cp,
	    created_at=EXCLUDED.created_at`

	_, err := r.db.ExecContext(ctx, q,
		report.ID, kifHash, report.Preset, report.Depth, moveCount,
		string(evalsRaw), string(blundersRaw), worst, report.CreatedAt,
	)
	return err
}

func (r *PostgresRepository) Recent(ctx context.Context, limit int) ([]Summary, error) {
	if r == nil || r.db == nil {
		return nil, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, preset, depth, move_count, worst_drop_cp, created_at
		   FROM analyses ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.Preset, &s.Depth, &s.MoveCount, &s.WorstDropCP, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
