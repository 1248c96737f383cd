package postgres

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/checkers/internal/planner"
)

// Episode sources.
const (
	SourceCLI        = "strips"
	SourceCheckers   = "checkers"
	SourcePlanServer = "planserver"
)

// ErrEpisodeNotFound is returned when an episode lookup yields no results.
var ErrEpisodeNotFound = errors.New("episode not found")

// Episode is one logged planning run. The domain text itself is never stored;
// DomainDigest identifies it.
type Episode struct {
	ID           uuid.UUID
	CreatedAt    time.Time
	Source       string
	Heuristic    string
	Weight       float64
	Found        bool
	Exhausted    bool
	Plan         []string
	Cost         int
	Generated    int
	Expanded     int
	Elapsed      time.Duration
	DomainDigest string
}

// DomainDigest returns the hex SHA-256 of a domain text.
func DomainDigest(domain string) string {
	sum := sha256.Sum256([]byte(domain))
	return hex.EncodeToString(sum[:])
}

// NewEpisode summarises a search over domain for logging.
//
// Precondition: res must be non-nil.
// Postcondition: ID is unset; Plan is non-nil.
func NewEpisode(source, domain, heuristic string, weight float64, res *planner.Result) Episode {
	plan := make([]string, len(res.Plan))
	for i, c := range res.Plan {
		plan[i] = c.String()
	}
	return Episode{
		Source:       source,
		Heuristic:    heuristic,
		Weight:       weight,
		Found:        res.Found,
		Exhausted:    res.Exhausted,
		Plan:         plan,
		Cost:         res.Cost(),
		Generated:    res.Generated,
		Expanded:     res.Expanded,
		Elapsed:      res.Elapsed,
		DomainDigest: DomainDigest(domain),
	}
}

// EpisodeRepository provides episode persistence operations.
type EpisodeRepository struct {
	db *pgxpool.Pool
}

// NewEpisodeRepository creates an EpisodeRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewEpisodeRepository(db *pgxpool.Pool) *EpisodeRepository {
	return &EpisodeRepository{db: db}
}

const episodeColumns = `id, created_at, source, heuristic, weight, found, exhausted,
		       plan, cost, generated, expanded, elapsed_ms, domain_digest`

// Record inserts e, assigning a fresh ID when e.ID is the zero UUID.
//
// Precondition: e.Source and e.DomainDigest must be non-empty.
// Postcondition: Returns the stored Episode with ID and CreatedAt set.
func (r *EpisodeRepository) Record(ctx context.Context, e Episode) (Episode, error) {
	if e.Source == "" || e.DomainDigest == "" {
		return Episode{}, errors.New("recording episode: source and domain digest are required")
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Plan == nil {
		e.Plan = []string{}
	}

	err := r.db.QueryRow(ctx, `
		INSERT INTO planning_episodes
		    (id, source, heuristic, weight, found, exhausted,
		     plan, cost, generated, expanded, elapsed_ms, domain_digest)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at`,
		e.ID.String(), e.Source, e.Heuristic, e.Weight, e.Found, e.Exhausted,
		e.Plan, e.Cost, e.Generated, e.Expanded, millis(e.Elapsed), e.DomainDigest,
	).Scan(&e.CreatedAt)
	if err != nil {
		return Episode{}, fmt.Errorf("inserting episode: %w", err)
	}
	return e, nil
}

// Get retrieves an episode by ID.
//
// Postcondition: Returns the Episode or ErrEpisodeNotFound.
func (r *EpisodeRepository) Get(ctx context.Context, id uuid.UUID) (Episode, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+episodeColumns+`
		FROM planning_episodes WHERE id = $1`,
		id.String(),
	)
	e, err := scanEpisode(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Episode{}, ErrEpisodeNotFound
		}
		return Episode{}, fmt.Errorf("querying episode: %w", err)
	}
	return e, nil
}

// ListRecent returns up to limit episodes, newest first.
//
// Precondition: limit must be > 0.
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *EpisodeRepository) ListRecent(ctx context.Context, limit int) ([]Episode, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("listing episodes: limit must be > 0, got %d", limit)
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+episodeColumns+`
		FROM planning_episodes ORDER BY created_at DESC, id LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing episodes: %w", err)
	}
	defer rows.Close()

	episodes := make([]Episode, 0)
	for rows.Next() {
		e, err := scanEpisode(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning episode row: %w", err)
		}
		episodes = append(episodes, e)
	}
	return episodes, rows.Err()
}

func scanEpisode(row pgx.Row) (Episode, error) {
	var (
		e  Episode
		ms float64
	)
	err := row.Scan(
		&e.ID, &e.CreatedAt, &e.Source, &e.Heuristic, &e.Weight, &e.Found, &e.Exhausted,
		&e.Plan, &e.Cost, &e.Generated, &e.Expanded, &ms, &e.DomainDigest,
	)
	if err != nil {
		return Episode{}, err
	}
	e.Elapsed = time.Duration(ms * float64(time.Millisecond))
	return e, nil
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
