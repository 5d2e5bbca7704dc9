package repos

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"freestream-server/internal/model"
)

type MoviesRepo struct {
	db *pgxpool.Pool
}

// upsertMovieSQL replaces every column but the primary key: upstream always
// supplies the complete current attribute set, never a partial patch.
const upsertMovieSQL = `
INSERT INTO movies (id, imdb_id, tmdb_id, title, overview, release_year, original_title, directors, cast_members, rating, runtime)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (id) DO UPDATE SET
	imdb_id = EXCLUDED.imdb_id,
	tmdb_id = EXCLUDED.tmdb_id,
	title = EXCLUDED.title,
	overview = EXCLUDED.overview,
	release_year = EXCLUDED.release_year,
	original_title = EXCLUDED.original_title,
	directors = EXCLUDED.directors,
	cast_members = EXCLUDED.cast_members,
	rating = EXCLUDED.rating,
	runtime = EXCLUDED.runtime`

const selectMovieSQL = `
SELECT id, imdb_id, tmdb_id, title, overview, release_year, original_title, directors, cast_members, rating, runtime
FROM movies`

func scanMovie(row pgx.Row) (model.Movie, error) {
	var m model.Movie
	err := row.Scan(&m.ID, &m.ImdbID, &m.TmdbID, &m.Title, &m.Overview, &m.ReleaseYear,
		&m.OriginalTitle, &m.Directors, &m.Cast, &m.Rating, &m.Runtime)
	return m, err
}

func (r *MoviesRepo) GetMovie(ctx context.Context, id string) (model.Movie, error) {
	return scanMovie(r.db.QueryRow(ctx, selectMovieSQL+" WHERE id = $1", id))
}

// ListMoviesPage returns up to limit movies keyset-paginated by id. An empty
// cursor starts at the beginning.
func (r *MoviesRepo) ListMoviesPage(ctx context.Context, cursorID string, limit int32) ([]model.Movie, error) {
	rows, err := r.db.Query(ctx, selectMovieSQL+" WHERE id > $1 ORDER BY id LIMIT $2", cursorID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Movie, 0, limit)
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *MoviesRepo) CountMovies(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, "SELECT count(*) FROM movies").Scan(&n)
	return n, err
}
