package repos

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"freestream-server/internal/model"
)

type PostersRepo struct {
	db *pgxpool.Pool
}

// The (movie, type, size) key is immutable; only the link is replaceable.
const upsertPosterSQL = `
INSERT INTO movie_posters (movie_id, poster_type, size, link)
VALUES ($1, $2, $3, $4)
ON CONFLICT (movie_id, poster_type, size) DO UPDATE SET link = EXCLUDED.link`

// GetMoviePosters returns posters for the given movies, restricted to the
// given types and size classes. Unrecognized types or sizes are rejected so
// callers can surface them as client errors.
func (r *PostersRepo) GetMoviePosters(ctx context.Context, movieIDs, types, sizes []string) ([]model.MoviePoster, error) {
	for _, t := range types {
		if _, ok := model.AllowedPosterTypes[t]; !ok {
			return nil, &UnrecognizedValueError{Field: "type", Value: t}
		}
	}
	for _, s := range sizes {
		if _, ok := model.AllowedPosterSizes[s]; !ok {
			return nil, &UnrecognizedValueError{Field: "size", Value: s}
		}
	}
	rows, err := r.db.Query(ctx, `
SELECT movie_id, poster_type, size, link
FROM movie_posters
WHERE movie_id = ANY($1) AND poster_type = ANY($2) AND size = ANY($3)
ORDER BY movie_id, poster_type, size`, movieIDs, types, sizes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.MoviePoster
	for rows.Next() {
		var p model.MoviePoster
		if err := rows.Scan(&p.MovieID, &p.Type, &p.Size, &p.Link); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UnrecognizedValueError marks a query parameter outside the known poster
// types or sizes.
type UnrecognizedValueError struct {
	Field string
	Value string
}

func (e *UnrecognizedValueError) Error() string {
	return fmt.Sprintf("unrecognized poster %s %q", e.Field, e.Value)
}
