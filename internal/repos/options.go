package repos

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"freestream-server/internal/model"
)

type OptionsRepo struct {
	db *pgxpool.Pool
}

const insertOptionSQL = `
INSERT INTO streaming_options (movie_id, country_code, service_id, link, expires_soon, expires_on)
VALUES ($1, $2, $3, $4, $5, $6)`

// Refreshes are destructive by (movie, country): updated payloads can add,
// remove, or silently modify rows, so old rows cannot be matched key-by-key.
const deleteOptionsSQL = `
DELETE FROM streaming_options WHERE movie_id = $1 AND country_code = $2`

func (r *OptionsRepo) ListByMovieCountry(ctx context.Context, movieID, countryCode string) ([]model.StreamingOption, error) {
	rows, err := r.db.Query(ctx, `
SELECT id, movie_id, country_code, service_id, link, expires_soon, expires_on
FROM streaming_options
WHERE movie_id = $1 AND country_code = $2
ORDER BY id`, movieID, countryCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.StreamingOption
	for rows.Next() {
		var o model.StreamingOption
		if err := rows.Scan(&o.ID, &o.MovieID, &o.CountryCode, &o.ServiceID, &o.Link, &o.ExpiresSoon, &o.ExpiresOn); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
