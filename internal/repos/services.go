package repos

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"freestream-server/internal/model"
)

type ServicesRepo struct {
	db *pgxpool.Pool
}

// UpsertServices writes the service catalog and the country-service mapping
// in one transaction.
func (r *ServicesRepo) UpsertServices(ctx context.Context, services []model.Service, countryServices []model.CountryService) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin services tx: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, s := range services {
		batch.Queue(`
INSERT INTO services (id, name, home_page, theme_color_code, light_theme_image, dark_theme_image, white_image)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE SET
	name = EXCLUDED.name,
	home_page = EXCLUDED.home_page,
	theme_color_code = EXCLUDED.theme_color_code,
	light_theme_image = EXCLUDED.light_theme_image,
	dark_theme_image = EXCLUDED.dark_theme_image,
	white_image = EXCLUDED.white_image`,
			s.ID, s.Name, s.HomePage, s.ThemeColorCode, s.LightThemeImage, s.DarkThemeImage, s.WhiteImage)
	}
	for _, cs := range countryServices {
		batch.Queue(`
INSERT INTO countries_services (country_code, service_id)
VALUES ($1, $2)
ON CONFLICT (country_code, service_id) DO NOTHING`, cs.CountryCode, cs.ServiceID)
	}
	if err := flushBatch(ctx, tx, batch); err != nil {
		return fmt.Errorf("upsert services: %w", err)
	}
	return tx.Commit(ctx)
}

// CountryServiceIDs returns the service ids configured per country.
func (r *ServicesRepo) CountryServiceIDs(ctx context.Context) (map[string][]string, error) {
	rows, err := r.db.Query(ctx, `
SELECT country_code, service_id FROM countries_services ORDER BY country_code, service_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string][]string{}
	for rows.Next() {
		var country, service string
		if err := rows.Scan(&country, &service); err != nil {
			return nil, err
		}
		out[country] = append(out[country], service)
	}
	return out, rows.Err()
}
