package repos

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"freestream-server/internal/model"
)

type Repository struct {
	db *pgxpool.Pool

	Movies   *MoviesRepo
	Posters  *PostersRepo
	Options  *OptionsRepo
	Services *ServicesRepo
}

func New(db *pgxpool.Pool) *Repository {
	r := &Repository{db: db}
	r.Movies = &MoviesRepo{db: db}
	r.Posters = &PostersRepo{db: db}
	r.Options = &OptionsRepo{db: db}
	r.Services = &ServicesRepo{db: db}
	return r
}

// Handlers and jobs depend on the aggregate Repository, so the sub-repo
// methods are forwarded here.
func (r *Repository) ListMoviesPage(ctx context.Context, cursorID string, limit int32) ([]model.Movie, error) {
	return r.Movies.ListMoviesPage(ctx, cursorID, limit)
}
func (r *Repository) GetMovie(ctx context.Context, id string) (model.Movie, error) {
	return r.Movies.GetMovie(ctx, id)
}
func (r *Repository) CountMovies(ctx context.Context) (int64, error) {
	return r.Movies.CountMovies(ctx)
}
func (r *Repository) GetMoviePosters(ctx context.Context, movieIDs, types, sizes []string) ([]model.MoviePoster, error) {
	return r.Posters.GetMoviePosters(ctx, movieIDs, types, sizes)
}
func (r *Repository) ListStreamingOptions(ctx context.Context, movieID, countryCode string) ([]model.StreamingOption, error) {
	return r.Options.ListByMovieCountry(ctx, movieID, countryCode)
}
func (r *Repository) UpsertServices(ctx context.Context, services []model.Service, countryServices []model.CountryService) error {
	return r.Services.UpsertServices(ctx, services, countryServices)
}
func (r *Repository) CountryServiceIDs(ctx context.Context) (map[string][]string, error) {
	return r.Services.CountryServiceIDs(ctx)
}
