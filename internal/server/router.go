package server

import (
	"net/http"

	"freestream-server/internal/deps"
	"freestream-server/internal/routes"
)

type Server struct {
	deps.ServerDeps
	corsOrigins []string
}

func New(d deps.ServerDeps, corsOrigins []string) *Server {
	return &Server{ServerDeps: d, corsOrigins: corsOrigins}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	sd := s.ServerDeps

	// Endpoints declared here for easy scanning
	mux.HandleFunc("GET /health", routes.Health(sd))
	mux.HandleFunc("GET /api/v1/movies", routes.MoviesList(sd))
	mux.HandleFunc("GET /api/v1/movies/search", routes.MoviesSearch(sd))
	mux.HandleFunc("GET /api/v1/movies/{id}/refresh", routes.MovieRefresh(sd))
	mux.HandleFunc("GET /api/v1/movie-posters", routes.MoviePosters(sd))
	mux.HandleFunc("GET /api/v1/streaming-options", routes.StreamingOptions(sd))

	h := withSecurityHeaders(mux)
	h = withCORS(s.corsOrigins)(h)
	return withCorrelationID(withLogging(h))
}
