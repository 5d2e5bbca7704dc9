package routes

import (
	"errors"
	"net/http"
	"strings"

	"freestream-server/internal/deps"
	"freestream-server/internal/repos"

	pkghttpx "freestream-server/pkg/httpx"
)

// MoviePosters registers GET /api/v1/movie-posters
func MoviePosters(d deps.ServerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		movieIDs := splitParam(r.URL.Query().Get("movie_ids"))
		types := splitParam(r.URL.Query().Get("types"))
		sizes := splitParam(r.URL.Query().Get("sizes"))
		if len(movieIDs) == 0 || len(types) == 0 || len(sizes) == 0 {
			pkghttpx.WriteError(w, r, pkghttpx.BadRequest("movie_ids, types, and sizes are required", nil))
			return
		}
		posters, err := d.Repo.GetMoviePosters(ctx, movieIDs, types, sizes)
		if err != nil {
			var uve *repos.UnrecognizedValueError
			if errors.As(err, &uve) {
				pkghttpx.WriteError(w, r, pkghttpx.BadRequest(uve.Error(), err))
				return
			}
			pkghttpx.WriteError(w, r, pkghttpx.Internal("failed to load movie posters", err))
			return
		}
		// {movie_id: {type: {size: link}}}
		out := map[string]map[string]map[string]string{}
		for _, p := range posters {
			byType, ok := out[p.MovieID]
			if !ok {
				byType = map[string]map[string]string{}
				out[p.MovieID] = byType
			}
			bySize, ok := byType[p.Type]
			if !ok {
				bySize = map[string]string{}
				byType[p.Type] = bySize
			}
			bySize[p.Size] = p.Link
		}
		pkghttpx.WriteJSON(w, http.StatusOK, out)
	}
}

// splitParam parses a comma-separated query value, dropping empty entries.
func splitParam(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}
