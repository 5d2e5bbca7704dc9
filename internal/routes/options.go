package routes

import (
	"net/http"

	"freestream-server/internal/deps"

	pkghttpx "freestream-server/pkg/httpx"
)

// StreamingOptions registers GET /api/v1/streaming-options
func StreamingOptions(d deps.ServerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		movieID := r.URL.Query().Get("movie_id")
		country := r.URL.Query().Get("country")
		if movieID == "" || country == "" {
			pkghttpx.WriteError(w, r, pkghttpx.BadRequest("movie_id and country are required", nil))
			return
		}
		items, err := d.Repo.ListStreamingOptions(ctx, movieID, country)
		if err != nil {
			pkghttpx.WriteError(w, r, pkghttpx.Internal("failed to load streaming options", err))
			return
		}
		pkghttpx.WriteJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
	}
}
