package routes

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"freestream-server/internal/deps"

	pkgcatalog "freestream-server/pkg/catalog"
	pkghttpx "freestream-server/pkg/httpx"
)

// MoviesList registers GET /api/v1/movies
func MoviesList(d deps.ServerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		cursor := r.URL.Query().Get("cursor")
		limitStr := r.URL.Query().Get("limit")
		if limitStr == "" {
			limitStr = "20"
		}
		lim64, err := strconv.ParseInt(limitStr, 10, 32)
		if err != nil || lim64 <= 0 || lim64 > 100 {
			pkghttpx.WriteError(w, r, pkghttpx.BadRequest("invalid limit", err))
			return
		}
		afterID := ""
		if cursor != "" {
			if d.Signer == nil {
				pkghttpx.WriteError(w, r, pkghttpx.Internal("cursor signer not configured", nil))
				return
			}
			id, decErr := d.Signer.DecodeMoviesCursor(cursor)
			if decErr != nil {
				pkghttpx.WriteError(w, r, pkghttpx.BadRequest("invalid cursor", decErr))
				return
			}
			afterID = id
		}
		cacheKey := "movies:cursor:" + cursor + ":limit:" + strconv.FormatInt(lim64, 10)
		if cached, ok := d.Cache.Get(ctx, cacheKey); ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(cached))
			return
		}
		items, err := d.Repo.ListMoviesPage(ctx, afterID, int32(lim64))
		if err != nil {
			pkghttpx.WriteError(w, r, pkghttpx.Internal("failed to list movies", err))
			return
		}
		total, err := d.Repo.CountMovies(ctx)
		if err != nil {
			pkghttpx.WriteError(w, r, pkghttpx.Internal("failed to count movies", err))
			return
		}
		resp := map[string]any{
			"items": items,
			"count": len(items),
			"total": total,
		}
		if len(items) == int(lim64) && d.Signer != nil {
			resp["next_cursor"] = d.Signer.EncodeMoviesCursor(items[len(items)-1].ID)
		}
		b, _ := json.Marshal(resp)
		_ = d.Cache.Set(ctx, cacheKey, string(b), 2*time.Minute)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(b)
	}
}

// MoviesSearch registers GET /api/v1/movies/search
func MoviesSearch(d deps.ServerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		country := r.URL.Query().Get("country")
		title := r.URL.Query().Get("title")
		if country == "" || title == "" {
			pkghttpx.WriteError(w, r, pkghttpx.BadRequest("country and title are required", nil))
			return
		}
		if d.Catalog == nil {
			pkghttpx.WriteError(w, r, pkghttpx.Internal("catalog client not configured", nil))
			return
		}
		shows, err := d.Catalog.SearchShowsByTitle(ctx, country, title)
		if err != nil {
			pkghttpx.WriteError(w, r, catalogError("title search failed", err))
			return
		}
		pkghttpx.WriteJSON(w, http.StatusOK, map[string]any{"items": shows, "count": len(shows)})
	}
}

// MovieRefresh registers GET /api/v1/movies/{id}/refresh. It fetches the
// show's current upstream record, persists it through the same destructive
// refresh protocol the sync jobs use, and returns the stored movie.
func MovieRefresh(d deps.ServerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id := r.PathValue("id")
		if id == "" {
			pkghttpx.WriteError(w, r, pkghttpx.BadRequest("missing movie id", nil))
			return
		}
		if d.Catalog == nil || d.Transform == nil {
			pkghttpx.WriteError(w, r, pkghttpx.Internal("catalog client not configured", nil))
			return
		}
		show, err := d.Catalog.GetShow(ctx, id)
		if err != nil {
			pkghttpx.WriteError(w, r, catalogError("show fetch failed", err))
			return
		}
		if err := d.Repo.CommitBatch(ctx, d.Transform.TransformShow(show)); err != nil {
			pkghttpx.WriteError(w, r, pkghttpx.Internal("failed to save movie data", err))
			return
		}
		movie, err := d.Repo.GetMovie(ctx, show.ID)
		if err != nil {
			pkghttpx.WriteError(w, r, pkghttpx.Internal("failed to load movie", err))
			return
		}
		pkghttpx.WriteJSON(w, http.StatusOK, movie)
	}
}

// catalogError maps an upstream client error onto an API error, forwarding
// 4xx statuses and hiding everything else behind a 502.
func catalogError(msg string, err error) *pkghttpx.HTTPError {
	if se, ok := err.(*pkgcatalog.StatusError); ok {
		if se.StatusCode == http.StatusNotFound {
			return pkghttpx.NotFound(msg, err)
		}
		if se.StatusCode >= 400 && se.StatusCode < 500 {
			return pkghttpx.BadRequest(msg, err)
		}
	}
	return &pkghttpx.HTTPError{StatusCode: http.StatusBadGateway, Message: msg, Code: "upstream_error", Err: err}
}
