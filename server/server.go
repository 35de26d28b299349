// Package server serves the search engine as a JSON API.
package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/logging"
	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/query"
	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/readthrough"
	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/search"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

type Config struct {
	Port int `koanf:"port" validate:"gte=1,lte=65535"`
	// Explain adds the plan summary to every planned response.
	Explain bool `koanf:"explain"`
}

func DefaultConfig() Config {
	return Config{Port: 9999}
}

type Server struct {
	eng   *search.Engine
	cfg   Config
	cache *readthrough.ReadThrough
	log   zerolog.Logger
	reg   *prometheus.Registry
	m     *metrics
}

// New wraps eng. cache may be nil, in which case every request is
// computed.
func New(eng *search.Engine, cfg Config, cache *readthrough.ReadThrough) *Server {
	reg := prometheus.NewRegistry()
	return &Server{
		eng:   eng,
		cfg:   cfg,
		cache: cache,
		log:   logging.Component("server"),
		reg:   reg,
		m:     newMetrics(reg),
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/health", s.health)
	r.Handle("/metrics", promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.instrument)
		r.Get("/songs", s.cached("songs", s.songs))
		r.Get("/playlists", s.cached("playlists", s.playlists))
		r.Get("/djs", s.cached("djs", s.djs))
		r.Get("/artists", s.cached("artists", s.artists))
		r.Get("/related", s.cached("related", s.related))
		r.Get("/stats", s.cached("stats", s.stats))
		r.Get("/countries", s.cached("countries", s.countries))
	})
	return r
}

func Run(ctx context.Context, s *Server, addr string) error {
	srv := http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}

	errs := make(chan error)
	go func() { errs <- srv.ListenAndServe() }()
	s.log.Info().Str("addr", addr).Msg("listening")

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
		if err := srv.Shutdown(context.Background()); err != nil {
			return err
		}
		if err := <-errs; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

type listResponse[T any] struct {
	Build string `json:"build"`
	Plan  string `json:"plan,omitempty"`
	Rows  []T    `json:"rows"`
}

type relatedResponse struct {
	Build   string           `json:"build"`
	Seeds   []query.TrackRow `json:"seeds"`
	Related []query.TrackRow `json:"related"`
}

func list[T any](ctx context.Context, s *Server, res *search.Result[T]) (any, error) {
	rows, err := res.Collect(ctx)
	if err != nil {
		return nil, err
	}
	out := listResponse[T]{Build: s.eng.BuildID(), Rows: rows}
	if s.cfg.Explain && res.Plan() != nil {
		out.Plan = res.Plan().Explain()
	}
	return out, nil
}

type handler func(r *http.Request, p *params) (any, error)

func (s *Server) songs(r *http.Request, p *params) (any, error) {
	q := p.songQuery()
	if p.err != nil {
		return nil, p.err
	}
	res, err := s.eng.FindSongs(q)
	if err != nil {
		return nil, err
	}
	return list(r.Context(), s, res)
}

func (s *Server) playlists(r *http.Request, p *params) (any, error) {
	q := search.PlaylistQuery{Filters: p.filters(), Offset: p.int("offset"), Limit: p.int("limit")}
	if p.err != nil {
		return nil, p.err
	}
	res, err := s.eng.FindPlaylists(q)
	if err != nil {
		return nil, err
	}
	return list(r.Context(), s, res)
}

func (s *Server) djs(r *http.Request, p *params) (any, error) {
	q := search.DJQuery{Filters: p.filters(), PlaylistLimit: p.int("playlist_limit"), DJLimit: p.int("dj_limit")}
	if p.err != nil {
		return nil, p.err
	}
	res, err := s.eng.FindDJs(q)
	if err != nil {
		return nil, err
	}
	return list(r.Context(), s, res)
}

func (s *Server) artists(r *http.Request, p *params) (any, error) {
	q := search.ArtistQuery{Filters: p.filters(), Offset: p.int("offset"), Limit: p.int("limit")}
	if p.err != nil {
		return nil, p.err
	}
	res, err := s.eng.FindArtists(q)
	if err != nil {
		return nil, err
	}
	return list(r.Context(), s, res)
}

func (s *Server) related(r *http.Request, p *params) (any, error) {
	dir := p.direction()
	song, artist, limit := p.terms("song_name"), p.terms("artist_name"), p.int("limit")
	if p.err != nil {
		return nil, p.err
	}
	seeds, related, err := s.eng.FindRelatedSongs(dir, song, artist, limit)
	if err != nil {
		return nil, err
	}
	out := relatedResponse{Build: s.eng.BuildID()}
	if out.Seeds, err = seeds.Collect(r.Context()); err != nil {
		return nil, err
	}
	if out.Related, err = related.Collect(r.Context()); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Server) stats(r *http.Request, _ *params) (any, error) {
	return s.eng.Stats(r.Context())
}

func (s *Server) countries(r *http.Request, _ *params) (any, error) {
	names, err := s.eng.Countries(r.Context())
	if err != nil {
		return nil, err
	}
	return listResponse[string]{Build: s.eng.BuildID(), Rows: names}, nil
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	body := map[string]any{"status": "ok", "build": s.eng.BuildID()}
	if !s.eng.Loaded() {
		status = http.StatusServiceUnavailable
		body["status"] = "not loaded"
	}
	s.writeJSON(w, status, body)
}

// cached serves h's response from the cache when it can, and stores it
// when it can't.
func (s *Server) cached(endpoint string, h handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := readthrough.Key(endpoint, r.URL.Query(), s.eng.BuildID())
		if s.cache != nil {
			body, _, err := s.cache.Get(key)
			switch {
			case err == nil:
				defer body.Close()
				s.m.cache.WithLabelValues("hit").Inc()
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("X-Cache", "hit")
				io.Copy(w, body)
				return
			case !errors.Is(err, readthrough.ErrMiss):
				s.log.Warn().Err(err).Msg("cache read failed")
			}
			s.m.cache.WithLabelValues("miss").Inc()
		}

		out, err := h(r, &params{v: r.URL.Query()})
		if err != nil {
			s.writeError(w, err)
			return
		}
		bs, err := json.Marshal(out)
		if err != nil {
			s.writeError(w, err)
			return
		}
		var body io.Reader = bytes.NewReader(bs)
		if s.cache != nil && s.eng.BuildID() != "" {
			rc, _, err := s.cache.Set(key, body)
			if err != nil {
				s.log.Warn().Err(err).Msg("cache write failed")
				body = bytes.NewReader(bs)
			} else {
				defer rc.Close()
				body = rc
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		io.Copy(w, body)
	}
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, search.ErrNotLoaded), errors.Is(err, search.ErrNoAdjacency):
		return http.StatusServiceUnavailable
	case errors.Is(err, errBadParam),
		errors.Is(err, query.ErrAggregationOrder),
		errors.Is(err, query.ErrUnknownStage),
		errors.Is(err, query.ErrInvalidOrder):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled):
		return 499
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status >= 500 {
		s.log.Error().Err(err).Msg("request failed")
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn().Err(err).Msg("error writing response")
	}
}
