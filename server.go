// Package bazaar is the HTTP API of the bazaar service.
//
// Reads are served from the response caches in the registry. Writes go to the
// store and then invalidate every cache entry the write could have changed.
package bazaar

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/always-cache/bazaar/registry"
	"github.com/always-cache/bazaar/store"
)

type Server struct {
	store     *store.Store
	caches    *registry.Caches
	apiURL    *url.URL
	bodyLimit int64
	log       zerolog.Logger
	router    chi.Router

	allowedOrigins []string
}

// NewServer builds the router. The store and the caches are owned by the caller.
func NewServer(cfg Config, st *store.Store, caches *registry.Caches) (*Server, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	apiURL, err := url.Parse(strings.TrimSuffix(cfg.APIURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api url: %w", err)
	}

	s := &Server{
		store:     st,
		caches:    caches,
		apiURL:    apiURL,
		bodyLimit: cfg.BodyLimit,
		log:       cfg.Logger.With().Str("component", "server").Logger(),

		allowedOrigins: cfg.AllowedOrigins,
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := chi.NewRouter()

	r.Use(hlog.NewHandler(s.log))
	r.Use(hlog.RequestIDHandler("req_id", "Request-Id"))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Debug().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("Served")
	}))
	r.Use(middleware.Recoverer)
	// cors allows every origin when given none
	if len(s.allowedOrigins) > 0 {
		r.Use(cors.New(cors.Options{
			AllowedOrigins: s.allowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
			AllowedHeaders: []string{"Accept", "Content-Type", apiKeyHeader, "If-None-Match"},
			ExposedHeaders: []string{"ETag", "Location"},
		}).Handler)
	}
	r.Use(middleware.Compress(5))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/status", s.status)

		r.Route("/owners", func(r chi.Router) {
			r.Get("/", s.listOwners)
			r.Post("/", s.createOwner)
			r.Get("/{id}", s.getOwner)
			r.Patch("/{id}", s.updateOwner)
			r.Delete("/{id}", s.deleteOwner)
		})

		r.Route("/shops", func(r chi.Router) {
			r.Get("/", s.listShops)
			r.Post("/", s.createShop)
			r.Get("/{id}", s.getShop)
			r.Patch("/{id}", s.updateShop)
			r.Delete("/{id}", s.deleteShop)
			r.Get("/{id}/interior_ref_list", s.getInteriorRefListByShopID)
			r.Patch("/{id}/interior_ref_list", s.updateInteriorRefListByShopID)
			r.Get("/{id}/merchandise_list", s.getMerchandiseListByShopID)
			r.Patch("/{id}/merchandise_list", s.updateMerchandiseListByShopID)
			r.Get("/{id}/transactions", s.listTransactionsByShopID)
		})

		r.Route("/interior_ref_lists", func(r chi.Router) {
			r.Get("/", s.listInteriorRefLists)
			r.Post("/", s.createInteriorRefList)
			r.Get("/{id}", s.getInteriorRefList)
			r.Patch("/{id}", s.updateInteriorRefList)
			r.Delete("/{id}", s.deleteInteriorRefList)
		})

		r.Route("/merchandise_lists", func(r chi.Router) {
			r.Get("/", s.listMerchandiseLists)
			r.Post("/", s.createMerchandiseList)
			r.Get("/{id}", s.getMerchandiseList)
			r.Patch("/{id}", s.updateMerchandiseList)
			r.Delete("/{id}", s.deleteMerchandiseList)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", s.listTransactions)
			r.Post("/", s.createTransaction)
			r.Get("/{id}", s.getTransaction)
			r.Delete("/{id}", s.deleteTransaction)
		})
	})

	s.router = r
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		getLogger(r).Error().Err(err).Msg("Database unreachable")
		http.Error(w, "Database unreachable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("Ok"))
}

// location returns the public URL of a resource path below /v1.
func (s *Server) location(format string, args ...any) string {
	return s.apiURL.String() + "/v1" + fmt.Sprintf(format, args...)
}
