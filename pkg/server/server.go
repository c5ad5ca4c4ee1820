// Package server is a local development backend that speaks the subset of
// the hosted data API the void client uses, backed by Redis.
package server

import (
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/hirotachi/the-void/pkg/store"
	"github.com/hirotachi/the-void/pkg/utils"
	"github.com/sirupsen/logrus"
	"net/http"
	"strings"
)

type Server struct {
	Addr   string
	Store  store.Moderator
	APIKey string
	log    logrus.FieldLogger
	router *mux.Router
}

func NewServer(address string, redisClient *redis.Client, apiKey string, log logrus.FieldLogger) *Server {
	return NewServerWithStore(address, store.NewRedisStore(redisClient), apiKey, log)
}

func NewServerWithStore(address string, messageStore store.Moderator, apiKey string, log logrus.FieldLogger) *Server {
	s := &Server{
		Addr:   address,
		Store:  messageStore,
		APIKey: apiKey,
		log:    log,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests, s.requireAPIKey)
	table := r.PathPrefix(strings.TrimSuffix(utils.RestPath, "/")).Subrouter()
	table.HandleFunc("/"+utils.MessagesTable, s.handleInsert).Methods(http.MethodPost)
	table.HandleFunc("/"+utils.MessagesTable, s.handleSelect).Methods(http.MethodGet)
	table.HandleFunc("/"+utils.MessagesTable, s.handleVerify).Methods(http.MethodPatch)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "PGRST205", "relation not found: "+r.URL.Path)
	})
	return r
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Run() error {
	s.log.WithField("addr", s.Addr).Info("void dev backend listening")
	return http.ListenAndServe(s.Addr, s.router)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.log.WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
			"query":  r.URL.RawQuery,
		}).Debug("request")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.APIKey != "" && r.Header.Get(utils.APIKeyHeader) != s.APIKey {
			writeError(w, http.StatusUnauthorized, "PGRST301", "Invalid API key")
			return
		}
		next.ServeHTTP(w, r)
	})
}
