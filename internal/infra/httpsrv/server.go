package httpsrv

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/salman-dev-app/telegram-ai-assistant/internal/config"
	"github.com/salman-dev-app/telegram-ai-assistant/internal/domain/model"
)

// Gateway is the administrative slice of the dispatch coordinator.
type Gateway interface {
	Mute(conversationID, actorID int64, minutes int) model.Mute
	Unmute(conversationID, actorID int64)
	ResetWarnings(conversationID, actorID int64)
}

type BrandAdmin interface {
	Reload() error
	SetStatus(status model.OwnerStatus)
}

type Server struct {
	srv    *http.Server
	logger *zap.Logger
}

func NewServer(cfg config.HTTPConfig, gateway Gateway, brand BrandAdmin, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))
	r.Use(requestLogger(logger))

	RegisterRoutes(r, cfg.AdminToken, gateway, brand)

	return &Server{
		srv: &http.Server{
			Addr:              cfg.Addr,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

func RegisterRoutes(r chi.Router, adminToken string, gateway Gateway, brand BrandAdmin) {
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(bearerAuth(adminToken))
		r.Post("/conversations/{id}/mute", muteHandler(gateway))
		r.Post("/conversations/{id}/unmute", unmuteHandler(gateway))
		r.Post("/conversations/{id}/reset-warnings", resetWarningsHandler(gateway))
		r.Post("/brand/reload", brandReloadHandler(brand))
		r.Post("/brand/status", brandStatusHandler(brand))
	})
}

func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("http server listening", zap.String("addr", s.srv.Addr))

	errCh := make(chan error, 1)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	}
}

type muteRequest struct {
	ActorID int64 `json:"actor_id"`
	Minutes int   `json:"minutes"`
}

type actorRequest struct {
	ActorID int64 `json:"actor_id"`
}

type statusRequest struct {
	Status string `json:"status"`
}

func muteHandler(gateway Gateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conversationID, ok := conversationIDParam(w, r)
		if !ok {
			return
		}

		var req muteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ActorID == 0 {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "actor_id is required")
			return
		}

		mute := gateway.Mute(conversationID, req.ActorID, req.Minutes)
		writeJSON(w, http.StatusOK, map[string]any{
			"conversation_id": conversationID,
			"actor_id":        req.ActorID,
			"unmute_at":       mute.UnmuteAt,
		})
	}
}

func unmuteHandler(gateway Gateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conversationID, ok := conversationIDParam(w, r)
		if !ok {
			return
		}

		var req actorRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ActorID == 0 {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "actor_id is required")
			return
		}

		gateway.Unmute(conversationID, req.ActorID)
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	}
}

func resetWarningsHandler(gateway Gateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conversationID, ok := conversationIDParam(w, r)
		if !ok {
			return
		}

		var req actorRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ActorID == 0 {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "actor_id is required")
			return
		}

		gateway.ResetWarnings(conversationID, req.ActorID)
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	}
}

func brandReloadHandler(brand BrandAdmin) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if err := brand.Reload(); err != nil {
			writeError(w, http.StatusInternalServerError, "RELOAD_FAILED", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	}
}

func brandStatusHandler(brand BrandAdmin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req statusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid body")
			return
		}

		switch model.OwnerStatus(req.Status) {
		case model.OwnerOnline, model.OwnerBusy, model.OwnerAway:
			brand.SetStatus(model.OwnerStatus(req.Status))
			writeJSON(w, http.StatusOK, map[string]any{"status": req.Status})
		default:
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "status must be online, busy or away")
		}
	}
}

func conversationIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id == 0 {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid conversation id")
		return 0, false
	}
	return id, true
}

func bearerAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				writeError(w, http.StatusServiceUnavailable, "ADMIN_DISABLED", "admin token is not configured")
				return
			}
			got, ok := extractBearerToken(r.Header.Get("Authorization"))
			if !ok || got != token {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid bearer token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func extractBearerToken(value string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(value), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return parts[1], true
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Duration("duration", time.Since(start)))
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
