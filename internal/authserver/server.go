// Package authserver implements the account API the storefront talks to:
// login, current user, registration and e-mail confirmation.
package authserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ecoshop/internal/authapi"
	"ecoshop/internal/log"
	"ecoshop/internal/models"
	"ecoshop/internal/repo"
	"ecoshop/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Config struct {
	JWT JWTConfig
	// LoginLimit caps login attempts per IP and minute; 0 disables it.
	LoginLimit int
	// ConfirmURL is the link template sent for e-mail confirmation, %s is the token.
	ConfirmURL string
}

type Server struct {
	users UserStore
	cfg   Config
	log   zerolog.Logger
	now   func() time.Time
}

func New(users UserStore, cfg Config) *Server {
	if cfg.ConfirmURL == "" {
		cfg.ConfirmURL = "/email-verification?token=%s"
	}
	return &Server{
		users: users,
		cfg:   cfg,
		log:   log.WithComponent("authserver"),
		now:   time.Now,
	}
}

// Routes mounts the API at the root and again under /api.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	s.mountUsers(r)
	r.Route("/api", s.mountUsers)
	return r
}

func (s *Server) mountUsers(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.With(s.loginLimit()).Post("/login", s.handleLogin)
		r.Get("/me", s.handleMe)
		r.Post("/register", s.handleRegister)
		r.Get("/confirm-email-change", s.handleConfirmEmail)
	})
	r.With(s.loginLimit()).Post("/auth/login", s.handleLogin)
}

func (s *Server) loginLimit() func(http.Handler) http.Handler {
	if s.cfg.LoginLimit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		s.cfg.LoginLimit,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "Zu viele Anmeldeversuche. Bitte später erneut versuchen.")
		}),
	)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request handled")
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string      `json:"accessToken"`
	User        models.User `json:"user"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	email := strings.TrimSpace(req.Email)
	if email == "" {
		email = strings.TrimSpace(req.Username)
	}
	if email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password required")
		return
	}

	user, err := s.users.UserByEmail(r.Context(), email)
	if err != nil {
		if !errors.Is(err, repo.ErrUserNotFound) {
			s.log.Error().Err(err).Msg("load user")
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token, err := s.cfg.JWT.GenerateToken(user, s.now())
	if err != nil {
		s.log.Error().Err(err).Msg("sign token")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.Header().Set("Authorization", "Bearer "+token)
	writeJSON(w, http.StatusOK, loginResponse{AccessToken: token, User: user.User()})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	header := r.Header.Get("Authorization")
	if len(header) <= 7 || !strings.EqualFold(header[:7], "bearer ") {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	claims, err := s.cfg.JWT.VerifyToken(strings.TrimSpace(header[7:]))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	user, err := s.users.UserByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			writeError(w, http.StatusUnauthorized, "user not found")
			return
		}
		s.log.Error().Err(err).Msg("load user")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req authapi.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if err := authapi.ValidateLogin(req.Email, req.Password); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.FirstName == "" || req.LastName == "" {
		writeError(w, http.StatusBadRequest, "firstName and lastName required")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		s.log.Error().Err(err).Msg("hash password")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	user := &models.Account{
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		ConfirmToken: uuid.NewString(),
	}
	if err := s.users.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, repo.ErrEmailTaken) {
			writeError(w, http.StatusConflict, "E-Mail ist bereits registriert.")
			return
		}
		s.log.Error().Err(err).Msg("create user")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	// письма не отправляем, ссылка подтверждения только в логе
	s.log.Info().
		Int64("user_id", user.ID).
		Str("confirm_url", fmt.Sprintf(s.cfg.ConfirmURL, user.ConfirmToken)).
		Msg("user registered")
	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) handleConfirmEmail(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if token == "" {
		writeError(w, http.StatusBadRequest, "token required")
		return
	}
	user, err := s.users.ConfirmEmail(r.Context(), token)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "unknown or used token")
			return
		}
		s.log.Error().Err(err).Msg("confirm email")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Email verified", "user": user.User()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
