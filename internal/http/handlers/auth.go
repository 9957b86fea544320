package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/polancodf2024/consulta/internal/auth"
	"github.com/polancodf2024/consulta/pkg/logging"
)

// AuthHandler exchanges the shared secret for a session token.
type AuthHandler struct {
	store    *auth.Store
	sessions *auth.SessionManager
	logger   *logging.Logger
}

func NewAuthHandler(store *auth.Store, sessions *auth.SessionManager, logger *logging.Logger) *AuthHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AuthHandler{store: store, sessions: sessions, logger: logger}
}

// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.store.Authenticate(req.Token)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.logger.Warn("login rejected", "remote_ip", r.RemoteAddr)
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	token, err := h.sessions.Issue(user)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.logger.Info("user logged in", "user", user)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"user":          user,
		"session_token": token,
	})
}
