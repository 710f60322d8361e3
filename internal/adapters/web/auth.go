package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"agent-portal/internal/core"
	"agent-portal/internal/portal"
	"agent-portal/internal/session"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// sessionCookie carries a signed reference to a server-side session record.
// The upstream token itself never reaches the browser.
const sessionCookie = "agent_session"

type recordKey struct{}

// recordFromContext returns the session record stored in ctx, or nil.
func recordFromContext(ctx context.Context) *session.Record {
	v, _ := ctx.Value(recordKey{}).(*session.Record)
	return v
}

// jwtClaims is the JWT payload struct used for signing and parsing.
type jwtClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

func (h *Handler) signSession(rec session.Record) (string, error) {
	now := time.Now()
	claims := &jwtClaims{
		SessionID: rec.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(rec.Agent.ID),
			ExpiresAt: jwt.NewNumericDate(rec.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.jwtSecret)
}

func (h *Handler) parseSession(value string) (string, error) {
	claims := &jwtClaims{}
	token, err := jwt.ParseWithClaims(value, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return h.jwtSecret, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.SessionID == "" {
		return "", errors.New("invalid session token")
	}
	return claims.SessionID, nil
}

// lookupSession resolves the cookie to a live session record.
func (h *Handler) lookupSession(r *http.Request) (*session.Record, error) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil, session.ErrNotAuthenticated
	}
	id, err := h.parseSession(cookie.Value)
	if err != nil {
		return nil, err
	}
	return h.records.Get(r.Context(), id)
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   maxAge,
	})
}

// startSession stores a record for the upstream token and sets the cookie.
func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, res *portal.LoginResult) (session.Record, error) {
	agent := res.Agent
	if agent == nil {
		var err error
		agent, err = h.svc.Me(r.Context(), res.Token)
		if err != nil {
			h.logger.Warn("profile fetch after login failed", zap.Error(err))
			agent = &core.Agent{}
		}
	}

	rec := session.NewRecord(res.Token, *agent, h.ttl)
	if err := h.records.Put(r.Context(), rec); err != nil {
		return rec, fmt.Errorf("store session: %w", err)
	}
	signed, err := h.signSession(rec)
	if err != nil {
		return rec, fmt.Errorf("sign session: %w", err)
	}
	h.setSessionCookie(w, signed, int(h.ttl/time.Second))
	return rec, nil
}

// endSession deletes the record behind the cookie, if any, and clears the cookie.
func (h *Handler) endSession(w http.ResponseWriter, r *http.Request) {
	if rec := recordFromContext(r.Context()); rec != nil {
		if err := h.records.Delete(r.Context(), rec.ID); err != nil {
			h.logger.Warn("delete session record", zap.String("session_id", rec.ID), zap.Error(err))
		}
	} else if cookie, err := r.Cookie(sessionCookie); err == nil {
		if id, err := h.parseSession(cookie.Value); err == nil {
			_ = h.records.Delete(r.Context(), id)
		}
	}
	h.setSessionCookie(w, "", -1)
}

// RequireAuth is chi middleware that resolves the agent_session cookie to a
// session record and injects it into the request context. Returns 401 if the
// cookie is absent, invalid or expired.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec, err := h.lookupSession(r)
		if err != nil {
			writeError(w, r, "authentication required", "UNAUTHORIZED", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), recordKey{}, rec)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuthBrowser is middleware for HTML page routes. Unlike RequireAuth (which returns 401 JSON),
// this middleware redirects unauthenticated requests to /login with a 303.
func (h *Handler) RequireAuthBrowser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec, err := h.lookupSession(r)
		if err != nil {
			if !errors.Is(err, session.ErrNotAuthenticated) {
				h.setSessionCookie(w, "", -1)
			}
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		ctx := context.WithValue(r.Context(), recordKey{}, rec)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// recordTokens lets a session.Session persist its token in a session record.
type recordTokens struct {
	ctx   context.Context
	store session.RecordStore
	rec   *session.Record
}

func (t *recordTokens) Load() (string, error) { return t.rec.Token, nil }

func (t *recordTokens) Save(token string) error {
	t.rec.Token = token
	return t.store.Put(t.ctx, *t.rec)
}

func (t *recordTokens) Clear() error {
	return t.store.Delete(t.ctx, t.rec.ID)
}

type loginResponse struct {
	Agent   core.Agent `json:"agent"`
	Message string     `json:"message,omitempty"`
}

// login handles POST /api/auth/login.
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if portal.IsAuthError(err) {
			writeError(w, r, displayMessage(err, "Login failed"), "UNAUTHORIZED", http.StatusUnauthorized)
			return
		}
		h.apiFailure(w, r, err, "Login failed")
		return
	}

	rec, err := h.startSession(w, r, res)
	if err != nil {
		h.logger.Error("start session", zap.Error(err))
		writeError(w, r, "could not start session", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	writeJSON(w, loginResponse{Agent: rec.Agent, Message: res.Message})
}

// logout handles POST /api/auth/logout. It succeeds without a session.
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	h.endSession(w, r)
	w.WriteHeader(http.StatusNoContent)
}

// me handles GET /api/auth/me. It refreshes the profile from the server: a
// rejected token ends the session, while any other failure answers with the
// profile captured at login.
func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	rec := recordFromContext(r.Context())
	if rec == nil {
		writeError(w, r, "not authenticated", "UNAUTHORIZED", http.StatusUnauthorized)
		return
	}

	cp := *rec
	sess := session.New(h.svc, &recordTokens{ctx: r.Context(), store: h.records, rec: &cp}, h.logger)
	err := sess.Restore(r.Context())
	if sess.Token() == "" {
		h.setSessionCookie(w, "", -1)
		writeError(w, r, sessionExpiredMsg, "UNAUTHORIZED", http.StatusUnauthorized)
		return
	}

	if agent := sess.Agent(); agent != nil {
		cp.Agent = *agent
		if err := h.records.Put(r.Context(), cp); err != nil {
			h.logger.Warn("refresh session record", zap.Error(err))
		}
		writeJSON(w, cp.Agent)
		return
	}

	h.logger.Debug("serving cached profile", zap.Error(err))
	writeJSON(w, rec.Agent)
}
