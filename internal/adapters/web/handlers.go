package web

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"agent-portal/internal/app"
	"agent-portal/internal/session"
	webui "agent-portal/web"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const defaultSessionTTL = time.Hour

// Options configures NewHandler. Zero values fall back to safe defaults:
// a one-hour session, a no-op logger and no /metrics endpoint.
type Options struct {
	AllowedOrigins string
	JWTSecret      string
	SessionTTL     time.Duration
	CookieSecure   bool
	Logger         *zap.Logger
	Registerer     prometheus.Registerer
	Gatherer       prometheus.Gatherer
	Now            func() time.Time
}

// Handler holds the ApplicationService, the chi router and the session record store.
type Handler struct {
	svc        app.ApplicationService
	records    session.RecordStore
	router     chi.Router
	jwtSecret  []byte
	ttl        time.Duration
	secure     bool
	logger     *zap.Logger
	now        func() time.Time
	fileServer http.Handler
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, records session.RecordStore, opts Options) http.Handler {
	staticFS, err := fs.Sub(webui.Static, "static")
	if err != nil {
		panic("web/static embed sub-FS failed: " + err.Error())
	}

	h := &Handler{
		svc:        svc,
		records:    records,
		jwtSecret:  []byte(opts.JWTSecret),
		ttl:        opts.SessionTTL,
		secure:     opts.CookieSecure,
		logger:     opts.Logger,
		now:        opts.Now,
		fileServer: http.FileServer(http.FS(staticFS)),
	}
	if h.ttl <= 0 {
		h.ttl = defaultSessionTTL
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	if h.now == nil {
		h.now = time.Now
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(h.logger))
	r.Use(Recoverer(h.logger))
	if opts.Registerer != nil {
		r.Use(newHTTPMetrics(opts.Registerer).middleware)
	}
	r.Use(CORS(opts.AllowedOrigins))

	// ── Health and metrics (public) ──────────────────────────────────────────
	r.Get("/api/health", h.health)
	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	// ── Static files served at /static/* ─────────────────────────────────────
	r.Get("/static/*", func(w http.ResponseWriter, req *http.Request) {
		http.StripPrefix("/static", h.fileServer).ServeHTTP(w, req)
	})

	// ── Public API (1 MB body limit) ─────────────────────────────────────────
	r.Group(func(r chi.Router) {
		r.Use(RequestBodyLimit(1 << 20))
		r.Post("/api/auth/login", h.login)
		r.Post("/api/auth/logout", h.logout)
		r.Post("/api/auth/forgot-password", h.apiForgotPassword)
		r.Post("/api/auth/reset-password", h.apiResetPassword)
	})

	// ── Browser pages without a session ──────────────────────────────────────
	r.Group(func(r chi.Router) {
		r.Use(RequestBodyLimit(1 << 20))
		r.Get("/login", h.loginPage)
		r.Post("/login", h.loginFormSubmit)
		r.Post("/logout", h.logoutPage)
		r.Get("/forgot-password", h.forgotPasswordPage)
		r.Post("/forgot-password", h.forgotPasswordSubmit)
		r.Get("/reset-password", h.resetPasswordPage)
		r.Post("/reset-password", h.resetPasswordSubmit)
	})

	// ── Protected browser routes (redirect to /login if unauthenticated) ─────
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuthBrowser)
		r.Use(RequestBodyLimit(1 << 20))
		r.Get("/", h.dashboardPage)
		r.Get("/residence/{id}", h.residencePage)
		r.Get("/ledger", h.ledgerPage)
		r.Get("/change-password", h.changePasswordPage)
		r.Post("/change-password", h.changePasswordSubmit)
		r.Get("/test-sms", h.testSMSPage)
		r.Post("/test-sms", h.testSMSSubmit)
	})

	// ── Protected API routes (return 401 JSON if unauthenticated) ────────────
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Use(RequestBodyLimit(1 << 20))

		r.Get("/api/auth/me", h.me)
		r.Post("/api/auth/change-password", h.apiChangePassword)

		r.Get("/api/residences", h.apiListResidences)
		r.Get("/api/residences/{id}", h.apiGetResidence)
		r.Get("/api/currencies", h.apiListCurrencies)
		r.Get("/api/ledger", h.apiLedger)
		r.Post("/api/sms/test", h.apiSendTestSMS)
	})

	r.NotFound(h.notFound)

	h.router = r
	return r
}

// health reports liveness. It never calls the upstream API.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
		Time   string `json:"time"`
	}
	writeJSON(w, response{Status: "ok", Time: h.now().UTC().Format(time.RFC3339)})
}

// notFound answers unknown API paths with JSON and sends browsers to the dashboard.
func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		writeError(w, r, "not found", "NOT_FOUND", http.StatusNotFound)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid request body", "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
