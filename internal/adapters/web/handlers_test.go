package web_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"agent-portal/internal/adapters/web"
	"agent-portal/internal/app"
	"agent-portal/internal/portal"
	"agent-portal/internal/session"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

type fixture struct {
	handler http.Handler
	records *session.MemoryRecords
	revoked atomic.Bool
	noRates atomic.Bool // currency list answers 500
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{records: session.NewMemoryRecords()}

	authed := func(h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if f.revoked.Load() || r.Header.Get("Authorization") != "Bearer tok" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"success":false,"message":"Invalid token"}`))
				return
			}
			h(w, r)
		}
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/agent/login.php", func(w http.ResponseWriter, r *http.Request) {
		var body struct{ Email, Password string }
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"success":false,"message":"Invalid email or password"}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"token":"tok","agent":{"id":1,"company":"Sun Trips","email":"agent@example.com","customer_id":9}}`))
	})
	mux.HandleFunc("/agent/me.php", authed(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":1,"company":"Sun Trips Renamed","email":"agent@example.com","customer_id":9}}`))
	}))
	mux.HandleFunc("/agent/residences.php", authed(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"data":[{"residenceID":5,"passenger_name":"Ali Hassan","company_name":"Acme","sale_price":"1500","total_paid":"500","completedStep":10}]}`))
	}))
	mux.HandleFunc("/agent/residence-details.php", authed(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"data":{"residenceID":5,"passenger_name":"Ali Hassan","sale_price":1500,"total_paid":500,"completedStep":3}}`))
	}))
	mux.HandleFunc("/residence/get-currencies.php", authed(func(w http.ResponseWriter, r *http.Request) {
		if f.noRates.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"data":[{"currencyID":1,"currencyName":"AED"},{"currencyID":2,"currencyName":"USD"}]}`))
	}))
	mux.HandleFunc("/agent/residence-ledger.php", authed(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("currencyID") == "2" {
			_, _ = w.Write([]byte(`{"success":true,"data":[],"currency":"USD"}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"data":[{"residenceID":5,"main_passenger":"Ali Hassan","sale_price":"1200","residencePayment":"200","current_status":"Medical","dt":"2025-01-01 10:00:00"}],"totals":{"totalCharges":"1200","totalPaid":"200","outstandingBalance":"1000"},"currency":"AED"}`))
	}))
	upstream := httptest.NewServer(mux)
	t.Cleanup(upstream.Close)

	reg := prometheus.NewRegistry()
	svc := app.NewAppService(portal.New(upstream.URL), nil)
	f.handler = web.NewHandler(svc, f.records, web.Options{
		JWTSecret:  testSecret,
		Logger:     zap.NewNop(),
		Registerer: reg,
		Gatherer:   reg,
	})
	return f
}

func (f *fixture) do(req *http.Request, cookie *http.Cookie) *httptest.ResponseRecorder {
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "agent_session" {
			return c
		}
	}
	t.Fatal("agent_session cookie not set")
	return nil
}

func (f *fixture) login(t *testing.T) *http.Cookie {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"agent@example.com","password":"secret"}`))
	rec := f.do(req, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return sessionCookie(t, rec)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/health", nil), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestAPILogin_CookieCarriesOnlyRecordID(t *testing.T) {
	f := newFixture(t)
	cookie := f.login(t)

	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, 1, f.records.Len())

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(cookie.Value, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	assert.NotEmpty(t, claims["sid"])
	for _, v := range claims {
		assert.NotEqual(t, "tok", v)
	}
}

func TestAPILogin_Rejected(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"agent@example.com","password":"wrong"}`))
	rec := f.do(req, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid email or password", decodeError(t, rec)["error"])
	assert.Equal(t, 0, f.records.Len())
}

func TestAPILogin_Validation(t *testing.T) {
	f := newFixture(t)
	rec := f.do(httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":""}`)), nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])
	assert.Equal(t, "Please enter both email and password", body["error"])
}

func TestAPI_RequiresSession(t *testing.T) {
	f := newFixture(t)
	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/residences", nil), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", decodeError(t, rec)["code"])

	forged := &http.Cookie{Name: "agent_session", Value: "not-a-jwt"}
	rec = f.do(httptest.NewRequest(http.MethodGet, "/api/residences", nil), forged)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPIResidences(t *testing.T) {
	f := newFixture(t)
	cookie := f.login(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/residences?step=9&q=ali", nil), cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body app.DashboardResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Contract Submission", body.StepName)
	require.Len(t, body.Residences, 1)
	assert.Equal(t, "Ali Hassan", body.Residences[0].PassengerName)
	assert.Equal(t, 1, body.Stats.Completed)
}

func TestAPIResidence_BadID(t *testing.T) {
	f := newFixture(t)
	cookie := f.login(t)
	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/residences/abc", nil), cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid residence ID", decodeError(t, rec)["error"])
}

func TestAPI_UpstreamRejectionEndsSession(t *testing.T) {
	f := newFixture(t)
	cookie := f.login(t)
	f.revoked.Store(true)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/ledger", nil), cookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 0, f.records.Len())
	assert.Less(t, sessionCookie(t, rec).MaxAge, 0)

	rec = f.do(httptest.NewRequest(http.MethodGet, "/api/currencies", nil), cookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPIMe_RefreshesProfile(t *testing.T) {
	f := newFixture(t)
	cookie := f.login(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/auth/me", nil), cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sun Trips Renamed")

	f.revoked.Store(true)
	rec = f.do(httptest.NewRequest(http.MethodGet, "/api/auth/me", nil), cookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 0, f.records.Len())
}

func TestAPIChangePassword_Validation(t *testing.T) {
	f := newFixture(t)
	cookie := f.login(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/change-password",
		strings.NewReader(`{"currentPassword":"old","newPassword":"abcdef","confirmPassword":"abcdeg"}`))
	rec := f.do(req, cookie)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "New passwords do not match", body["error"])
	assert.Equal(t, "confirmPassword", body["field"])
}

func TestAPILogout(t *testing.T) {
	f := newFixture(t)
	cookie := f.login(t)

	rec := f.do(httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil), cookie)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, f.records.Len())

	rec = f.do(httptest.NewRequest(http.MethodGet, "/api/auth/me", nil), cookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDecodeJSON_BodyTooLarge(t *testing.T) {
	f := newFixture(t)
	big := `{"email":"` + strings.Repeat("a", 2<<20) + `"}`
	rec := f.do(httptest.NewRequest(http.MethodPost, "/api/auth/forgot-password", strings.NewReader(big)), nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestPages_RedirectWithoutSession(t *testing.T) {
	f := newFixture(t)
	rec := f.do(httptest.NewRequest(http.MethodGet, "/ledger", nil), nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestPages_LoginAndDashboard(t *testing.T) {
	f := newFixture(t)

	form := url.Values{"email": {"agent@example.com"}, "password": {"secret"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := f.do(req, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	cookie := sessionCookie(t, rec)

	rec = f.do(httptest.NewRequest(http.MethodGet, "/", nil), cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Sun Trips")
	assert.Contains(t, body, "Ali Hassan")
	assert.Contains(t, body, "1,000")
	assert.Contains(t, body, "Offer Letter (Submitted)")

	rec = f.do(httptest.NewRequest(http.MethodGet, "/login", nil), cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestPages_LoginFailureShowsFlash(t *testing.T) {
	f := newFixture(t)
	form := url.Values{"email": {"agent@example.com"}, "password": {"wrong"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := f.do(req, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid email or password")
	assert.Contains(t, rec.Body.String(), `value="agent@example.com"`)
}

func TestPages_UnknownStepFlash(t *testing.T) {
	f := newFixture(t)
	cookie := f.login(t)
	rec := f.do(httptest.NewRequest(http.MethodGet, "/?step=zz", nil), cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unknown step")
}

func TestPages_ResidenceDetail(t *testing.T) {
	f := newFixture(t)
	cookie := f.login(t)
	rec := f.do(httptest.NewRequest(http.MethodGet, "/residence/5", nil), cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Ali Hassan")
	assert.Contains(t, body, "Labour Card")
	assert.Contains(t, body, "3/10")
}

func TestPages_LedgerTotals(t *testing.T) {
	f := newFixture(t)
	cookie := f.login(t)
	rec := f.do(httptest.NewRequest(http.MethodGet, "/ledger?currency=1", nil), cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Ledger (AED)")
	assert.Contains(t, body, `<option value="1" selected>AED</option>`)
	assert.Contains(t, body, "Ali Hassan")
	assert.Contains(t, body, "1,200")
	assert.NotContains(t, body, "No ledger records found")
}

func TestPages_LedgerCurrencySwitch(t *testing.T) {
	f := newFixture(t)
	cookie := f.login(t)
	require.Equal(t, http.StatusOK, f.do(httptest.NewRequest(http.MethodGet, "/ledger?currency=1", nil), cookie).Code)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/ledger?currency=2", nil), cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Ledger (USD)")
	assert.Contains(t, body, `<option value="2" selected>USD</option>`)
	assert.Contains(t, body, "No ledger records found")
	assert.NotContains(t, body, "Ali Hassan")
	assert.NotContains(t, body, "1,200")
	assert.NotContains(t, body, "1,000")
}

func TestPages_LedgerCurrenciesUnavailable(t *testing.T) {
	f := newFixture(t)
	cookie := f.login(t)
	f.noRates.Store(true)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/ledger", nil), cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Failed to load currencies")
	assert.Contains(t, rec.Body.String(), "No ledger records found")

	rec = f.do(httptest.NewRequest(http.MethodGet, "/api/ledger", nil), cookie)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "Failed to load currencies", decodeError(t, rec)["error"])
}

func TestPages_ExpiredSessionRedirects(t *testing.T) {
	f := newFixture(t)
	cookie := f.login(t)
	f.revoked.Store(true)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/ledger", nil), cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?expired=1", rec.Header().Get("Location"))
	assert.Equal(t, 0, f.records.Len())

	rec = f.do(httptest.NewRequest(http.MethodGet, "/login?expired=1", nil), nil)
	assert.Contains(t, rec.Body.String(), "Your session has expired")
}

func TestPages_ResetLinkWithoutToken(t *testing.T) {
	f := newFixture(t)
	rec := f.do(httptest.NewRequest(http.MethodGet, "/reset-password?email=a@b.c", nil), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid reset link. Please request a new one.")
}

func TestPages_LogoutDeletesRecord(t *testing.T) {
	f := newFixture(t)
	cookie := f.login(t)
	rec := f.do(httptest.NewRequest(http.MethodPost, "/logout", nil), cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.Equal(t, 0, f.records.Len())
}

func TestUnknownPaths(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/no/such/page", nil), nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	rec = f.do(httptest.NewRequest(http.MethodGet, "/api/no-such", nil), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	f.do(httptest.NewRequest(http.MethodGet, "/api/health", nil), nil)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/metrics", nil), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `agent_portal_http_requests_total{code="200",method="GET",route="/api/health"} 1`)
}

func TestStaticAssets(t *testing.T) {
	f := newFixture(t)
	rec := f.do(httptest.NewRequest(http.MethodGet, "/static/app.css", nil), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
