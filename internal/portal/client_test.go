package portal_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"agent-portal/internal/portal"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Login(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/agent/login.php", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Empty(t, r.Header.Get("Authorization"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "agent@example.com", body["email"])
		assert.Equal(t, "secret", body["password"])
		_, _ = w.Write([]byte(`{"success":true,"message":"Welcome","token":"tok-1","agent":{"id":1,"company":"Sun Trips","customer_id":42,"email":"agent@example.com"}}`))
	})

	res, err := portal.New(srv.URL).Login(context.Background(), "agent@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", res.Token)
	assert.Equal(t, "Welcome", res.Message)
	assert.Equal(t, 42, res.Agent.CustomerID)
}

func TestClient_Login_NoToken(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"agent":{"id":1}}`))
	})
	_, err := portal.New(srv.URL).Login(context.Background(), "a", "b")
	assert.ErrorIs(t, err, portal.ErrNoToken)
}

func TestClient_Login_Rejected(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"success":false,"message":"Invalid email or password"}`))
	})
	_, err := portal.New(srv.URL).Login(context.Background(), "a", "b")
	require.Error(t, err)

	var apiErr *portal.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.True(t, portal.IsAuthError(err))
	assert.Equal(t, "Invalid email or password", portal.Message(err, "Login failed"))
}

func TestClient_UnsuccessfulBody(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false}`))
	})
	_, err := portal.New(srv.URL).WithToken("t").ListResidences(context.Background(), portal.ResidenceQuery{})
	var apiErr *portal.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.Unsuccessful())
	assert.False(t, portal.IsAuthError(err))
	assert.Equal(t, "Failed to load residences", apiErr.Message)
}

func TestClient_ServerErrorWithoutJSON(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	_, err := portal.New(srv.URL).WithToken("t").Me(context.Background())
	var apiErr *portal.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "Failed to load agent profile", apiErr.Message)
}

func TestClient_ListResidences_Query(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/agent/residences.php", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		assert.Equal(t, "5", r.URL.Query().Get("completedStep"))
		_, _ = w.Write([]byte(`{"success":true,"data":{"data":[{"residenceID":1},{"residenceID":2}],"total":2}}`))
	})
	step := 5
	page, err := portal.New(srv.URL).WithToken("tok").ListResidences(context.Background(), portal.ResidenceQuery{CompletedStep: &step})
	require.NoError(t, err)
	assert.Len(t, page.Residences, 2)
	assert.Equal(t, 2, page.Pagination.Total)
}

func TestClient_ListResidences_NoFilter(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, present := r.URL.Query()["completedStep"]
		assert.False(t, present)
		_, _ = w.Write([]byte(`{"success":true,"data":[]}`))
	})
	page, err := portal.New(srv.URL).WithToken("tok").ListResidences(context.Background(), portal.ResidenceQuery{})
	require.NoError(t, err)
	assert.Empty(t, page.Residences)
}

func TestClient_GetResidence(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/agent/residence-details.php", r.URL.Path)
		assert.Equal(t, "77", r.URL.Query().Get("id"))
		_, _ = w.Write([]byte(`{"success":true,"data":{"residenceID":77,"completedStep":6}}`))
	})
	d, err := portal.New(srv.URL).WithToken("tok").GetResidence(context.Background(), 77)
	require.NoError(t, err)
	assert.Equal(t, 77, d.ResidenceID)
	assert.Equal(t, 6, d.CompletedStep)
}

func TestClient_GetLedger_Query(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/agent/residence-ledger.php", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("currencyID"))
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"success":true,"data":[],"currency":"USD"}`))
	})
	page, err := portal.New(srv.URL).WithToken("tok").GetLedger(context.Background(), portal.LedgerQuery{CurrencyID: 2})
	require.NoError(t, err)
	assert.Equal(t, "USD", page.Currency)
}

func TestClient_ResetPassword(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		var body portal.ResetPasswordRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, portal.ResetPasswordRequest{Token: "rt", Email: "a@b.c", Password: "newpass"}, body)
		_, _ = w.Write([]byte(`{"success":true,"message":"Password reset"}`))
	})
	msg, err := portal.New(srv.URL).ResetPassword(context.Background(), portal.ResetPasswordRequest{Token: "rt", Email: "a@b.c", Password: "newpass"})
	require.NoError(t, err)
	assert.Equal(t, "Password reset", msg)
}

func TestClient_SendSMS(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "971501234567", body["recipient"])
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"success":false,"error":"Gateway down","response":{"code":17}}`))
	})
	c := portal.New("http://unused.invalid", portal.WithSMSURL(srv.URL)).WithToken("tok")
	res, err := c.SendSMS(context.Background(), "971501234567", "hi")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "Gateway down", res.Error)
	assert.JSONEq(t, `{"code":17}`, string(res.Response))
}

func TestClient_Metrics(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"data":[]}`))
	})
	reg := prometheus.NewRegistry()
	c := portal.New(srv.URL, portal.WithMetrics(portal.NewMetrics(reg))).WithToken("tok")
	_, err := c.ListResidences(context.Background(), portal.ResidenceQuery{})
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(reg, "agent_portal_upstream_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
