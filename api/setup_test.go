package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/pedalpoint/bikerental-backend/internal/credential"
	"github.com/pedalpoint/bikerental-backend/internal/o11y"
	"github.com/pedalpoint/bikerental-backend/internal/payment"
	"github.com/pedalpoint/bikerental-backend/internal/token"
	"github.com/pedalpoint/bikerental-backend/user"
)

type testServer struct {
	api      *API
	users    *fakeUserStore
	bikes    *fakeBikeStore
	bookings *fakeBookingStore
	payments *payment.FakeClient
	tokens   *token.Manager
	hasher   credential.Hasher
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	gin.SetMode(gin.TestMode)

	us := newFakeUserStore()
	bs := newFakeBikeStore()
	bks := newFakeBookingStore(bs)
	pc := payment.NewFakeClient()
	tm := token.NewManager("test-secret")
	hasher := credential.NewBcryptHasher()

	obs := &o11y.Observability{
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Registry: prometheus.NewRegistry(),
	}

	return &testServer{
		api:      New(us, bs, bks, pc, tm, hasher, obs, "", ""),
		users:    us,
		bikes:    bs,
		bookings: bks,
		payments: pc,
		tokens:   tm,
		hasher:   hasher,
	}
}

// seedUser creates a user directly in the store and returns it with a valid
// session token.
func (ts *testServer) seedUser(t *testing.T, name string, role user.Role) (user.User, string) {
	t.Helper()

	hash, err := ts.hasher.Hash("password123")
	require.NoError(t, err)

	u := &user.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        name + "@example.com",
		PasswordHash: hash,
		Role:         role,
	}
	require.NoError(t, ts.users.Create(t.Context(), u))

	tok, err := ts.tokens.Issue(*u)
	require.NoError(t, err)
	return *u, tok
}

func (ts *testServer) do(t *testing.T, method, path, tok string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	w := httptest.NewRecorder()
	ts.api.Router().ServeHTTP(w, req)
	return w
}

func (ts *testServer) GET(t *testing.T, path, tok string) *httptest.ResponseRecorder {
	return ts.do(t, http.MethodGet, path, tok, nil)
}

func (ts *testServer) POST(t *testing.T, path, tok string, body any) *httptest.ResponseRecorder {
	return ts.do(t, http.MethodPost, path, tok, body)
}

func (ts *testServer) PUT(t *testing.T, path, tok string, body any) *httptest.ResponseRecorder {
	return ts.do(t, http.MethodPut, path, tok, body)
}

func (ts *testServer) PATCH(t *testing.T, path, tok string, body any) *httptest.ResponseRecorder {
	return ts.do(t, http.MethodPatch, path, tok, body)
}

func (ts *testServer) DELETE(t *testing.T, path, tok string) *httptest.ResponseRecorder {
	return ts.do(t, http.MethodDelete, path, tok, nil)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}
