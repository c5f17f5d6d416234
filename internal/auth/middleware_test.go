package auth

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/auth-gateway/internal/domain"
	"github.com/spec-kit/auth-gateway/internal/observability"
	apperrors "github.com/spec-kit/auth-gateway/pkg/util"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{header: "Bearer abc.def.ghi", token: "abc.def.ghi", ok: true},
		{header: "bearer abc", token: "abc", ok: true},
		{header: "  Bearer   abc  ", token: "abc", ok: true},
		{header: "", ok: false},
		{header: "Bearer", ok: false},
		{header: "Bearer ", ok: false},
		{header: "Basic dXNlcjpwdw==", ok: false},
		{header: "abc.def.ghi", ok: false},
		{header: "BearerX abc", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			token, ok := BearerToken(tt.header)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.token, token)
		})
	}
}

func TestAuthenticateRequest(t *testing.T) {
	tm := newTestTokenManager(t)
	a := NewAuthenticator(tm, zap.NewNop(), nil)
	token, _, err := tm.Issue("alice", []string{"USER"}, testNow, testTTL)
	require.NoError(t, err)

	identity, err := a.AuthenticateRequest("Bearer "+token, testNow)
	require.NoError(t, err)
	require.NotNil(t, identity)
	assert.Equal(t, "alice", identity.Subject())
	assert.Equal(t, []string{"USER"}, identity.Roles())

	identity, err = a.AuthenticateRequest("", testNow)
	assert.NoError(t, err)
	assert.Nil(t, identity, "no header is anonymous")

	identity, err = a.AuthenticateRequest("Token "+token, testNow)
	assert.NoError(t, err)
	assert.Nil(t, identity, "foreign scheme is anonymous")

	_, err = a.AuthenticateRequest("Bearer "+token, testNow.Add(testTTL))
	assert.ErrorIs(t, err, ErrTokenExpired)

	_, err = a.AuthenticateRequest("Bearer not-a-jwt", testNow)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

// newPipelineApp wires authenticate -> gate -> handler the same way the HTTP
// layer does, echoing the resolved subject.
func newPipelineApp(t *testing.T, req Requirement, metrics *observability.Metrics) (*fiber.App, *TokenManager) {
	t.Helper()
	tm := newTestTokenManager(t)
	authn := NewAuthenticator(tm, zap.NewNop(), metrics)
	authn.now = func() time.Time { return testNow }
	gate := NewGate(zap.NewNop(), metrics)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).JSON(de.Body())
		},
	})
	app.Use(authn.Handle)
	app.Get("/resource", gate.Require(req), func(c *fiber.Ctx) error {
		subject := "anonymous"
		if identity, ok := IdentityFromContext(c); ok {
			subject = identity.Subject()
		}
		return c.JSON(fiber.Map{"subject": subject})
	})
	return app, tm
}

func doGet(t *testing.T, app *fiber.App, authorization string) (int, map[string]string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/resource", nil)
	if authorization != "" {
		req.Header.Set(fiber.HeaderAuthorization, authorization)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := map[string]string{}
	require.NoError(t, json.Unmarshal(raw, &body), string(raw))
	return resp.StatusCode, body
}

func TestPipeline(t *testing.T) {
	t.Run("admin token on admin route", func(t *testing.T) {
		app, tm := newPipelineApp(t, RequiresAnyOf(domain.RoleAdmin), nil)
		token, _, err := tm.Issue("root", []string{"ADMIN"}, testNow, testTTL)
		require.NoError(t, err)

		status, body := doGet(t, app, "Bearer "+token)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "root", body["subject"])
	})

	t.Run("user token on admin route is forbidden", func(t *testing.T) {
		app, tm := newPipelineApp(t, RequiresAnyOf(domain.RoleAdmin), nil)
		token, _, err := tm.Issue("alice", []string{"USER"}, testNow, testTTL)
		require.NoError(t, err)

		status, body := doGet(t, app, "Bearer "+token)
		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, "access denied", body["error"])
	})

	t.Run("anonymous on protected route is unauthorized", func(t *testing.T) {
		app, _ := newPipelineApp(t, RequiresAnyOf(domain.RoleUser), nil)

		status, body := doGet(t, app, "")
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "authentication required", body["error"])
	})

	t.Run("anonymous on public route passes", func(t *testing.T) {
		app, _ := newPipelineApp(t, Public(), nil)

		status, body := doGet(t, app, "Basic dXNlcjpwdw==")
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "anonymous", body["subject"])
	})

	t.Run("bad token stops even public routes", func(t *testing.T) {
		app, _ := newPipelineApp(t, Public(), nil)

		status, body := doGet(t, app, "Bearer x.y.z")
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, MsgAuthenticationFailed, body["error"])
	})
}

func TestPipelineFailuresShareOneMessage(t *testing.T) {
	metrics := observability.NewMetrics()
	app, tm := newPipelineApp(t, RequiresAnyOf(domain.RoleUser), metrics)

	expired, _, err := tm.Issue("alice", []string{"USER"}, testNow.Add(-2*testTTL), testTTL)
	require.NoError(t, err)
	other, err := NewTokenManager(strings.Repeat("z", MinSigningKeyLen), testTTL)
	require.NoError(t, err)
	forged, _, err := other.Issue("alice", []string{"USER"}, testNow, testTTL)
	require.NoError(t, err)

	for name, header := range map[string]string{
		"expired":   "Bearer " + expired,
		"forged":    "Bearer " + forged,
		"malformed": "Bearer garbage",
	} {
		t.Run(name, func(t *testing.T) {
			status, body := doGet(t, app, header)
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Equal(t, map[string]string{"error": MsgAuthenticationFailed}, body)
			assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AuthFailures().WithLabelValues(name)))
		})
	}
}
