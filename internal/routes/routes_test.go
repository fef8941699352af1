package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/config"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/database"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/mailer"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/tenant"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm/logger"
)

const adminEmail = "admin@example.com"

type captureMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (m *captureMailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *captureMailer) lastBody() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return ""
	}
	return m.sent[len(m.sent)-1].Body
}

type server struct {
	app  *fiber.App
	mail *captureMailer
}

type result struct {
	status int
	body   map[string]any
}

func (r result) data(t *testing.T, key string) map[string]any {
	t.Helper()
	data, ok := r.body["data"].(map[string]any)
	require.True(t, ok, "missing data in %v", r.body)
	v, ok := data[key].(map[string]any)
	require.True(t, ok, "missing data.%s in %v", key, r.body)
	return v
}

func newServer(t *testing.T) *server {
	t.Helper()

	db, err := database.Open(config.DriverSQLite, "file:"+uuid.NewString()+"?mode=memory&cache=shared", logger.Silent)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		AppEnv:          "test",
		AppURL:          "https://shop.example.com",
		CORSOrigins:     "*",
		JWTSecret:       "routes-test-secret",
		JWTExpiresIn:    time.Hour,
		PasswordHasher:  "bcrypt",
		BcryptCost:      bcrypt.MinCost,
		AdminEmails:     adminEmail,
		RateLimitMax:    1000,
		RateLimitWindow: time.Minute,
	}

	registry := tenant.NewRegistry()
	registry.Register(&tenant.Config{TenantID: "acme", Name: "Acme"})
	registry.Register(&tenant.Config{TenantID: "globex", Name: "Globex"})

	mail := &captureMailer{}
	h, err := NewHandlers(db, cfg, registry, mail)
	require.NoError(t, err)

	app := NewApp(cfg)
	Setup(app, cfg, h)
	return &server{app: app, mail: mail}
}

func (s *server) do(t *testing.T, method, path, tenantID, token string, body any) result {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if tenantID != "" {
		req.Header.Set(middleware.TenantHeader, tenantID)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := result{status: resp.StatusCode}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out.body), string(raw))
	}
	return out
}

func (s *server) signup(t *testing.T, tenantID, email string) string {
	t.Helper()
	res := s.do(t, "POST", "/api/v1/users/signup", tenantID, "", signupBody(email))
	require.Equal(t, fiber.StatusCreated, res.status, res.body)
	token, _ := res.body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func signupBody(email string) map[string]any {
	return map[string]any{
		"name":            "Test User",
		"email":           email,
		"dob":             "1990-04-12",
		"password":        "pass1234",
		"passwordConfirm": "pass1234",
	}
}

func TestSignup_ReturnsTokenAndUser(t *testing.T) {
	s := newServer(t)

	res := s.do(t, "POST", "/api/v1/users/signup", "acme", "", signupBody("Ada@Example.com "))
	require.Equal(t, fiber.StatusCreated, res.status, res.body)
	assert.Equal(t, "success", res.body["status"])
	assert.NotEmpty(t, res.body["token"])

	user := res.data(t, "user")
	assert.Equal(t, "ada@example.com", user["email"])
	assert.Equal(t, "user", user["role"])
	assert.NotContains(t, user, "password")

	me := s.do(t, "GET", "/api/v1/users/me", "acme", res.body["token"].(string), nil)
	require.Equal(t, fiber.StatusOK, me.status, me.body)
	assert.Equal(t, "ada@example.com", me.data(t, "data")["email"])
}

func TestSignup_DuplicateEmailConflicts(t *testing.T) {
	s := newServer(t)
	s.signup(t, "acme", "dup@example.com")

	res := s.do(t, "POST", "/api/v1/users/signup", "acme", "", signupBody("dup@example.com"))
	assert.Equal(t, fiber.StatusConflict, res.status)
	assert.Equal(t, "fail", res.body["status"])

	// Another tenant has its own user namespace.
	s.signup(t, "globex", "dup@example.com")
}

func TestSignup_InvalidBody(t *testing.T) {
	s := newServer(t)

	body := signupBody("bad@example.com")
	body["passwordConfirm"] = "different"
	res := s.do(t, "POST", "/api/v1/users/signup", "acme", "", body)
	assert.Equal(t, fiber.StatusBadRequest, res.status)
	assert.Contains(t, res.body["message"], "passwordConfirm")
}

func TestLogin(t *testing.T) {
	s := newServer(t)
	s.signup(t, "acme", "login@example.com")

	ok := s.do(t, "POST", "/api/v1/users/login", "acme", "", map[string]any{"email": "login@example.com", "password": "pass1234"})
	assert.Equal(t, fiber.StatusOK, ok.status, ok.body)
	assert.NotEmpty(t, ok.body["token"])

	wrong := s.do(t, "POST", "/api/v1/users/login", "acme", "", map[string]any{"email": "login@example.com", "password": "nope12345"})
	assert.Equal(t, fiber.StatusUnauthorized, wrong.status)
	assert.Equal(t, "Incorrect email or password", wrong.body["message"])

	missing := s.do(t, "POST", "/api/v1/users/login", "acme", "", map[string]any{"email": "login@example.com"})
	assert.Equal(t, fiber.StatusBadRequest, missing.status)

	otherTenant := s.do(t, "POST", "/api/v1/users/login", "globex", "", map[string]any{"email": "login@example.com", "password": "pass1234"})
	assert.Equal(t, fiber.StatusUnauthorized, otherTenant.status)
}

func TestTokenIsBoundToTenant(t *testing.T) {
	s := newServer(t)
	token := s.signup(t, "acme", "bound@example.com")

	res := s.do(t, "GET", "/api/v1/users/me", "globex", token, nil)
	assert.Equal(t, fiber.StatusUnauthorized, res.status)
}

func TestProtect_RequiresToken(t *testing.T) {
	s := newServer(t)

	res := s.do(t, "GET", "/api/v1/products", "acme", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, res.status)
	assert.Equal(t, "You are not logged in! Please log in to get access.", res.body["message"])

	garbage := s.do(t, "GET", "/api/v1/products", "acme", "not-a-jwt", nil)
	assert.Equal(t, fiber.StatusUnauthorized, garbage.status)
}

func TestTenantHeaderRequired(t *testing.T) {
	s := newServer(t)

	res := s.do(t, "POST", "/api/v1/users/login", "", "", map[string]any{})
	assert.Equal(t, fiber.StatusBadRequest, res.status)
	assert.Equal(t, "X-Tenant-ID header is required", res.body["message"])

	unknown := s.do(t, "POST", "/api/v1/users/login", "initech", "", map[string]any{})
	assert.Equal(t, fiber.StatusBadRequest, unknown.status)

	health := s.do(t, "GET", "/api/health", "", "", nil)
	assert.Equal(t, fiber.StatusOK, health.status)
	assert.Equal(t, "connected", health.body["db"])
	assert.EqualValues(t, 2, health.body["tenant_count"])
}

func TestUnknownRoute(t *testing.T) {
	s := newServer(t)

	res := s.do(t, "GET", "/api/v1/nothing-here", "acme", "", nil)
	assert.Equal(t, fiber.StatusNotFound, res.status)
	assert.Equal(t, "Can't find /api/v1/nothing-here on this server!", res.body["message"])

	// No tenant is needed to learn that a route does not exist.
	res = s.do(t, "GET", "/api/v1/nothing-here", "", "", nil)
	assert.Equal(t, fiber.StatusNotFound, res.status)
	res = s.do(t, "DELETE", "/api/v2/users", "", "", nil)
	assert.Equal(t, fiber.StatusNotFound, res.status)
}

func TestForgotPassword_IgnoresRequestHost(t *testing.T) {
	s := newServer(t)
	s.signup(t, "acme", "victim@example.com")

	req := httptest.NewRequest("POST", "/api/v1/users/forgot-password",
		strings.NewReader(`{"email":"victim@example.com"}`))
	req.Host = "attacker.example"
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-Host", "attacker.example")
	req.Header.Set(middleware.TenantHeader, "acme")

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp.Body.Close()

	body := s.mail.lastBody()
	assert.Contains(t, body, "https://shop.example.com/api/v1/users/reset-password/")
	assert.NotContains(t, body, "attacker.example")
}

func TestProductAndReviewFlow(t *testing.T) {
	s := newServer(t)
	owner := s.signup(t, "acme", "owner@example.com")
	other := s.signup(t, "acme", "other@example.com")
	admin := s.signup(t, "acme", adminEmail)

	created := s.do(t, "POST", "/api/v1/products", "acme", owner, map[string]any{
		"title":           "Desk Lamp",
		"price":           40,
		"discountPercent": 25,
		"description":     "A lamp for the desk",
	})
	require.Equal(t, fiber.StatusCreated, created.status, created.body)
	product := created.data(t, "data")
	assert.Equal(t, "desk-lamp", product["slug"])
	assert.EqualValues(t, 30, product["discountedPrice"])
	assert.EqualValues(t, 0, product["ratingQuantity"])
	assert.EqualValues(t, 1, product["ratingAverage"])
	productURL := "/api/v1/products/" + product["id"].(string)

	// Admins cannot create, only users.
	res := s.do(t, "POST", "/api/v1/products", "acme", admin, map[string]any{"title": "Admin Item", "price": 5, "description": "x"})
	assert.Equal(t, fiber.StatusForbidden, res.status)

	// Only the owner may patch.
	res = s.do(t, "PATCH", productURL, "acme", other, map[string]any{"price": 1})
	assert.Equal(t, fiber.StatusForbidden, res.status)
	res = s.do(t, "PATCH", productURL, "acme", owner, map[string]any{"title": "Brass Desk Lamp"})
	require.Equal(t, fiber.StatusOK, res.status, res.body)
	assert.Equal(t, "brass-desk-lamp", res.data(t, "data")["slug"])

	// Reviews drive the rating summary.
	reviewsURL := productURL + "/reviews"
	res = s.do(t, "POST", reviewsURL, "acme", other, map[string]any{"review": "Bright", "rating": 4})
	require.Equal(t, fiber.StatusCreated, res.status, res.body)
	reviewURL := reviewsURL + "/" + res.data(t, "data")["id"].(string)

	res = s.do(t, "POST", reviewsURL, "acme", other, map[string]any{"review": "Again", "rating": 2})
	assert.Equal(t, fiber.StatusConflict, res.status)

	res = s.do(t, "POST", reviewsURL, "acme", owner, map[string]any{"review": "Mine", "rating": 2})
	require.Equal(t, fiber.StatusCreated, res.status, res.body)

	res = s.do(t, "GET", productURL, "acme", other, nil)
	require.Equal(t, fiber.StatusOK, res.status, res.body)
	detail := res.data(t, "data")
	assert.EqualValues(t, 2, detail["ratingQuantity"])
	assert.EqualValues(t, 3, detail["ratingAverage"])
	assert.Len(t, detail["reviews"], 2)

	// The review author, not the product owner, controls the review.
	res = s.do(t, "PATCH", reviewURL, "acme", owner, map[string]any{"rating": 1})
	assert.Equal(t, fiber.StatusForbidden, res.status)
	res = s.do(t, "PATCH", reviewURL, "acme", other, map[string]any{"rating": 5})
	require.Equal(t, fiber.StatusOK, res.status, res.body)

	res = s.do(t, "GET", reviewsURL+"?rating[gte]=3", "acme", other, nil)
	require.Equal(t, fiber.StatusOK, res.status, res.body)
	assert.EqualValues(t, 1, res.body["results"])

	res = s.do(t, "DELETE", reviewURL, "acme", admin, nil)
	assert.Equal(t, fiber.StatusNoContent, res.status)

	res = s.do(t, "GET", productURL, "acme", owner, nil)
	require.Equal(t, fiber.StatusOK, res.status)
	assert.EqualValues(t, 1, res.data(t, "data")["ratingQuantity"])
	assert.EqualValues(t, 2, res.data(t, "data")["ratingAverage"])

	// Products are invisible across tenants.
	globex := s.signup(t, "globex", "owner@example.com")
	res = s.do(t, "GET", productURL, "globex", globex, nil)
	assert.Equal(t, fiber.StatusNotFound, res.status)

	res = s.do(t, "DELETE", productURL, "acme", other, nil)
	assert.Equal(t, fiber.StatusForbidden, res.status)
	res = s.do(t, "DELETE", productURL, "acme", owner, nil)
	assert.Equal(t, fiber.StatusNoContent, res.status)
	res = s.do(t, "GET", productURL, "acme", owner, nil)
	assert.Equal(t, fiber.StatusNotFound, res.status)
}

func TestProductList_QueryFeatures(t *testing.T) {
	s := newServer(t)
	owner := s.signup(t, "acme", "lister@example.com")

	for _, p := range []struct {
		title string
		price float64
	}{{"Alpha Chair", 10}, {"Bravo Chair", 20}, {"Charlie Chair", 30}} {
		res := s.do(t, "POST", "/api/v1/products", "acme", owner, map[string]any{
			"title": p.title, "price": p.price, "description": "seat",
		})
		require.Equal(t, fiber.StatusCreated, res.status, res.body)
	}

	res := s.do(t, "GET", "/api/v1/products?price[gte]=20&sort=-price&fields=title,price", "acme", owner, nil)
	require.Equal(t, fiber.StatusOK, res.status, res.body)
	assert.EqualValues(t, 2, res.body["results"])
	items := res.body["data"].(map[string]any)["data"].([]any)
	first := items[0].(map[string]any)
	assert.Equal(t, "Charlie Chair", first["title"])
	assert.NotContains(t, first, "description")

	res = s.do(t, "GET", "/api/v1/products?limit=1&page=2&sort=price", "acme", owner, nil)
	require.Equal(t, fiber.StatusOK, res.status)
	items = res.body["data"].(map[string]any)["data"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "Bravo Chair", items[0].(map[string]any)["title"])

	res = s.do(t, "GET", "/api/v1/products?secret[gte]=1", "acme", owner, nil)
	assert.Equal(t, fiber.StatusBadRequest, res.status)

	res = s.do(t, "GET", "/api/v1/products/top-5-products", "acme", owner, nil)
	require.Equal(t, fiber.StatusOK, res.status, res.body)
	assert.EqualValues(t, 3, res.body["results"])
}

func TestUserAdministration(t *testing.T) {
	s := newServer(t)
	user := s.signup(t, "acme", "member@example.com")
	admin := s.signup(t, "acme", adminEmail)

	res := s.do(t, "GET", "/api/v1/users", "acme", user, nil)
	assert.Equal(t, fiber.StatusForbidden, res.status)

	res = s.do(t, "GET", "/api/v1/users?sort=email", "acme", admin, nil)
	require.Equal(t, fiber.StatusOK, res.status, res.body)
	assert.EqualValues(t, 2, res.body["results"])

	res = s.do(t, "GET", "/api/v1/users/get-user/not-a-uuid", "acme", admin, nil)
	assert.Equal(t, fiber.StatusBadRequest, res.status)

	res = s.do(t, "GET", "/api/v1/users/get-user/"+uuid.NewString(), "acme", admin, nil)
	assert.Equal(t, fiber.StatusNotFound, res.status)

	res = s.do(t, "GET", "/api/v1/users/user-within/10/center/not,coords/unit/km", "acme", admin, nil)
	assert.Equal(t, fiber.StatusBadRequest, res.status)
}

func TestPasswordLifecycle(t *testing.T) {
	s := newServer(t)
	s.signup(t, "acme", "forgetful@example.com")

	res := s.do(t, "POST", "/api/v1/users/forgot-password", "acme", "", map[string]any{"email": "nobody@example.com"})
	assert.Equal(t, fiber.StatusNotFound, res.status)

	res = s.do(t, "POST", "/api/v1/users/forgot-password", "acme", "", map[string]any{"email": "forgetful@example.com"})
	require.Equal(t, fiber.StatusOK, res.status, res.body)
	assert.Equal(t, "Token sent to email!", res.body["message"])

	const resetPrefix = "https://shop.example.com/api/v1/users/reset-password/"
	body := s.mail.lastBody()
	i := strings.Index(body, resetPrefix)
	require.GreaterOrEqual(t, i, 0, body)
	raw := body[i+len(resetPrefix):][:64]

	reset := map[string]any{"password": "newpass99", "passwordConfirm": "newpass99"}
	res = s.do(t, "PATCH", "/api/v1/users/reset-password/"+raw, "acme", "", reset)
	require.Equal(t, fiber.StatusCreated, res.status, res.body)
	assert.NotEmpty(t, res.body["token"])

	res = s.do(t, "PATCH", "/api/v1/users/reset-password/"+raw, "acme", "", reset)
	assert.Equal(t, fiber.StatusBadRequest, res.status)

	res = s.do(t, "POST", "/api/v1/users/login", "acme", "", map[string]any{"email": "forgetful@example.com", "password": "newpass99"})
	require.Equal(t, fiber.StatusOK, res.status)
	fresh := res.body["token"].(string)

	res = s.do(t, "GET", "/api/v1/users/me", "acme", fresh, nil)
	assert.Equal(t, fiber.StatusOK, res.status)

	res = s.do(t, "PATCH", "/api/v1/users/update-password", "acme", fresh, map[string]any{
		"passwordCurrent": "wrong-one",
		"password":        "another99",
		"passwordConfirm": "another99",
	})
	assert.Equal(t, fiber.StatusUnauthorized, res.status)
}

func TestDeleteMe_DeactivatesAccount(t *testing.T) {
	s := newServer(t)
	token := s.signup(t, "acme", "leaver@example.com")

	res := s.do(t, "PATCH", "/api/v1/users/delete-me", "acme", token, nil)
	assert.Equal(t, fiber.StatusNoContent, res.status)

	res = s.do(t, "GET", "/api/v1/users/me", "acme", token, nil)
	assert.Equal(t, fiber.StatusUnauthorized, res.status)

	res = s.do(t, "POST", "/api/v1/users/signup", "acme", "", signupBody("leaver@example.com"))
	assert.Equal(t, fiber.StatusConflict, res.status)
}
