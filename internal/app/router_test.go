package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"coach_backend/internal/config"
	"coach_backend/internal/testutil"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

type client struct {
	t      *testing.T
	router http.Handler
	token  string
}

func (c *client) do(method, path string, body interface{}) (int, envelope) {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			c.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			c.t.Fatalf("%s %s: decode %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w.Code, env
}

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Server:    config.ServerConfig{Port: "0", Mode: "test"},
		Database:  config.DatabaseConfig{Driver: "sqlite"},
		JWT:       config.JWTConfig{Secret: "router-test-secret-0123456789abcdef", ExpireTime: time.Hour},
		Storage:   config.StorageConfig{Type: "local", LocalPath: t.TempDir()},
		RateLimit: config.RateLimitConfig{MaxRequests: 1000, WindowMinutes: 1},
		AI:        config.AIConfig{BaseURL: "http://127.0.0.1:1", Model: "test"},
	}
}

func newClient(t *testing.T) *client {
	t.Helper()
	a := Build(testConfig(t), testutil.DB(t), nil)
	return &client{t: t, router: a.Router}
}

func (c *client) login(email string) {
	c.t.Helper()
	status, _ := c.do(http.MethodPost, "/api/register", map[string]string{
		"name": "Ada", "email": email, "password": "correct-horse",
	})
	if status != http.StatusCreated {
		c.t.Fatalf("register status = %d", status)
	}
	status, env := c.do(http.MethodPost, "/api/login", map[string]string{
		"email": email, "password": "correct-horse",
	})
	if status != http.StatusOK {
		c.t.Fatalf("login status = %d: %s", status, env.Message)
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &out); err != nil || out.Token == "" {
		c.t.Fatalf("login token missing: %v", err)
	}
	c.token = out.Token
}

func TestHealth(t *testing.T) {
	c := newClient(t)
	if status, _ := c.do(http.MethodGet, "/api/health", nil); status != http.StatusOK {
		t.Fatalf("health status = %d", status)
	}
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	c := newClient(t)
	if status, _ := c.do(http.MethodGet, "/api/goals", nil); status != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", status)
	}
}

func TestGoalLifecycleOverHTTP(t *testing.T) {
	c := newClient(t)
	c.login("ada@example.com")

	status, env := c.do(http.MethodPost, "/api/goals", map[string]interface{}{
		"title": "Run a half marathon", "category": "focus", "priority": "high",
	})
	if status != http.StatusCreated {
		t.Fatalf("create status = %d: %s", status, env.Message)
	}
	var goal struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &goal); err != nil || goal.ID == "" {
		t.Fatalf("goal id missing: %v", err)
	}

	status, env = c.do(http.MethodPost, "/api/goals", map[string]interface{}{
		"title": "Bad", "category": "hobby",
	})
	if status != http.StatusBadRequest || env.Error != "INVALID_CATEGORY" {
		t.Fatalf("bad category = %d %q", status, env.Error)
	}

	status, env = c.do(http.MethodPost, "/api/goals/"+goal.ID+"/progress", map[string]interface{}{
		"progress": 60, "notes": "week one",
	})
	if status != http.StatusOK {
		t.Fatalf("progress status = %d: %s", status, env.Message)
	}

	status, env = c.do(http.MethodGet, "/api/analytics", nil)
	if status != http.StatusOK {
		t.Fatalf("analytics status = %d", status)
	}
	var analytics struct {
		GoalStats struct {
			Total           int `json:"total"`
			AverageProgress int `json:"averageProgress"`
		} `json:"goalStats"`
		ProgressOverTime []json.RawMessage `json:"progressOverTime"`
	}
	if err := json.Unmarshal(env.Data, &analytics); err != nil {
		t.Fatalf("decode analytics: %v", err)
	}
	if analytics.GoalStats.Total != 1 || analytics.GoalStats.AverageProgress != 60 {
		t.Fatalf("goal stats = %+v", analytics.GoalStats)
	}
	if len(analytics.ProgressOverTime) != 1 {
		t.Fatalf("progress points = %d", len(analytics.ProgressOverTime))
	}

	other := &client{t: t, router: c.router}
	other.login("grace@example.com")
	if status, env := other.do(http.MethodGet, "/api/goals/"+goal.ID, nil); status != http.StatusForbidden {
		t.Fatalf("foreign goal = %d %q, want 403", status, env.Error)
	}
}

func TestCoachWithoutAPIKey(t *testing.T) {
	c := newClient(t)
	c.login("coachless@example.com")

	status, env := c.do(http.MethodPost, "/api/ai/coach", map[string]interface{}{
		"messages": []map[string]string{{"role": "user", "content": "hi"}},
	})
	if status != http.StatusServiceUnavailable || env.Error != "MISSING_API_KEY" {
		t.Fatalf("coach = %d %q, want 503 MISSING_API_KEY", status, env.Error)
	}
}
