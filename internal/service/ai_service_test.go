package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"coach_backend/internal/config"
	"coach_backend/internal/model"
	"coach_backend/internal/util"
)

// fakeOpenAI answers /chat/completions with whatever reply returns and
// records the decoded request bodies.
type fakeOpenAI struct {
	mu       sync.Mutex
	requests []map[string]any
	auth     []string
	reply    func(w http.ResponseWriter, body map[string]any)
}

func (f *fakeOpenAI) start(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.requests = append(f.requests, body)
		f.auth = append(f.auth, r.Header.Get("Authorization"))
		reply := f.reply
		f.mu.Unlock()
		reply(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func (f *fakeOpenAI) setReply(reply func(http.ResponseWriter, map[string]any)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reply = reply
}

func (f *fakeOpenAI) request(i int) map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[i]
}

func (f *fakeOpenAI) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func completion(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": content}, "finish_reason": "stop"},
		},
	})
}

func jsonCompletion(t *testing.T, v any) func(http.ResponseWriter, map[string]any) {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal reply: %v", err)
	}
	return func(w http.ResponseWriter, _ map[string]any) { completion(w, string(raw)) }
}

func testAIConfig(baseURL string) config.AIConfig {
	return config.AIConfig{BaseURL: baseURL, APIKey: "test-key", Model: "chat-model", AnalysisModel: "analysis-model", TimeoutSeconds: 5}
}

func TestChatSendsMessages(t *testing.T) {
	fake := &fakeOpenAI{reply: func(w http.ResponseWriter, _ map[string]any) { completion(w, "hello there") }}
	srv := fake.start(t)
	ai := NewAIService(testAIConfig(srv.URL))

	got, err := ai.Chat(context.Background(), []AIChatMessage{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if got != "hello there" {
		t.Fatalf("Chat() = %q", got)
	}
	fake.mu.Lock()
	auth := fake.auth[0]
	fake.mu.Unlock()
	if auth != "Bearer test-key" {
		t.Fatalf("Authorization = %q", auth)
	}
	if m := fake.request(0)["model"]; m != "chat-model" {
		t.Fatalf("model = %v", m)
	}
}

func TestMissingAPIKey(t *testing.T) {
	ai := NewAIService(config.AIConfig{BaseURL: "http://127.0.0.1:1"})
	if ai.Configured() {
		t.Fatal("Configured() = true without a key")
	}
	_, err := ai.Chat(context.Background(), []AIChatMessage{{Role: "user", Content: "hi"}})
	if !errors.Is(err, util.ErrMissingAPIKey) {
		t.Fatalf("Chat() error = %v, want missing key", err)
	}

	stream, errs := ai.ChatStream(context.Background(), nil)
	for range stream {
		t.Fatal("stream produced content without a key")
	}
	if err := <-errs; !errors.Is(err, util.ErrMissingAPIKey) {
		t.Fatalf("ChatStream() error = %v, want missing key", err)
	}
}

func TestUpstreamFailureIsServiceError(t *testing.T) {
	fake := &fakeOpenAI{reply: func(w http.ResponseWriter, _ map[string]any) {
		http.Error(w, `{"error":{"message":"overloaded"}}`, http.StatusServiceUnavailable)
	}}
	srv := fake.start(t)
	ai := NewAIService(testAIConfig(srv.URL))

	_, err := ai.Chat(context.Background(), []AIChatMessage{{Role: "user", Content: "hi"}})
	if !errors.Is(err, util.ErrAIService) {
		t.Fatalf("Chat() error = %v, want AI service error", err)
	}
	if !strings.Contains(err.Error(), "503") {
		t.Fatalf("error should carry the upstream status: %v", err)
	}
}

func TestGenerateJSONUsesStrictSchema(t *testing.T) {
	fake := &fakeOpenAI{}
	fake.reply = jsonCompletion(t, model.GoalDecomposition{
		SubGoals: []model.SubGoalSuggestion{{Title: "Plan", Weight: 1}},
		Timeline: "4 weeks",
	})
	srv := fake.start(t)
	ai := NewAIService(testAIConfig(srv.URL))

	var out model.GoalDecomposition
	if err := ai.GenerateJSON(context.Background(), "analysis-model", "sys", "user", "goal_decomposition", &out); err != nil {
		t.Fatalf("GenerateJSON() error = %v", err)
	}
	if len(out.SubGoals) != 1 || out.SubGoals[0].Title != "Plan" || out.Timeline != "4 weeks" {
		t.Fatalf("decoded = %+v", out)
	}

	req := fake.request(0)
	if req["model"] != "analysis-model" {
		t.Fatalf("model = %v", req["model"])
	}
	format, _ := req["response_format"].(map[string]any)
	schema, _ := format["json_schema"].(map[string]any)
	if format["type"] != "json_schema" || schema["name"] != "goal_decomposition" || schema["strict"] != true {
		t.Fatalf("response_format = %v", format)
	}
	props := schema["schema"].(map[string]any)["properties"].(map[string]any)
	if _, ok := props["subGoals"]; !ok {
		t.Fatalf("schema lacks subGoals: %v", props)
	}
}

func TestGenerateJSONRejectsMalformedOutput(t *testing.T) {
	fake := &fakeOpenAI{reply: func(w http.ResponseWriter, _ map[string]any) { completion(w, "sure! here you go") }}
	srv := fake.start(t)
	ai := NewAIService(testAIConfig(srv.URL))

	var out model.GoalDecomposition
	err := ai.GenerateJSON(context.Background(), "", "sys", "user", "goal_decomposition", &out)
	if !errors.Is(err, util.ErrAIService) {
		t.Fatalf("GenerateJSON() error = %v, want AI service error", err)
	}
}

func TestGenerateJSONAcceptsFencedOutput(t *testing.T) {
	fake := &fakeOpenAI{reply: func(w http.ResponseWriter, _ map[string]any) {
		completion(w, "```json\n{\"subGoals\":[{\"title\":\"x\",\"weight\":2}]}\n```")
	}}
	srv := fake.start(t)
	ai := NewAIService(testAIConfig(srv.URL))

	var out model.GoalDecomposition
	if err := ai.GenerateJSON(context.Background(), "", "sys", "user", "goal_decomposition", &out); err != nil {
		t.Fatalf("GenerateJSON() error = %v", err)
	}
	if len(out.SubGoals) != 1 || out.SubGoals[0].Weight != 2 {
		t.Fatalf("decoded = %+v", out)
	}
}

func TestChatStreamForwardsDeltas(t *testing.T) {
	fake := &fakeOpenAI{reply: func(w http.ResponseWriter, body map[string]any) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, part := range []string{"Keep ", "", "going"} {
			fmt.Fprintf(w, "data: {\"choices\":[{\"delta\":{\"content\":%q}}]}\n\n", part)
		}
		fmt.Fprint(w, ": keep-alive\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}}
	srv := fake.start(t)
	ai := NewAIService(testAIConfig(srv.URL))

	stream, errs := ai.ChatStream(context.Background(), []AIChatMessage{{Role: "user", Content: "motivate me"}})
	var b strings.Builder
	for part := range stream {
		b.WriteString(part)
	}
	if err := <-errs; err != nil {
		t.Fatalf("ChatStream() error = %v", err)
	}
	if b.String() != "Keep going" {
		t.Fatalf("streamed %q", b.String())
	}
	if v := fake.request(0)["stream"]; v != true {
		t.Fatalf("stream flag = %v", v)
	}
}

func TestUpdateConfigSwapsEndpoint(t *testing.T) {
	first := &fakeOpenAI{reply: func(w http.ResponseWriter, _ map[string]any) { completion(w, "first") }}
	second := &fakeOpenAI{reply: func(w http.ResponseWriter, _ map[string]any) { completion(w, "second") }}
	srv1, srv2 := first.start(t), second.start(t)

	ai := NewAIService(testAIConfig(srv1.URL))
	ai.UpdateConfig(testAIConfig(srv2.URL))

	got, err := ai.Chat(context.Background(), []AIChatMessage{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if got != "second" || first.count() != 0 {
		t.Fatalf("Chat() = %q after reload, first server saw %d requests", got, first.count())
	}
}
