package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashwinyue/travacasa/internal/config"
	"github.com/ashwinyue/travacasa/internal/handler"
	"github.com/ashwinyue/travacasa/internal/repository"
	"github.com/ashwinyue/travacasa/internal/service"
	"github.com/ashwinyue/travacasa/internal/service/chatbot"
	"github.com/ashwinyue/travacasa/internal/service/session"
	"github.com/ashwinyue/travacasa/internal/service/websearch"
	"github.com/ashwinyue/travacasa/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type brokenStore struct{ session.Store }

func (brokenStore) History(context.Context, string) ([]session.Exchange, error) {
	return nil, errors.New("connection refused")
}

// newTestServices 不配置任何外部提供者，回复全部来自兜底模板，网页搜索只返回固定建议
func newTestServices(t *testing.T) (*service.Services, []string) {
	return newTestServicesWith(t, nil)
}

func newTestServicesWith(t *testing.T, mutate func(cfg *config.Config)) (*service.Services, []string) {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.AI.Ollama.BaseURL = ""
	cfg.AI.HuggingFace.APIKey = ""
	cfg.AI.OpenAI.APIKey = ""
	cfg.WebSearch.Enabled = false
	if mutate != nil {
		mutate(cfg)
	}

	db := testutil.NewTestDB(t)
	ids := []string{}
	for _, l := range testutil.SeedListings(t, db) {
		ids = append(ids, l.ID)
	}
	return service.NewServices(context.Background(), repository.NewRepositories(db), cfg, nil), ids
}

func newTestRouter(t *testing.T, ping handler.PingFunc) (*gin.Engine, *service.Services, []string) {
	t.Helper()
	svc, ids := newTestServices(t)
	return SetupRouter(handler.NewHandlers(svc, ping)), svc, ids
}

func do(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestChat_MessageRequired(t *testing.T) {
	r, _, _ := newTestRouter(t, nil)

	tests := []struct {
		name string
		body any
	}{
		{"missing body", nil},
		{"empty message", map[string]string{"message": ""}},
		{"whitespace", map[string]string{"message": "   "}},
		{"punctuation only", map[string]string{"message": "?!"}},
		{"wrong type", map[string]int{"message": 42}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodPost, "/api/chatbot", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, `{"success":false,"message":"Message is required"}`, w.Body.String())
		})
	}
}

func TestChat_PropertySearch(t *testing.T) {
	r, _, _ := newTestRouter(t, nil)

	w := do(r, http.MethodPost, "/api/chatbot", map[string]string{
		"message":   "Show me cheap apartments in Paris",
		"sessionId": "web-1",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "web-1", w.Header().Get("X-Session-ID"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	out := decode(t, w)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, chatbot.SourceFallback, out["aiSource"])
	assert.Equal(t, true, out["hasDatabaseData"])
	assert.Equal(t, "search", out["intent"])
	assert.Contains(t, out["message"], "I found 2 properties")

	results, ok := out["databaseResults"].([]any)
	require.True(t, ok)
	require.Len(t, results, 2)
	first := results[0].(map[string]any)
	assert.Equal(t, "Paris", first["location"])
	assert.LessOrEqual(t, first["price"].(float64), 150.0)
}

func TestChat_NoSearchOmitsResults(t *testing.T) {
	r, _, _ := newTestRouter(t, nil)

	w := do(r, http.MethodPost, "/api/chatbot", map[string]string{"message": "hello there"})
	require.Equal(t, http.StatusOK, w.Code)

	out := decode(t, w)
	assert.Equal(t, "greeting", out["intent"])
	assert.Equal(t, false, out["hasDatabaseData"])
	assert.NotContains(t, out, "databaseResults")
	assert.NotEmpty(t, out["sessionId"])
	assert.Equal(t, out["sessionId"], w.Header().Get("X-Session-ID"))
}

func TestChat_SearchWithoutMatches(t *testing.T) {
	r, _, _ := newTestRouter(t, nil)

	w := do(r, http.MethodPost, "/api/chatbot", map[string]string{"message": "Find me an igloo in Reykjavik"})
	require.Equal(t, http.StatusOK, w.Code)

	out := decode(t, w)
	assert.Equal(t, false, out["hasDatabaseData"])
	assert.Equal(t, []any{}, out["databaseResults"])
}

func TestChat_SlowProviderAnswersBeforeWriteTimeout(t *testing.T) {
	release := make(chan struct{})
	ollama := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer ollama.Close()
	defer close(release)

	svc, _ := newTestServicesWith(t, func(cfg *config.Config) {
		cfg.AI.Ollama.BaseURL = ollama.URL
		cfg.AI.Ollama.Timeout = 30
		cfg.Chatbot.GenerateTimeout = 1
		cfg.Server.WriteTimeout = 3
	})
	require.Equal(t, []string{"ollama"}, svc.Chatbot.Providers())

	api := httptest.NewUnstartedServer(SetupRouter(handler.NewHandlers(svc, nil)))
	api.Config.WriteTimeout = time.Duration(svc.Config.Server.WriteTimeout) * time.Second
	api.Start()
	defer api.Close()

	client := &http.Client{Timeout: 10 * time.Second}
	start := time.Now()
	resp, err := client.Post(api.URL+"/api/chatbot", "application/json", strings.NewReader(`{"message":"hello"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Less(t, time.Since(start), api.Config.WriteTimeout)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, chatbot.SourceFallback, out["aiSource"])
	assert.Equal(t, "greeting", out["intent"])
	assert.NotEmpty(t, out["message"])
}

func TestChat_CheapSearchWithoutMatchesUsesPricing(t *testing.T) {
	r, _, _ := newTestRouter(t, nil)

	w := do(r, http.MethodPost, "/api/chatbot", map[string]string{"message": "Show me cheap igloos in Reykjavik"})
	require.Equal(t, http.StatusOK, w.Code)

	out := decode(t, w)
	assert.Equal(t, "search", out["intent"])
	assert.Equal(t, false, out["hasDatabaseData"])
	msg := out["message"].(string)
	matched := false
	for _, tpl := range chatbot.Templates(chatbot.IntentPricing) {
		matched = matched || strings.HasPrefix(msg, tpl)
	}
	assert.True(t, matched, "unexpected reply %q", msg)
}

func TestWebSearch(t *testing.T) {
	r, _, _ := newTestRouter(t, nil)

	t.Run("query required", func(t *testing.T) {
		for _, path := range []string{"/api/web-search", "/api/web-search?query=%20%20"} {
			w := do(r, http.MethodGet, path, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, `{"success":false,"message":"Search query is required"}`, w.Body.String())
		}
	})

	t.Run("suggestions when engine disabled", func(t *testing.T) {
		w := do(r, http.MethodGet, "/api/web-search?query=Lake%20Como", nil)
		require.Equal(t, http.StatusOK, w.Code)

		out := decode(t, w)
		assert.Equal(t, true, out["success"])
		assert.Equal(t, "Lake Como", out["query"])
		assert.Equal(t, "travel", out["type"])
		assert.Equal(t, websearch.SourceSuggestions, out["source"])
		assert.EqualValues(t, 3, out["count"])
		first := out["results"].([]any)[0].(map[string]any)
		assert.Equal(t, "Visit Lake Como - Travel Guide", first["title"])
		assert.Equal(t, "https://www.example-travel-site.com/destinations/Lake-Como", first["url"])
	})
}

func TestVoiceSearch(t *testing.T) {
	r, _, _ := newTestRouter(t, nil)

	t.Run("transcript required", func(t *testing.T) {
		for _, path := range []string{"/api/voice-search", "/api/voice-search-enhanced"} {
			w := do(r, http.MethodPost, path, map[string]string{"transcript": " "})
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, `{"success":false,"message":"Transcript is required"}`, w.Body.String())
		}
	})

	t.Run("analytics", func(t *testing.T) {
		w := do(r, http.MethodPost, "/api/voice-search", map[string]any{"transcript": "villas in malibu", "confidence": 0.9, "timestamp": 1700000000000})
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true,"message":"Voice search analytics recorded","processedTranscript":"villas in malibu"}`, w.Body.String())
	})

	t.Run("enhanced with matches", func(t *testing.T) {
		w := do(r, http.MethodPost, "/api/voice-search-enhanced", map[string]any{"transcript": "um villas in Malibu", "confidence": 0.82})
		require.Equal(t, http.StatusOK, w.Code)

		out := decode(t, w)
		assert.Equal(t, "Enhanced voice search processed", out["message"])
		assert.Equal(t, "um villas in Malibu", out["originalTranscript"])
		assert.Equal(t, 0.82, out["confidence"])
		query := out["processedQuery"].(map[string]any)
		assert.Equal(t, "malibu", query["location"])
		assert.Equal(t, "villa", query["type"])

		results := out["databaseResults"].([]any)
		require.Len(t, results, 1)
		assert.Equal(t, "Malibu Beach Villa", results[0].(map[string]any)["title"])
		assert.Equal(t, []any{}, out["webResults"])
		assert.NotEmpty(t, out["suggestions"])
	})

	t.Run("enhanced without matches", func(t *testing.T) {
		w := do(r, http.MethodPost, "/api/voice-search-enhanced", map[string]any{"transcript": "hotels near Kyoto"})
		require.Equal(t, http.StatusOK, w.Code)

		out := decode(t, w)
		assert.Equal(t, []any{}, out["databaseResults"])
		assert.Len(t, out["webResults"], 3)
		assert.Equal(t, websearch.SourceSuggestions, out["webSource"])
		assert.Equal(t, []any{
			map[string]any{"text": "budget hotels", "type": "category", "count": float64(0)},
		}, out["suggestions"])
	})
}

func TestChat_StoreFailure(t *testing.T) {
	r, svc, _ := newTestRouter(t, nil)
	svc.Chatbot = chatbot.NewService(brokenStore{}, failingSearcher{}, chatbot.NewGenerator(chatbot.NewPromptBuilder(5), chatbot.NewSeededFallback(1)))

	w := do(r, http.MethodPost, "/api/chatbot", map[string]string{"message": "hello"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"AI service unavailable. Please try again later."}`, w.Body.String())
}

type failingSearcher struct{}

func (failingSearcher) Search(context.Context, string) ([]chatbot.ListingResult, error) {
	return nil, errors.New("search down")
}

func TestChat_SessionLifecycle(t *testing.T) {
	r, svc, _ := newTestRouter(t, nil)

	w := do(r, http.MethodPost, "/api/chatbot", map[string]string{"message": "hi", "sessionId": "s-life"})
	require.Equal(t, http.StatusOK, w.Code)

	history, err := svc.Sessions.History(context.Background(), "s-life")
	require.NoError(t, err)
	assert.Len(t, history, 2)

	w = do(r, http.MethodDelete, "/api/chatbot/sessions/s-life", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	history, err = svc.Sessions.History(context.Background(), "s-life")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestChatbotStatus(t *testing.T) {
	r, _, _ := newTestRouter(t, nil)

	w := do(r, http.MethodGet, "/api/chatbot/status", nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, []any{}, data["providers"])
	assert.Equal(t, "memory", data["session_store"])
	assert.EqualValues(t, 10, data["history_limit"])
	assert.Equal(t, false, data["web_search"])
}

func TestListings(t *testing.T) {
	r, _, ids := newTestRouter(t, nil)

	t.Run("list with search", func(t *testing.T) {
		w := do(r, http.MethodGet, "/api/listings?search=paris&page_size=2", nil)
		require.Equal(t, http.StatusOK, w.Code)

		data := decode(t, w)["data"].(map[string]any)
		page := data["pagination"].(map[string]any)
		assert.EqualValues(t, 3, page["total"])
		assert.EqualValues(t, 2, page["total_pages"])
		assert.Len(t, page["items"], 2)
		assert.Equal(t, "paris", data["search"])
	})

	t.Run("get", func(t *testing.T) {
		w := do(r, http.MethodGet, "/api/listings/"+ids[0], nil)
		require.Equal(t, http.StatusOK, w.Code)

		data := decode(t, w)["data"].(map[string]any)
		assert.Equal(t, "Eiffel View Apartment", data["title"])
	})

	t.Run("not found", func(t *testing.T) {
		w := do(r, http.MethodGet, "/api/listings/does-not-exist", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"success":false,"message":"Listing you requested for does not exist!"}`, w.Body.String())
	})

	t.Run("popular", func(t *testing.T) {
		w := do(r, http.MethodGet, "/api/popular-searches", nil)
		require.Equal(t, http.StatusOK, w.Code)

		data := decode(t, w)["data"].(map[string]any)
		locations := data["locations"].([]any)
		require.NotEmpty(t, locations)
		assert.Equal(t, "Paris", locations[0].(map[string]any)["name"])
		assert.EqualValues(t, 3, locations[0].(map[string]any)["count"])
	})
}

func TestHealth(t *testing.T) {
	r, _, _ := newTestRouter(t, func(context.Context) error { return nil })
	w := do(r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	r, _, _ = newTestRouter(t, func(context.Context) error { return errors.New("down") })
	w = do(r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
