package gemini_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dental_backend/internal/feature/secondopinion/adapters/gemini"
	"dental_backend/internal/feature/secondopinion/domain"
	"dental_backend/internal/feature/secondopinion/domain/entity"
)

const resultJSON = `{"observation":"No obvious decay visible.","potential_issues":["Mild plaque buildup near gumline"],"recommendations":["Schedule a cleaning within 3 months"],"disclaimer":"This is not a substitute for an in-person exam."}`

// candidateBody はGemini REST APIのgenerateContent応答を組み立てます。
func candidateBody(t *testing.T, text string) []byte {
	t.Helper()

	body, err := json.Marshal(map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"role":  "model",
					"parts": []any{map[string]any{"text": text}},
				},
				"finishReason": "STOP",
			},
		},
	})
	require.NoError(t, err)
	return body
}

// collectValues はJSONツリー内の文字列と数値をすべて集めます。
func collectValues(v any, strs *[]string, nums *[]float64) {
	switch n := v.(type) {
	case map[string]any:
		for _, c := range n {
			collectValues(c, strs, nums)
		}
	case []any:
		for _, c := range n {
			collectValues(c, strs, nums)
		}
	case string:
		*strs = append(*strs, n)
	case float64:
		*nums = append(*nums, n)
	}
}

// fakeGemini はgenerateContentエンドポイントを模したテストサーバーを起動します。
func fakeGemini(t *testing.T, handler func(w http.ResponseWriter, r *http.Request, body map[string]any)) (*httptest.Server, *int32) {
	t.Helper()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		var body map[string]any
		_ = json.Unmarshal(raw, &body)
		handler(w, r, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func newAnalyzer(t *testing.T, apiKey, baseURL string) *gemini.GeminiAnalyzer {
	t.Helper()

	cfg := gemini.Config{
		APIKey:      apiKey,
		Model:       "gemini-test",
		Temperature: gemini.DefaultTemperature,
		BaseURL:     baseURL,
	}
	a, err := gemini.NewGeminiAnalyzer(context.Background(), cfg, http.DefaultClient)
	require.NoError(t, err)
	return a
}

func sampleRequest() entity.AnalysisRequest {
	return entity.AnalysisRequest{
		Image:    []byte("\x89PNG fake image bytes"),
		MIMEType: "image/png",
		Concern:  "What is this dark spot?",
	}
}

func TestGeminiAnalyzer_Analyze_Success(t *testing.T) {
	t.Parallel()

	req := sampleRequest()
	srv, hits := fakeGemini(t, func(w http.ResponseWriter, r *http.Request, body map[string]any) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "models/gemini-test:generateContent"), "path: %s", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		var strs []string
		var nums []float64
		collectValues(body, &strs, &nums)
		assert.Contains(t, strs, base64.StdEncoding.EncodeToString(req.Image))
		assert.Contains(t, strs, "image/png")
		assert.Contains(t, strs, gemini.BuildPrompt(req.Concern))
		assert.Contains(t, strs, gemini.SystemInstruction)
		assert.Contains(t, strs, gemini.ResponseMIMEType)

		foundTemperature := false
		for _, n := range nums {
			if n > 0.299 && n < 0.301 {
				foundTemperature = true
			}
		}
		assert.True(t, foundTemperature, "temperature 0.3 not found in %v", nums)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(candidateBody(t, "\n"+resultJSON+"\n"))
	})

	a := newAnalyzer(t, "test-key", srv.URL)
	got, err := a.Analyze(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
	assert.Equal(t, &entity.AnalysisResult{
		Observation:     "No obvious decay visible.",
		PotentialIssues: []string{"Mild plaque buildup near gumline"},
		Recommendations: []string{"Schedule a cleaning within 3 months"},
		Disclaimer:      "This is not a substitute for an in-person exam.",
	}, got)
}

func TestGeminiAnalyzer_Analyze_MissingCredential(t *testing.T) {
	t.Parallel()

	srv, hits := fakeGemini(t, func(w http.ResponseWriter, r *http.Request, body map[string]any) {
		_, _ = w.Write(candidateBody(t, resultJSON))
	})

	a := newAnalyzer(t, "", srv.URL)
	got, err := a.Analyze(context.Background(), sampleRequest())

	assert.ErrorIs(t, err, domain.ErrMissingCredential)
	assert.Nil(t, got)
	assert.Equal(t, int32(0), atomic.LoadInt32(hits), "no request must reach the provider")
}

func TestGeminiAnalyzer_Analyze_ProviderError(t *testing.T) {
	t.Parallel()

	srv, hits := fakeGemini(t, func(w http.ResponseWriter, r *http.Request, body map[string]any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`))
	})

	a := newAnalyzer(t, "bad-key", srv.URL)
	got, err := a.Analyze(context.Background(), sampleRequest())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAnalysisFailed)
	assert.NotErrorIs(t, err, domain.ErrMalformedResponse)
	assert.Nil(t, got)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits), "single attempt, no retry")
}

func TestGeminiAnalyzer_Analyze_MalformedResponse(t *testing.T) {
	t.Parallel()

	srv, _ := fakeGemini(t, func(w http.ResponseWriter, r *http.Request, body map[string]any) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(candidateBody(t, `{"observation":"only one field"}`))
	})

	a := newAnalyzer(t, "test-key", srv.URL)
	got, err := a.Analyze(context.Background(), sampleRequest())

	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
	assert.ErrorIs(t, err, domain.ErrAnalysisFailed)
	assert.Nil(t, got)
}

func TestResponseSchema(t *testing.T) {
	t.Parallel()

	s := gemini.ResponseSchema()
	required := []string{"observation", "potential_issues", "recommendations", "disclaimer"}

	assert.ElementsMatch(t, required, s.Required)
	assert.Equal(t, required, s.PropertyOrdering)
	require.Len(t, s.Properties, 4)
	assert.NotNil(t, s.Properties["potential_issues"].Items)
	assert.NotNil(t, s.Properties["recommendations"].Items)
	assert.Nil(t, s.Properties["observation"].Items)
}

func TestBuildPrompt(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		`Patient's primary concern: "I have sensitivity when drinking cold water.". Please analyze the attached dental scan.`,
		gemini.BuildPrompt("I have sensitivity when drinking cold water."),
	)
}
