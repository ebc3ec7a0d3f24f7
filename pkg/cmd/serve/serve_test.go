package serve

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/trackforge/trackforge/pkg/generator"
	"github.com/trackforge/trackforge/pkg/preset"
	"github.com/trackforge/trackforge/pkg/track"
)

func newTestServer(t *testing.T, cfg *Config) *httptest.Server {
	t.Helper()
	if cfg == nil {
		cfg = &Config{}
	}
	presets, err := preset.New(t.TempDir())
	if err != nil {
		t.Fatalf("preset.New() err = %v; want nil", err)
	}
	s := &server{
		cfg:     cfg,
		presets: presets,
		cache:   generator.NewCache(),
	}
	srv := httptest.NewServer(s.router())
	t.Cleanup(srv.Close)
	return srv
}

func request(t *testing.T, method, url string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()
	var reqBody *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("couldn't marshal body: %v", err)
		}
		reqBody = bytes.NewReader(b)
	} else {
		reqBody = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		t.Fatalf("couldn't create request: %v", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("couldn't do request: %v", err)
	}
	defer resp.Body.Close()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatalf("couldn't read response: %v", err)
	}
	return resp, buf.Bytes()
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, nil)
	resp, body := request(t, http.MethodGet, srv.URL+"/health", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /health = %d; want %d", resp.StatusCode, http.StatusOK)
	}
	var got map[string]string
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("couldn't unmarshal response: %v", err)
	}
	if got["status"] != "healthy" || got["mode"] != generator.ModeSimulate {
		t.Fatalf("GET /health = %v; want healthy/simulate", got)
	}
}

func TestGenerateTrack(t *testing.T) {
	srv := newTestServer(t, nil)
	req := map[string]any{
		"text_input":       "City lights are calling",
		"genre":            "rock",
		"duration_seconds": 180,
		"structure": map[string]any{
			"intro":        true,
			"verse_count":  2,
			"chorus_count": 2,
			"bridge":       true,
			"outro":        true,
		},
	}
	resp, body := request(t, http.MethodPost, srv.URL+"/tracks/generate", req, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST /tracks/generate = %d; want %d: %s", resp.StatusCode, http.StatusOK, body)
	}
	var result generator.Result
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("couldn't unmarshal response: %v", err)
	}
	if result.Status != "simulated" {
		t.Fatalf("status = %q; want %q", result.Status, "simulated")
	}
	if result.Genre != "rock" || result.DurationSeconds != 180 {
		t.Fatalf("result = %s/%d; want rock/180", result.Genre, result.DurationSeconds)
	}
	if result.Prompt == "" {
		t.Fatal("result prompt is empty")
	}
}

func TestGenerateTrackWithPreset(t *testing.T) {
	srv := newTestServer(t, nil)
	req := map[string]any{
		"text_input":  "City lights are calling",
		"preset_name": "rock_anthem",
	}
	resp, body := request(t, http.MethodPost, srv.URL+"/tracks/generate", req, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST /tracks/generate = %d; want %d: %s", resp.StatusCode, http.StatusOK, body)
	}
	var result generator.Result
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("couldn't unmarshal response: %v", err)
	}
	if result.Genre != "rock" {
		t.Fatalf("genre = %q; want %q", result.Genre, "rock")
	}
	if result.Metadata.Temperature != 0.8 {
		t.Fatalf("temperature = %v; want 0.8 from preset", result.Metadata.Temperature)
	}
}

func TestGenerateTrackErrors(t *testing.T) {
	srv := newTestServer(t, nil)
	tests := []struct {
		name string
		req  map[string]any
		want int
	}{
		{
			name: "unknown preset",
			req: map[string]any{
				"text_input":  "text",
				"preset_name": "nope",
			},
			want: http.StatusNotFound,
		},
		{
			name: "missing structure",
			req: map[string]any{
				"text_input": "text",
				"genre":      "rock",
			},
			want: http.StatusUnprocessableEntity,
		},
		{
			name: "duration out of range",
			req: map[string]any{
				"text_input":       "text",
				"genre":            "rock",
				"duration_seconds": 500,
				"structure": map[string]any{
					"intro":        true,
					"verse_count":  2,
					"chorus_count": 2,
				},
			},
			want: http.StatusUnprocessableEntity,
		},
		{
			name: "temperature out of range",
			req: map[string]any{
				"text_input":  "text",
				"preset_name": "rock_anthem",
				"temperature": 2.0,
			},
			want: http.StatusUnprocessableEntity,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := request(t, http.MethodPost, srv.URL+"/tracks/generate", tt.req, nil)
			if resp.StatusCode != tt.want {
				t.Fatalf("POST /tracks/generate = %d; want %d: %s", resp.StatusCode, tt.want, body)
			}
		})
	}
}

func TestPresetCRUD(t *testing.T) {
	srv := newTestServer(t, nil)

	p := track.PresetConfig{
		Name:        "test_preset",
		Genre:       "ambient",
		Structure:   track.DefaultStructure(),
		Temperature: 0.4,
		Tips:        "Keep it slow.",
	}
	resp, body := request(t, http.MethodPost, srv.URL+"/presets", p, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST /presets = %d; want %d: %s", resp.StatusCode, http.StatusOK, body)
	}

	resp, body = request(t, http.MethodGet, srv.URL+"/presets/test_preset", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /presets/test_preset = %d; want %d", resp.StatusCode, http.StatusOK)
	}
	var got track.PresetConfig
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("couldn't unmarshal response: %v", err)
	}
	if got.Genre != "ambient" || got.Temperature != 0.4 {
		t.Fatalf("GET /presets/test_preset = %+v; want saved preset", got)
	}

	resp, _ = request(t, http.MethodDelete, srv.URL+"/presets/test_preset", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("DELETE /presets/test_preset = %d; want %d", resp.StatusCode, http.StatusOK)
	}
	resp, _ = request(t, http.MethodGet, srv.URL+"/presets/test_preset", nil, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("GET /presets/test_preset after delete = %d; want %d", resp.StatusCode, http.StatusNotFound)
	}
}

func TestPromptTips(t *testing.T) {
	srv := newTestServer(t, nil)
	resp, body := request(t, http.MethodGet, srv.URL+"/prompt-tips", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /prompt-tips = %d; want %d", resp.StatusCode, http.StatusOK)
	}
	var tips []promptTip
	if err := json.Unmarshal(body, &tips); err != nil {
		t.Fatalf("couldn't unmarshal response: %v", err)
	}
	if len(tips) == 0 {
		t.Fatal("GET /prompt-tips returned no tips")
	}

	resp, body = request(t, http.MethodGet, srv.URL+"/prompt-tips?preset=rock_anthem", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /prompt-tips?preset = %d; want %d", resp.StatusCode, http.StatusOK)
	}
	if err := json.Unmarshal(body, &tips); err != nil {
		t.Fatalf("couldn't unmarshal response: %v", err)
	}
	if len(tips) != 1 || tips[0].PresetName != "rock_anthem" {
		t.Fatalf("GET /prompt-tips?preset = %+v; want rock_anthem only", tips)
	}

	resp, _ = request(t, http.MethodGet, srv.URL+"/prompt-tips?preset=nope", nil, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("GET /prompt-tips?preset=nope = %d; want %d", resp.StatusCode, http.StatusNotFound)
	}
}

func TestAPIKey(t *testing.T) {
	srv := newTestServer(t, &Config{APIKey: "secret"})

	// Health is public
	resp, _ := request(t, http.MethodGet, srv.URL+"/health", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /health = %d; want %d", resp.StatusCode, http.StatusOK)
	}

	tests := []struct {
		name    string
		headers map[string]string
		want    int
	}{
		{"no key", nil, http.StatusUnauthorized},
		{"wrong key", map[string]string{"X-API-Key": "wrong"}, http.StatusUnauthorized},
		{"header key", map[string]string{"X-API-Key": "secret"}, http.StatusOK},
		{"bearer token", map[string]string{"Authorization": "Bearer secret"}, http.StatusOK},
		{"wrong bearer", map[string]string{"Authorization": "Bearer wrong"}, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := request(t, http.MethodGet, srv.URL+"/presets", nil, tt.headers)
			if resp.StatusCode != tt.want {
				t.Fatalf("GET /presets = %d; want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestConfigEndpoint(t *testing.T) {
	srv := newTestServer(t, &Config{
		Mode:     generator.ModeVertex,
		Project:  "my-project",
		Location: "us-central1",
	})
	resp, body := request(t, http.MethodGet, srv.URL+"/config", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /config = %d; want %d", resp.StatusCode, http.StatusOK)
	}
	var got configResponse
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("couldn't unmarshal response: %v", err)
	}
	if got.Mode != generator.ModeVertex || got.Project != "my-project" {
		t.Fatalf("GET /config = %+v; want vertex/my-project", got)
	}
	if len(got.PresetsAvailable) == 0 {
		t.Fatal("GET /config returned no presets")
	}
}
