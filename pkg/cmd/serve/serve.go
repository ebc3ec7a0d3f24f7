package serve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/oklog/ulid/v2"

	"github.com/trackforge/trackforge/pkg/generator"
	"github.com/trackforge/trackforge/pkg/preset"
	"github.com/trackforge/trackforge/pkg/storage"
	"github.com/trackforge/trackforge/pkg/track"
)

type Config struct {
	Debug      bool
	Addr       string
	APIKey     string
	PresetsDir string
	DBType     string
	DBConn     string

	Mode     string
	Project  string
	Location string
	Token    string
	Model    string
}

// Serve starts the track generation REST service.
func Serve(ctx context.Context, cfg *Config) error {
	log.Println("serve: server started")
	defer log.Println("serve: server ended")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	presets, err := preset.New(cfg.PresetsDir)
	if err != nil {
		return fmt.Errorf("serve: couldn't create preset store: %w", err)
	}

	var store *storage.Store
	if cfg.DBType != "" {
		store, err = storage.New(cfg.DBType, cfg.DBConn, cfg.Debug)
		if err != nil {
			return fmt.Errorf("serve: couldn't create orm store: %w", err)
		}
		if err := store.Start(ctx); err != nil {
			return fmt.Errorf("serve: couldn't start orm store: %w", err)
		}
	}

	// Generator handles are memoized per configuration tuple.
	cache := generator.NewCache()
	defer cache.Reset()

	names, err := presets.List()
	if err != nil {
		return fmt.Errorf("serve: couldn't list presets: %w", err)
	}
	log.Printf("serve: mode %s, %d presets loaded, auth %v\n", mode(cfg), len(names), cfg.APIKey != "")

	s := &server{
		cfg:     cfg,
		presets: presets,
		store:   store,
		cache:   cache,
	}
	mux := s.router()

	// Create server
	split := strings.Split(cfg.Addr, ":")
	if len(split) != 2 {
		return fmt.Errorf("serve: invalid address: %s", cfg.Addr)
	}
	host := split[0]
	port, err := strconv.Atoi(split[1])
	if err != nil {
		return fmt.Errorf("serve: invalid port: %s", split[1])
	}
	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", host, port),
		Handler: mux,
	}
	go func() {
		note := fmt.Sprintf("http://%s:%d", host, port)
		if host == "" {
			note = fmt.Sprintf("all interfaces http://localhost:%d", port)
		}
		log.Printf("Starting server on %s", note)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v\n", err)
			cancel()
		}
	}()

	<-ctx.Done()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return server.Shutdown(shutdownCtx)
}

func mode(cfg *Config) string {
	if cfg.Mode == "" {
		return generator.ModeSimulate
	}
	return cfg.Mode
}

// apiKey checks the X-API-Key header or an Authorization bearer token.
func apiKey(want string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("X-API-Key") == want {
				next.ServeHTTP(w, r)
				return
			}
			auth := r.Header.Get("Authorization")
			parts := strings.SplitN(auth, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") && parts[1] == want {
				next.ServeHTTP(w, r)
				return
			}
			writeError(w, http.StatusUnauthorized, "invalid or missing api key")
		})
	}
}

type server struct {
	cfg     *Config
	presets *preset.Store
	store   *storage.Store
	cache   *generator.Cache
}

func (s *server) router() *chi.Mux {
	mux := chi.NewRouter()

	// Add middleware
	mux.Use(middleware.RealIP)
	mux.Use(middleware.Recoverer)
	mux.Use(middleware.Timeout(60 * time.Second))
	if s.cfg.Debug {
		mux.Use(middleware.Logger)
	}

	mux.Get("/", s.handleRoot)
	mux.Get("/health", s.handleHealth)

	// Create subrouter for authenticated endpoints
	mux.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(apiKey(s.cfg.APIKey))
		}
		r.Post("/tracks/generate", s.handleGenerate)
		r.Get("/presets", s.handleListPresets)
		r.Post("/presets", s.handleSavePreset)
		r.Get("/presets/{name}", s.handleGetPreset)
		r.Delete("/presets/{name}", s.handleDeletePreset)
		r.Get("/prompt-tips", s.handlePromptTips)
		r.Get("/config", s.handleConfig)
	})
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Println("serve: couldn't encode response:", err)
	}
}

func writeError(w http.ResponseWriter, status int, format string, args ...interface{}) {
	writeJSON(w, status, map[string]string{
		"detail": fmt.Sprintf(format, args...),
	})
}

type generateRequest struct {
	TextInput       string                 `json:"text_input"`
	Genre           string                 `json:"genre"`
	DurationSeconds int                    `json:"duration_seconds"`
	PresetName      string                 `json:"preset_name,omitempty"`
	Structure       *track.SongStructure   `json:"structure,omitempty"`
	StyleReferences []track.StyleReference `json:"style_references,omitempty"`
	Temperature     *float64               `json:"temperature,omitempty"`
}

func (s *server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "couldn't decode request: %v", err)
		return
	}
	duration := req.DurationSeconds
	if duration == 0 {
		duration = track.DefaultDuration
	}

	var trackCfg *track.TrackConfig
	if req.PresetName != "" {
		p, err := s.presets.Load(req.PresetName)
		if errors.Is(err, preset.ErrNotFound) {
			writeError(w, http.StatusNotFound, "preset %q not found", req.PresetName)
			return
		}
		if err != nil {
			log.Println("serve: couldn't load preset:", err)
			writeError(w, http.StatusInternalServerError, "couldn't load preset: %v", err)
			return
		}
		trackCfg = p.TrackConfig(req.TextInput, duration)
		if req.Structure != nil {
			trackCfg.Structure = *req.Structure
		}
		if req.StyleReferences != nil {
			trackCfg.StyleReferences = req.StyleReferences
		}
		if req.Temperature != nil {
			trackCfg.Temperature = *req.Temperature
		}
	} else {
		if req.Structure == nil {
			writeError(w, http.StatusUnprocessableEntity, "either preset_name or structure must be provided")
			return
		}
		temperature := track.DefaultTemperature
		if req.Temperature != nil {
			temperature = *req.Temperature
		}
		trackCfg = &track.TrackConfig{
			TextInput:       req.TextInput,
			Genre:           req.Genre,
			DurationSeconds: duration,
			Structure:       *req.Structure,
			StyleReferences: req.StyleReferences,
			Temperature:     temperature,
		}
	}
	if err := trackCfg.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "%v", err)
		return
	}

	gen, err := s.cache.Get(&generator.Config{
		Mode:     s.cfg.Mode,
		Project:  s.cfg.Project,
		Location: s.cfg.Location,
		Token:    s.cfg.Token,
		Model:    s.cfg.Model,
		Debug:    s.cfg.Debug,
	})
	if err != nil {
		log.Println("serve: couldn't create generator:", err)
		writeError(w, http.StatusInternalServerError, "%v", err)
		return
	}
	result, err := gen.Generate(ctx, trackCfg)
	if err != nil {
		log.Println("serve: couldn't generate track:", err)
		writeError(w, http.StatusInternalServerError, "couldn't generate track: %v", err)
		return
	}
	if s.store != nil {
		if err := s.store.SetGeneration(ctx, &storage.Generation{
			ID:              ulid.Make().String(),
			Mode:            result.Mode,
			Genre:           result.Genre,
			DurationSeconds: result.DurationSeconds,
			Temperature:     trackCfg.Temperature,
			Preset:          req.PresetName,
			Prompt:          result.Prompt,
			Status:          result.Status,
			Output:          result.Output,
		}); err != nil {
			log.Println("serve: couldn't save generation:", err)
		}
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *server) handleListPresets(w http.ResponseWriter, r *http.Request) {
	mds, err := s.presets.ListMetadata()
	if err != nil {
		log.Println("serve: couldn't list presets:", err)
		writeError(w, http.StatusInternalServerError, "couldn't list presets: %v", err)
		return
	}
	if mds == nil {
		mds = []preset.Metadata{}
	}
	writeJSON(w, http.StatusOK, mds)
}

func (s *server) handleGetPreset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	p, err := s.presets.Load(name)
	if errors.Is(err, preset.ErrNotFound) {
		writeError(w, http.StatusNotFound, "preset %q not found", name)
		return
	}
	if err != nil {
		log.Println("serve: couldn't get preset:", err)
		writeError(w, http.StatusInternalServerError, "couldn't get preset: %v", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *server) handleSavePreset(w http.ResponseWriter, r *http.Request) {
	var p track.PresetConfig
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "couldn't decode request: %v", err)
		return
	}
	if err := p.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "%v", err)
		return
	}
	if err := s.presets.Save(&p); err != nil {
		log.Println("serve: couldn't save preset:", err)
		writeError(w, http.StatusInternalServerError, "couldn't save preset: %v", err)
		return
	}
	writeJSON(w, http.StatusOK, &p)
}

func (s *server) handleDeletePreset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	err := s.presets.Delete(name)
	if errors.Is(err, preset.ErrNotFound) {
		writeError(w, http.StatusNotFound, "preset %q not found", name)
		return
	}
	if err != nil {
		log.Println("serve: couldn't delete preset:", err)
		writeError(w, http.StatusInternalServerError, "couldn't delete preset: %v", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("preset %q deleted", name),
	})
}

type promptTip struct {
	PresetName string `json:"preset_name"`
	Genre      string `json:"genre"`
	Tips       string `json:"tips,omitempty"`
}

func (s *server) handlePromptTips(w http.ResponseWriter, r *http.Request) {
	var tips []promptTip
	if name := r.URL.Query().Get("preset"); name != "" {
		p, err := s.presets.Load(name)
		if errors.Is(err, preset.ErrNotFound) {
			writeError(w, http.StatusNotFound, "preset %q not found", name)
			return
		}
		if err != nil {
			log.Println("serve: couldn't get preset:", err)
			writeError(w, http.StatusInternalServerError, "couldn't get preset: %v", err)
			return
		}
		tips = append(tips, promptTip{
			PresetName: p.Name,
			Genre:      p.Genre,
			Tips:       p.Tips,
		})
		writeJSON(w, http.StatusOK, tips)
		return
	}
	names, err := s.presets.List()
	if err != nil {
		log.Println("serve: couldn't list presets:", err)
		writeError(w, http.StatusInternalServerError, "couldn't list presets: %v", err)
		return
	}
	for _, name := range names {
		p, err := s.presets.Load(name)
		if err != nil {
			log.Println("serve: couldn't load preset:", err)
			continue
		}
		if p.Tips == "" {
			continue
		}
		tips = append(tips, promptTip{
			PresetName: p.Name,
			Genre:      p.Genre,
			Tips:       p.Tips,
		})
	}
	if tips == nil {
		tips = []promptTip{}
	}
	writeJSON(w, http.StatusOK, tips)
}

type configResponse struct {
	Mode             string   `json:"mode"`
	Project          string   `json:"project,omitempty"`
	Location         string   `json:"location,omitempty"`
	PresetsAvailable []string `json:"presets_available"`
	AuthEnabled      bool     `json:"auth_enabled"`
}

func (s *server) handleConfig(w http.ResponseWriter, r *http.Request) {
	names, err := s.presets.List()
	if err != nil {
		log.Println("serve: couldn't list presets:", err)
		writeError(w, http.StatusInternalServerError, "couldn't list presets: %v", err)
		return
	}
	resp := &configResponse{
		Mode:             mode(s.cfg),
		PresetsAvailable: names,
		AuthEnabled:      s.cfg.APIKey != "",
	}
	if resp.Mode == generator.ModeVertex {
		resp.Project = s.cfg.Project
		resp.Location = s.cfg.Location
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "trackforge",
		"mode":    mode(s.cfg),
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"mode":   mode(s.cfg),
	})
}
