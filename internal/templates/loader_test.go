package templates

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/localnerve/carddeck/internal/backend"
	"github.com/localnerve/carddeck/internal/cards"
	"github.com/localnerve/carddeck/internal/logger"
)

// templateServer scripts the template endpoint per (templateId, scope).
type templateServer struct {
	mu     sync.Mutex
	custom map[string]*cards.TypeTemplateConfig // templateId -> app-custom
	global map[string]*cards.TypeTemplateConfig // templateId -> global
	fail   bool
	calls  int
}

func (s *templateServer) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.calls++

		if s.fail {
			http.Error(w, "backend unavailable", http.StatusInternalServerError)
			return
		}

		id := r.URL.Path[len("/card-driven/templates/"):]
		var cfg *cards.TypeTemplateConfig
		if r.URL.Query().Get("global") == "true" {
			cfg = s.global[id]
		} else {
			cfg = s.custom[id]
		}
		if cfg == nil {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"template_config": cfg},
		})
	})
}

func newTestLoader(t *testing.T, baseURL string) *Loader {
	t.Helper()
	defaults, err := LoadDefaults()
	if err != nil {
		t.Fatalf("Failed to load builtin templates: %v", err)
	}
	client := backend.New(baseURL, "", 5*time.Second, logger.NewNop())
	return NewLoader(client, defaults, logger.NewNop())
}

func TestLoadAppCustomWins(t *testing.T) {
	ts := &templateServer{
		custom: map[string]*cards.TypeTemplateConfig{
			"industry-report": {ID: "industry-report", Name: "Custom", ConfigMode: cards.ConfigModePersonalization},
		},
		global: map[string]*cards.TypeTemplateConfig{
			"industry-report": {ID: "industry-report", Name: "Global"},
		},
	}
	srv := httptest.NewServer(ts.handler())
	defer srv.Close()

	loader := newTestLoader(t, srv.URL)
	cfg := loader.Load(context.Background(), "industry-report", "app-1")

	if cfg == nil || cfg.Name != "Custom" {
		t.Fatalf("Expected app-custom template to win, got %+v", cfg)
	}
}

func TestLoadGlobalWhenNoCustom(t *testing.T) {
	ts := &templateServer{
		global: map[string]*cards.TypeTemplateConfig{
			"industry-report": {ID: "industry-report", Name: "Global"},
		},
	}
	srv := httptest.NewServer(ts.handler())
	defer srv.Close()

	loader := newTestLoader(t, srv.URL)
	cfg := loader.Load(context.Background(), "industry-report", "app-1")

	if cfg == nil || cfg.Name != "Global" {
		t.Fatalf("Expected global template, got %+v", cfg)
	}
}

func TestLoadBuiltinWhenBackendMisses(t *testing.T) {
	ts := &templateServer{}
	srv := httptest.NewServer(ts.handler())
	defer srv.Close()

	loader := newTestLoader(t, srv.URL)
	cfg := loader.Load(context.Background(), "industry-report", "app-1")

	if cfg == nil {
		t.Fatal("Expected builtin template")
	}
	if cfg.ConfigMode != cards.ConfigModeContentDriven {
		t.Errorf("Expected builtin industry-report to be content-driven, got %q", cfg.ConfigMode)
	}
	if len(cfg.Framework.RequiredCards) == 0 {
		t.Error("Expected builtin template to carry required cards")
	}
}

func TestLoadBuiltinWhenBackendFails(t *testing.T) {
	// Transport failures (as opposed to not-found) also continue down the
	// tiers instead of failing resolution.
	ts := &templateServer{fail: true}
	srv := httptest.NewServer(ts.handler())
	defer srv.Close()

	loader := newTestLoader(t, srv.URL)
	cfg := loader.Load(context.Background(), "industry-report", "app-1")

	if cfg == nil {
		t.Fatal("Expected builtin template despite backend failure")
	}
}

func TestLoadUnknownTemplateReturnsNil(t *testing.T) {
	ts := &templateServer{}
	srv := httptest.NewServer(ts.handler())
	defer srv.Close()

	loader := newTestLoader(t, srv.URL)
	if cfg := loader.Load(context.Background(), "no-such-report", "app-1"); cfg != nil {
		t.Errorf("Expected nil for unknown template, got %+v", cfg)
	}
}

func TestLoadSkipsCustomTierWithoutApplication(t *testing.T) {
	ts := &templateServer{
		global: map[string]*cards.TypeTemplateConfig{
			"product-report": {ID: "product-report", Name: "Global"},
		},
	}
	srv := httptest.NewServer(ts.handler())
	defer srv.Close()

	loader := newTestLoader(t, srv.URL)
	cfg := loader.Load(context.Background(), "product-report", "")

	if cfg == nil || cfg.Name != "Global" {
		t.Fatalf("Expected global template, got %+v", cfg)
	}

	ts.mu.Lock()
	calls := ts.calls
	ts.mu.Unlock()
	if calls != 1 {
		t.Errorf("Expected a single backend call without an application id, got %d", calls)
	}
}

func TestDefaultsEnumeration(t *testing.T) {
	defaults, err := LoadDefaults()
	if err != nil {
		t.Fatalf("Failed to load builtin templates: %v", err)
	}

	for _, id := range []string{"industry-report", "company-report", "product-report"} {
		if defaults.Get(id) == nil {
			t.Errorf("Expected builtin template %q", id)
		}
	}
	if defaults.Get("unknown") != nil {
		t.Error("Expected nil for unknown builtin template")
	}
}
