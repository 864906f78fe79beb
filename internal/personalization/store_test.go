// store_test.go
//
// AI report card-deck resolution service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of carddeck.
// carddeck is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// carddeck is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with carddeck.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package personalization

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/localnerve/carddeck/internal/backend"
	"github.com/localnerve/carddeck/internal/cards"
	"github.com/localnerve/carddeck/internal/logger"
	"github.com/localnerve/carddeck/internal/models"
	"github.com/glebarez/sqlite"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	if err := db.AutoMigrate(&models.PersonalizationRecord{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

func newStoreWithBackend(t *testing.T, db *gorm.DB, handler http.HandlerFunc) (*Store, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	client := backend.New(srv.URL, "", 5*time.Second, logger.NewNop())
	return NewStore(client, db, logger.NewNop()), srv
}

func okEnvelope(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": data})
}

func TestLoadBackendFirst(t *testing.T) {
	db := setupTestDB(t)
	store, srv := newStoreWithBackend(t, db, func(w http.ResponseWriter, r *http.Request) {
		okEnvelope(w, map[string]any{"cardCount": 5})
	})
	defer srv.Close()

	cfg, err := store.Load(context.Background(), "app-1", "u1", "t1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg == nil || cfg.CardCount != 5 {
		t.Fatalf("Expected backend personalization, got %+v", cfg)
	}
}

func TestLoadNotFoundIsSilentNil(t *testing.T) {
	db := setupTestDB(t)
	store, srv := newStoreWithBackend(t, db, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	defer srv.Close()

	cfg, err := store.Load(context.Background(), "app-1", "u1", "t1")
	if err != nil {
		t.Fatalf("Not-found must not be an error: %v", err)
	}
	if cfg != nil {
		t.Errorf("Expected nil personalization for not-found, got %+v", cfg)
	}
}

func TestLoadFallsBackToLocalCacheOnBackendFailure(t *testing.T) {
	db := setupTestDB(t)

	// Seed the local cache directly.
	payload, _ := json.Marshal(&cards.PersonalizationConfig{CardCount: 3})
	rec := models.PersonalizationRecord{
		ApplicationID: "app-1",
		UserID:        "u1",
		TaskID:        "t1",
		Version:       1,
	}
	rec.Payload.JSON = datatypes.JSON(payload)
	if err := db.Create(&rec).Error; err != nil {
		t.Fatalf("Failed to seed cache: %v", err)
	}

	store, srv := newStoreWithBackend(t, db, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	})
	defer srv.Close()

	cfg, err := store.Load(context.Background(), "app-1", "u1", "t1")
	if err != nil {
		t.Fatalf("Load must absorb backend failures: %v", err)
	}
	if cfg == nil || cfg.CardCount != 3 {
		t.Fatalf("Expected cached personalization, got %+v", cfg)
	}
}

func TestLoadBackendFailureCacheMissIsNil(t *testing.T) {
	db := setupTestDB(t)
	store, srv := newStoreWithBackend(t, db, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	})
	defer srv.Close()

	cfg, err := store.Load(context.Background(), "app-1", "u1", "t1")
	if err != nil {
		t.Fatalf("Cache miss must not be an error: %v", err)
	}
	if cfg != nil {
		t.Errorf("Expected nil on backend failure with empty cache, got %+v", cfg)
	}
}

func TestLoadWriteThroughPopulatesCache(t *testing.T) {
	db := setupTestDB(t)
	store, srv := newStoreWithBackend(t, db, func(w http.ResponseWriter, r *http.Request) {
		okEnvelope(w, map[string]any{"cardCount": 7})
	})
	defer srv.Close()

	if _, err := store.Load(context.Background(), "app-1", "u1", "t1"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	cached, err := store.loadLocal("app-1", "u1", "t1")
	if err != nil {
		t.Fatalf("Expected write-through cache entry: %v", err)
	}
	if cached.CardCount != 7 {
		t.Errorf("Expected cached cardCount 7, got %d", cached.CardCount)
	}
}

func TestSaveWritesLocalThenBackend(t *testing.T) {
	db := setupTestDB(t)
	var backendSaved atomic.Bool
	store, srv := newStoreWithBackend(t, db, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			backendSaved.Store(true)
		}
		okEnvelope(w, nil)
	})
	defer srv.Close()

	cfg := &cards.PersonalizationConfig{
		CardCount: 4,
		CardSelection: &cards.CardSelection{
			Hidden: []cards.TemplateID{"market-size"},
		},
	}
	if err := store.Save(context.Background(), "app-1", "u1", "t1", cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !backendSaved.Load() {
		t.Error("Expected PUT to reach the backend")
	}

	cached, err := store.loadLocal("app-1", "u1", "t1")
	if err != nil {
		t.Fatalf("Expected local cache entry after save: %v", err)
	}
	if cached.CardCount != 4 || len(cached.CardSelection.Hidden) != 1 {
		t.Errorf("Cached personalization mismatch: %+v", cached)
	}
}

func TestSaveBackendFailureSurfacesButKeepsLocal(t *testing.T) {
	db := setupTestDB(t)
	store, srv := newStoreWithBackend(t, db, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	})
	defer srv.Close()

	err := store.Save(context.Background(), "app-1", "u1", "t1",
		&cards.PersonalizationConfig{CardCount: 2})
	if err == nil {
		t.Fatal("Expected backend save failure to surface")
	}

	// The local write still happened, so the override survives the outage.
	cached, localErr := store.loadLocal("app-1", "u1", "t1")
	if localErr != nil {
		t.Fatalf("Expected local entry despite backend failure: %v", localErr)
	}
	if cached.CardCount != 2 {
		t.Errorf("Expected cached cardCount 2, got %d", cached.CardCount)
	}
}

func TestSaveIncrementsVersion(t *testing.T) {
	db := setupTestDB(t)
	store, srv := newStoreWithBackend(t, db, func(w http.ResponseWriter, r *http.Request) {
		okEnvelope(w, nil)
	})
	defer srv.Close()

	for count := 1; count <= 3; count++ {
		cfg := &cards.PersonalizationConfig{CardCount: count}
		if err := store.Save(context.Background(), "app-1", "u1", "t1", cfg); err != nil {
			t.Fatalf("Save %d failed: %v", count, err)
		}
	}

	var rec models.PersonalizationRecord
	if err := db.Where("user_id = ?", "u1").First(&rec).Error; err != nil {
		t.Fatalf("Failed to read record: %v", err)
	}
	if rec.Version != 3 {
		t.Errorf("Expected version 3 after 3 saves, got %d", rec.Version)
	}

	var count int64
	db.Model(&models.PersonalizationRecord{}).Count(&count)
	if count != 1 {
		t.Errorf("Expected a single record per scope, got %d", count)
	}
}

func TestNilDBSkipsLocalTier(t *testing.T) {
	store, srv := newStoreWithBackend(t, nil, func(w http.ResponseWriter, r *http.Request) {
		okEnvelope(w, map[string]any{"cardCount": 1})
	})
	defer srv.Close()

	cfg, err := store.Load(context.Background(), "app-1", "u1", "")
	if err != nil {
		t.Fatalf("Load with nil db failed: %v", err)
	}
	if cfg == nil || cfg.CardCount != 1 {
		t.Fatalf("Expected backend personalization, got %+v", cfg)
	}

	if err := store.Save(context.Background(), "app-1", "u1", "", cfg); err != nil {
		t.Fatalf("Save with nil db failed: %v", err)
	}
}
