// store.go
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

// Package personalization loads and saves per-user overrides: backend first,
// with a local gorm-backed cache as the fallback when the backend is down.
package personalization

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/localnerve/carddeck/internal/backend"
	"github.com/localnerve/carddeck/internal/cards"
	"github.com/localnerve/carddeck/internal/logger"
	"github.com/localnerve/carddeck/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/hints"
)

// Store mediates between the backend personalization endpoint and the local
// cache table.
type Store struct {
	backend *backend.Client
	db      *gorm.DB
	log     *logger.Logger
}

// NewStore creates a personalization store. db may be nil, in which case the
// local cache tier is skipped entirely.
func NewStore(client *backend.Client, db *gorm.DB, log *logger.Logger) *Store {
	return &Store{backend: client, db: db, log: log}
}

// Load fetches a user's personalization. Backend not-found degrades silently
// to "no personalization" (nil, nil); any other backend failure falls back to
// the local cache, and a cache miss also degrades to nil.
func (s *Store) Load(ctx context.Context, applicationID, userID, taskID string) (*cards.PersonalizationConfig, error) {
	cfg, err := s.backend.GetPersonalization(ctx, userID, applicationID, taskID)
	if err == nil {
		// Write through, so the cache tier is current next time the
		// backend is unreachable.
		if cacheErr := s.saveLocal(applicationID, userID, taskID, cfg); cacheErr != nil {
			s.log.Debug("personalization cache write-through failed", "error", cacheErr)
		}
		return cfg, nil
	}
	if errors.Is(err, backend.ErrNotFound) {
		return nil, nil
	}

	s.log.Warn("personalization backend unavailable, trying local cache",
		"userId", userID, "error", err)

	cached, cacheErr := s.loadLocal(applicationID, userID, taskID)
	if cacheErr != nil {
		if !errors.Is(cacheErr, gorm.ErrRecordNotFound) {
			s.log.Warn("personalization local cache read failed", "error", cacheErr)
		}
		return nil, nil
	}
	return cached, nil
}

// Save persists a user's personalization to the local cache and the backend.
// The local write happens first so the override survives a backend outage.
func (s *Store) Save(ctx context.Context, applicationID, userID, taskID string, cfg *cards.PersonalizationConfig) error {
	if err := s.saveLocal(applicationID, userID, taskID, cfg); err != nil {
		s.log.Warn("personalization local cache write failed", "error", err)
	}
	if err := s.backend.PutPersonalization(ctx, userID, applicationID, taskID, cfg); err != nil {
		return fmt.Errorf("saving personalization: %w", err)
	}
	return nil
}

func (s *Store) loadLocal(applicationID, userID, taskID string) (*cards.PersonalizationConfig, error) {
	if s.db == nil {
		return nil, gorm.ErrRecordNotFound
	}

	var rec models.PersonalizationRecord
	err := s.db.
		Clauses(hints.Comment("select", "personalization_cache")).
		Where("application_id = ? AND user_id = ? AND task_id = ?", applicationID, userID, taskID).
		First(&rec).Error
	if err != nil {
		return nil, err
	}

	var cfg cards.PersonalizationConfig
	if err := json.Unmarshal(rec.Payload.JSON, &cfg); err != nil {
		return nil, fmt.Errorf("decoding cached personalization: %w", err)
	}
	return &cfg, nil
}

func (s *Store) saveLocal(applicationID, userID, taskID string, cfg *cards.PersonalizationConfig) error {
	if s.db == nil {
		return nil
	}

	payload, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding personalization: %w", err)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var rec models.PersonalizationRecord
		err := tx.Where("application_id = ? AND user_id = ? AND task_id = ?",
			applicationID, userID, taskID).First(&rec).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			rec = models.PersonalizationRecord{
				ApplicationID: applicationID,
				UserID:        userID,
				TaskID:        taskID,
				Version:       1,
			}
			rec.Payload.JSON = datatypes.JSON(payload)
			return tx.Create(&rec).Error
		}
		if err != nil {
			return err
		}

		rec.Payload.JSON = datatypes.JSON(payload)
		return tx.Model(&rec).Updates(map[string]any{
			"payload": rec.Payload,
			"version": rec.Version + 1,
		}).Error
	})
}
