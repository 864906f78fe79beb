// integration_test.go
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

package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/localnerve/carddeck/internal/config"
	"github.com/localnerve/carddeck/internal/models"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	_ "github.com/go-sql-driver/mysql"
)

// TestWithMariaDB exercises the cache schema against a real MariaDB
// container. Requires docker and DB_IMAGE (e.g. mariadb:11).
func TestWithMariaDB(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	image := os.Getenv("DB_IMAGE")
	if image == "" {
		t.Skip("Skipping integration test, DB_IMAGE not set")
	}

	ctx := context.Background()
	dbPort := nat.Port("3306/tcp")

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        image,
			ExposedPorts: []string{string(dbPort)},
			Env: map[string]string{
				"MYSQL_ROOT_PASSWORD": "rootpass",
				"MYSQL_DATABASE":      "testdb",
				"MYSQL_USER":          "testuser",
				"MYSQL_PASSWORD":      "testpass",
			},
			WaitingFor: wait.ForListeningPort(dbPort).WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start MariaDB container: %v", err)
	}
	defer func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate MariaDB container: %v", err)
		}
	}()

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, dbPort)
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	waitForDatabase(t, host, port.Port())

	cfg := &config.Config{
		DBType:            "mariadb",
		DBHost:            host,
		DBPort:            port.Port(),
		DBDatabase:        "testdb",
		DBUser:            "testuser",
		DBPassword:        "testpass",
		DBConnectionLimit: 5,
	}

	db, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	defer Close(db)

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	t.Run("PersonalizationRecordScope", func(t *testing.T) {
		testPersonalizationRecordScope(t, db)
	})

	t.Run("ReportSnapshotUpsert", func(t *testing.T) {
		testReportSnapshotUpsert(t, db)
	})
}

// waitForDatabase pings with the raw driver until the server accepts
// connections; the listening port opens before authentication is ready.
func waitForDatabase(t *testing.T, host, port string) {
	t.Helper()
	dsn := fmt.Sprintf("testuser:testpass@tcp(%s:%s)/testdb", host, port)
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		conn, err := sql.Open("mysql", dsn)
		if err == nil {
			if err = conn.Ping(); err == nil {
				conn.Close()
				return
			}
			conn.Close()
		}
		time.Sleep(time.Second)
	}
	t.Fatal("Database never became ready")
}

func testPersonalizationRecordScope(t *testing.T, db *gorm.DB) {
	rec := models.PersonalizationRecord{
		ApplicationID: "app-1",
		UserID:        uuid.NewString(),
		TaskID:        "t1",
		Version:       1,
	}
	rec.Payload.JSON = datatypes.JSON(`{"cardCount":3}`)
	if err := db.Create(&rec).Error; err != nil {
		t.Fatalf("Failed to create record: %v", err)
	}

	// The scope index rejects a duplicate (applicationId, userId, taskId).
	dup := models.PersonalizationRecord{
		ApplicationID: rec.ApplicationID,
		UserID:        rec.UserID,
		TaskID:        rec.TaskID,
		Version:       1,
	}
	dup.Payload.JSON = datatypes.JSON(`{}`)
	if err := db.Create(&dup).Error; err == nil {
		t.Error("Expected unique scope index violation")
	}

	var loaded models.PersonalizationRecord
	err := db.Where("application_id = ? AND user_id = ? AND task_id = ?",
		rec.ApplicationID, rec.UserID, rec.TaskID).First(&loaded).Error
	if err != nil {
		t.Fatalf("Failed to load record: %v", err)
	}
	if string(loaded.Payload.JSON) == "" {
		t.Error("Expected JSON payload round-trip")
	}
}

func testReportSnapshotUpsert(t *testing.T, db *gorm.DB) {
	key := "app-1|industry-report|ai|" + uuid.NewString()

	for i := 0; i < 2; i++ {
		snap := models.ReportSnapshot{
			CacheKey:   key,
			ResolvedAt: time.Now().UTC(),
		}
		snap.Payload.JSON = datatypes.JSON(fmt.Sprintf(`{"revision":%d}`, i))
		err := db.Where("cache_key = ?", key).
			Assign(map[string]any{"payload": snap.Payload, "resolved_at": snap.ResolvedAt}).
			FirstOrCreate(&snap).Error
		if err != nil {
			t.Fatalf("Snapshot upsert %d failed: %v", i, err)
		}
	}

	var count int64
	db.Model(&models.ReportSnapshot{}).Where("cache_key = ?", key).Count(&count)
	if count != 1 {
		t.Errorf("Expected a single snapshot per cache key, got %d", count)
	}
}
