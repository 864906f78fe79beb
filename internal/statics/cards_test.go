package statics

import (
	"testing"

	"github.com/localnerve/carddeck/internal/cards"
)

func TestCatalogCoversEveryKnownTemplate(t *testing.T) {
	catalog, err := Load()
	if err != nil {
		t.Fatalf("Failed to load catalog: %v", err)
	}

	for _, id := range cards.KnownTemplates() {
		inst := catalog.ForTemplate(id)
		if inst == nil {
			t.Errorf("Missing static fallback for template %s", id)
			continue
		}
		if inst.ID != string(id)+"-001" {
			t.Errorf("Template %s: expected id %s-001, got %s", id, id, inst.ID)
		}
		if inst.DataSource != cards.DataSourceAIGenerated {
			t.Errorf("Template %s: expected ai-generated data source, got %s", id, inst.DataSource)
		}
		if inst.ComponentName == "" {
			t.Errorf("Template %s: missing component name", id)
		}
		if len(inst.Data) == 0 {
			t.Errorf("Template %s: empty static data", id)
		}
	}
}

func TestGetByID(t *testing.T) {
	catalog, err := Load()
	if err != nil {
		t.Fatalf("Failed to load catalog: %v", err)
	}

	inst, err := catalog.Get("trend-radar-001")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if inst.TemplateID != "trend-radar" {
		t.Errorf("Expected trend-radar template, got %s", inst.TemplateID)
	}

	if _, err := catalog.Get("no-such-card"); err == nil {
		t.Error("Expected error for unknown card id")
	}
}

func TestInstancesAreCloned(t *testing.T) {
	catalog, err := Load()
	if err != nil {
		t.Fatalf("Failed to load catalog: %v", err)
	}

	first := catalog.ForTemplate("market-size")
	first.Data["mutated"] = true

	second := catalog.ForTemplate("market-size")
	if _, ok := second.Data["mutated"]; ok {
		t.Error("Catalog must hand out independent clones")
	}
}

func TestUnknownTemplateHasNoFallback(t *testing.T) {
	catalog, err := Load()
	if err != nil {
		t.Fatalf("Failed to load catalog: %v", err)
	}
	if inst := catalog.ForTemplate("never-registered"); inst != nil {
		t.Errorf("Expected nil for unknown template, got %+v", inst)
	}
}
