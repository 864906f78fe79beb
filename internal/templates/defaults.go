package templates

import (
	"encoding/json"
	"fmt"

	"github.com/localnerve/carddeck/data"
	"github.com/localnerve/carddeck/internal/cards"
)

// Defaults is the built-in type template set, the last tier of template
// resolution.
type Defaults struct {
	byID map[string]*cards.TypeTemplateConfig
}

// LoadDefaults parses the embedded built-in template set.
func LoadDefaults() (*Defaults, error) {
	var configs []cards.TypeTemplateConfig
	if err := json.Unmarshal(data.TypeTemplates, &configs); err != nil {
		return nil, fmt.Errorf("parsing built-in templates: %w", err)
	}
	d := &Defaults{byID: make(map[string]*cards.TypeTemplateConfig, len(configs))}
	for i := range configs {
		d.byID[configs[i].ID] = &configs[i]
	}
	return d, nil
}

// Get returns the built-in template for an id, or nil when none exists.
func (d *Defaults) Get(templateID string) *cards.TypeTemplateConfig {
	return d.byID[templateID]
}
