package data

import (
	_ "embed"
)

//go:embed fallback/cards.json
var FallbackCards []byte

//go:embed fallback/type_templates.json
var TypeTemplates []byte
