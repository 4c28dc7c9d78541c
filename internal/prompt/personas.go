package prompt

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"edumentor/pkg/tutortypes"
)

//go:embed personas.yaml
var personasYAML []byte

type personaCatalog struct {
	Personas []personaEntry `yaml:"personas"`
}

type personaEntry struct {
	Name               string   `yaml:"name"`
	Type               string   `yaml:"type"`
	Personality        string   `yaml:"personality"`
	Expertise          []string `yaml:"expertise"`
	CommunicationStyle string   `yaml:"communication_style"`
	AdaptiveLevel      int      `yaml:"adaptive_level"`
}

// LoadPersonaCatalog parses the embedded persona catalog.
func LoadPersonaCatalog() ([]tutortypes.AIPersona, error) {
	var catalog personaCatalog
	if err := yaml.Unmarshal(personasYAML, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse persona catalog: %w", err)
	}
	if len(catalog.Personas) == 0 {
		return nil, fmt.Errorf("persona catalog is empty")
	}

	personas := make([]tutortypes.AIPersona, 0, len(catalog.Personas))
	for _, entry := range catalog.Personas {
		personas = append(personas, tutortypes.AIPersona{
			Name:               entry.Name,
			Type:               entry.Type,
			Personality:        entry.Personality,
			Expertise:          entry.Expertise,
			CommunicationStyle: entry.CommunicationStyle,
			AdaptiveLevel:      entry.AdaptiveLevel,
		})
	}
	return personas, nil
}

// PersonaByName looks up a catalog persona by name. The first catalog
// entry is the default when name is empty or unknown.
func PersonaByName(name string) tutortypes.AIPersona {
	personas, err := LoadPersonaCatalog()
	if err != nil {
		// The catalog is embedded; a parse failure is a build defect.
		// Fall back to a minimal persona rather than panicking.
		return tutortypes.AIPersona{
			Name:               "Tutor",
			Type:               "encouraging_mentor",
			CommunicationStyle: "conversational",
			AdaptiveLevel:      5,
		}
	}
	for _, p := range personas {
		if p.Name == name {
			return p
		}
	}
	return personas[0]
}

// DefaultPersona returns the catalog's first persona.
func DefaultPersona() tutortypes.AIPersona {
	return PersonaByName("")
}
