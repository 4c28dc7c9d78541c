package tutortypes

// AIPersona is the fixed teaching identity used to shape system prompts.
// A persona is supplied per call or defaulted from the embedded catalog.
type AIPersona struct {
	Name               string   `json:"name"`
	Type               string   `json:"type"`
	Personality        string   `json:"personality"`
	Expertise          []string `json:"expertise"`
	CommunicationStyle string   `json:"communication_style"`
	// AdaptiveLevel scores how aggressively the persona adapts to the
	// learner, from 0 (static) to 10 (fully adaptive).
	AdaptiveLevel int `json:"adaptive_level"`
}
