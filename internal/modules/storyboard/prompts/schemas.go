package prompts

// OpenAI strict JSON schemas require additionalProperties:false and every
// listed property in required, so optional fields are modeled as
// always-present values that may be empty.

func StringArraySchema() map[string]any {
	return map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "string"},
	}
}

func EventSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"number":   map[string]any{"type": "string"},
			"audio":    map[string]any{"type": "string"},
			"ost":      map[string]any{"type": "string"},
			"devNotes": map[string]any{"type": "string"},
		},
		"required":             []string{"number", "audio", "ost", "devNotes"},
		"additionalProperties": false,
	}
}

func AccessibilitySchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"altText":       StringArraySchema(),
			"keyboardNav":   map[string]any{"type": "string"},
			"contrastNotes": map[string]any{"type": "string"},
			"screenReader":  map[string]any{"type": "string"},
		},
		"required":             []string{"altText", "keyboardNav", "contrastNotes", "screenReader"},
		"additionalProperties": false,
	}
}

func PageSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"pageNumber":           map[string]any{"type": "string"},
			"title":                map[string]any{"type": "string"},
			"pageType":             map[string]any{"type": "string"},
			"learningObjectiveIds": StringArraySchema(),
			"estimatedDurationSec": map[string]any{"type": "integer"},
			"accessibility":        AccessibilitySchema(),
			"events": map[string]any{
				"type":  "array",
				"items": EventSchema(),
			},
		},
		"required": []string{
			"pageNumber", "title", "pageType", "learningObjectiveIds",
			"estimatedDurationSec", "accessibility", "events",
		},
		"additionalProperties": false,
	}
}
