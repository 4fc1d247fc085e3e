package weight

// presets are the built-in weight configurations for common deployment
// contexts. Each is normalized at package init via newPillarWeights.
var presets = map[Preset]PillarWeights{
	Balanced: newPillarWeights("balanced", map[string]float64{
		"accuracy": 1.0, "robustness": 1.0, "fairness": 1.0, "privacy": 1.0,
		"security": 1.0, "explainability": 1.0, "toxicity": 1.0, "groundedness": 1.0,
	}, "Equal weight to all pillars"),

	SafetyFocused: newPillarWeights("safety_focused", map[string]float64{
		"accuracy": 0.5, "robustness": 1.5, "fairness": 1.0, "privacy": 1.0,
		"security": 2.0, "explainability": 0.5, "toxicity": 2.0, "groundedness": 1.0,
	}, "Prioritizes security, robustness, and content safety"),

	FairnessFocused: newPillarWeights("fairness_focused", map[string]float64{
		"accuracy": 0.8, "robustness": 0.8, "fairness": 3.0, "privacy": 1.0,
		"security": 0.8, "explainability": 1.5, "toxicity": 1.0, "groundedness": 0.8,
	}, "Prioritizes fairness and explainability"),

	PrivacyFocused: newPillarWeights("privacy_focused", map[string]float64{
		"accuracy": 0.5, "robustness": 0.8, "fairness": 1.0, "privacy": 3.0,
		"security": 1.5, "explainability": 0.8, "toxicity": 0.8, "groundedness": 0.8,
	}, "Prioritizes privacy and security"),

	PerformanceFocused: newPillarWeights("performance_focused", map[string]float64{
		"accuracy": 3.0, "robustness": 1.5, "fairness": 0.8, "privacy": 0.5,
		"security": 0.8, "explainability": 0.5, "toxicity": 0.5, "groundedness": 1.5,
	}, "Prioritizes accuracy and performance metrics"),

	RegulatoryEUAIAct: newPillarWeightsWithMeta("regulatory_eu_ai_act", map[string]float64{
		"accuracy": 1.0, "robustness": 1.5, "fairness": 2.0, "privacy": 2.0,
		"security": 1.5, "explainability": 2.5, "toxicity": 1.5, "groundedness": 1.0,
		"human_oversight": 2.0, "transparency": 2.5, "data_governance": 2.0,
	}, "Weights aligned with EU AI Act requirements", map[string]any{
		"regulation": "EU AI Act",
		"articles":   []string{"Article 9", "Article 10", "Article 13", "Article 14", "Article 15"},
	}),

	RegulatorySOC2: newPillarWeightsWithMeta("regulatory_soc2", map[string]float64{
		"accuracy": 0.8, "robustness": 1.0, "fairness": 0.8, "privacy": 2.5,
		"security": 3.0, "explainability": 1.0, "toxicity": 0.5, "groundedness": 0.5,
		"availability": 2.0, "confidentiality": 2.5, "processing_integrity": 2.0,
	}, "Weights aligned with SOC2 Trust Service Criteria", map[string]any{
		"framework": "SOC2",
		"criteria":  []string{"Security", "Availability", "Processing Integrity", "Confidentiality", "Privacy"},
	}),

	Healthcare: newPillarWeightsWithMeta("healthcare", map[string]float64{
		"accuracy": 3.0, "robustness": 2.0, "fairness": 2.5, "privacy": 3.0,
		"security": 2.0, "explainability": 2.5, "toxicity": 1.0, "groundedness": 2.5,
		"clinical_validity": 3.0, "patient_safety": 3.0,
	}, "Weights for healthcare AI applications (HIPAA compliant)", map[string]any{
		"industry":   "healthcare",
		"compliance": []string{"HIPAA", "FDA 21 CFR Part 11"},
	}),

	Finance: newPillarWeightsWithMeta("finance", map[string]float64{
		"accuracy": 2.5, "robustness": 2.0, "fairness": 3.0, "privacy": 2.0,
		"security": 2.5, "explainability": 2.5, "toxicity": 0.5, "groundedness": 1.5,
		"model_governance": 2.5, "audit_trail": 2.0,
	}, "Weights for financial services AI (fair lending compliance)", map[string]any{
		"industry":   "finance",
		"compliance": []string{"ECOA", "FCRA", "SR 11-7"},
	}),

	ContentModeration: newPillarWeightsWithMeta("content_moderation", map[string]float64{
		"accuracy": 1.5, "robustness": 1.5, "fairness": 2.0, "privacy": 1.0,
		"security": 1.0, "explainability": 1.5, "toxicity": 3.0, "groundedness": 0.5,
		"hate_speech_detection": 3.0, "misinformation_detection": 2.5, "violence_detection": 2.5,
	}, "Weights for content moderation systems", map[string]any{
		"use_case":  "content_moderation",
		"platforms": []string{"social_media", "forums", "user_generated_content"},
	}),
}

// allPresets lists every Preset key, in the order the Python PRESETS dict
// iterated (insertion order), for ListPresets.
var allPresets = []Preset{
	Balanced, SafetyFocused, FairnessFocused, PrivacyFocused, PerformanceFocused,
	RegulatoryEUAIAct, RegulatorySOC2, Healthcare, Finance, ContentModeration,
}

func newPillarWeightsWithMeta(name string, weights map[string]float64, description string, metadata map[string]any) PillarWeights {
	pw := newPillarWeights(name, weights, description)
	pw.Metadata = metadata
	return pw
}
