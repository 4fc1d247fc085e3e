package compliance

// relevanceTable is a flat (pillar, framework, control) -> weight lookup.
// It is deliberately not owned by either Framework or a pillar type: the
// mapping is many-to-many in both directions, so a flat table avoids
// cyclic back-references between pillars and controls.
var relevanceTable = map[string]map[string]map[string]float64{
	"explain": {
		"eu-ai-act":   {"art13-1": 1.0, "art14-4": 0.7},
		"nist-ai-rmf": {"mea-2": 0.8, "gov-1.1": 0.5},
		"gdpr":        {"art22": 1.0},
		"iso-42001":   {"iso-9.1": 0.6},
	},
	"actions": {
		"eu-ai-act":   {"art15-3": 0.9, "art15-4": 0.8},
		"nist-ai-rmf": {"mea-2": 0.7, "man-2": 0.8},
	},
	"fairness": {
		"eu-ai-act":   {"art10-5": 1.0, "art10-3": 0.7},
		"nist-ai-rmf": {"mea-3": 1.0, "gov-3": 0.6},
		"gdpr":        {"art35": 0.7},
		"iso-42001":   {"iso-8.4": 0.8},
	},
	"robustness": {
		"eu-ai-act":   {"art15-3": 1.0, "art9-2b": 0.8},
		"nist-ai-rmf": {"mea-2": 0.9, "man-4": 0.7},
		"soc2":        {"a1.1": 0.8, "pi1.1": 0.7},
		"iso-42001":   {"iso-9.1": 0.8},
	},
	"trace": {
		"eu-ai-act":   {"art10-2": 1.0, "art10-3": 0.8},
		"nist-ai-rmf": {"map-1": 0.6},
		"iso-42001":   {"iso-8.1": 0.7},
	},
	"testing": {
		"eu-ai-act":   {"art15-1": 1.0, "art13-3b": 0.8},
		"nist-ai-rmf": {"mea-1": 1.0, "mea-2": 0.8},
		"soc2":        {"pi1.1": 0.8},
		"iso-42001":   {"iso-9.1": 0.9},
	},
	"imitation": {
		"eu-ai-act": {"art15-4": 0.7},
		"soc2":      {"c1.1": 0.9},
	},
	"privacy": {
		"eu-ai-act":   {"art10-2": 0.7},
		"nist-ai-rmf": {"map-3": 0.6},
		"soc2":        {"p1.1": 1.0, "c1.1": 0.7},
		"gdpr":        {"art6": 0.8, "art25": 1.0, "art35": 0.9},
	},
	"security": {
		"eu-ai-act":   {"art15-4": 1.0, "art9-4": 0.8},
		"nist-ai-rmf": {"mea-2": 0.8, "man-2": 0.9},
		"soc2":        {"cc6.1": 1.0, "cc6.7": 0.8},
	},
	"toxicity": {
		"eu-ai-act":   {"art9-2a": 0.8},
		"nist-ai-rmf": {"map-3": 0.7, "mea-2": 0.6},
	},
	"governance": {
		"eu-ai-act":   {"art9-1": 1.0, "art14-1": 0.8},
		"nist-ai-rmf": {"gov-1": 1.0, "gov-1.1": 1.0, "map-1": 0.8, "map-2": 0.9, "man-1": 0.7},
		"iso-42001":   {"iso-4.1": 0.9, "iso-6.1": 0.8, "iso-7.2": 0.7, "iso-8.1": 0.8},
		"gdpr":        {"art6": 0.6},
	},
	"accuracy": {
		"eu-ai-act":   {"art15-1": 1.0, "art13-3b": 0.9},
		"nist-ai-rmf": {"mea-1": 1.0, "mea-2": 0.8},
		"soc2":        {"pi1.1": 0.9},
		"iso-42001":   {"iso-9.1": 0.9},
	},
}

// relevanceForControl returns, for a given framework+control, the map of
// pillar -> relevance weight that contributes to its score.
func relevanceForControl(frameworkID, controlID string) map[string]float64 {
	out := make(map[string]float64)
	for pillar, frameworks := range relevanceTable {
		controls, ok := frameworks[frameworkID]
		if !ok {
			continue
		}
		if weight, ok := controls[controlID]; ok {
			out[pillar] = weight
		}
	}
	return out
}

// RequiredPillars returns the set of pillars that contribute to at least
// one control in the given framework.
func RequiredPillars(frameworkID string) []string {
	seen := make(map[string]bool)
	for pillar, frameworks := range relevanceTable {
		if _, ok := frameworks[frameworkID]; ok {
			seen[pillar] = true
		}
	}
	out := make([]string, 0, len(seen))
	for pillar := range seen {
		out = append(out, pillar)
	}
	return out
}
