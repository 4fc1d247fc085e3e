package threshold

// Strict, Standard, and Lenient are the pre-defined policies for common
// deployment contexts. Each runs through New, so a typo that breaks
// monotonicity panics at package init rather than silently producing a
// broken policy.
var (
	Strict = Policy{
		Name: "strict",
		Thresholds: map[string]Config{
			"overall":  must(New("overall", 0.5, 0.7, 0.85, 0.95, true)),
			"fairness": must(New("fairness", 0.5, 0.7, 0.85, 0.95, true)),
			"privacy":  must(New("privacy", 0.6, 0.75, 0.9, 0.95, true)),
			"security": must(New("security", 0.5, 0.7, 0.85, 0.95, true)),
		},
		MaxAcceptableRisk:  RiskLow,
		FailOnAnyViolation: true,
		Description:        "Strict policy for high-risk applications",
	}

	Standard = Policy{
		Name:               "standard",
		Thresholds:         copyDefaults(),
		MaxAcceptableRisk:  RiskMedium,
		FailOnAnyViolation: false,
		Description:        "Standard policy for general use",
	}

	Lenient = Policy{
		Name: "lenient",
		Thresholds: map[string]Config{
			"overall":  must(New("overall", 0.2, 0.4, 0.6, 0.75, true)),
			"fairness": must(New("fairness", 0.2, 0.4, 0.6, 0.75, true)),
			"privacy":  must(New("privacy", 0.3, 0.5, 0.7, 0.85, true)),
		},
		MaxAcceptableRisk:  RiskHigh,
		FailOnAnyViolation: false,
		Description:        "Lenient policy for development/testing",
	}
)

func copyDefaults() map[string]Config {
	out := make(map[string]Config, len(defaultThresholds))
	for k, v := range defaultThresholds {
		out[k] = v
	}
	return out
}

// NamedPolicy resolves one of the built-in policies by name.
func NamedPolicy(name string) (Policy, bool) {
	switch name {
	case "strict":
		return Strict, true
	case "standard":
		return Standard, true
	case "lenient":
		return Lenient, true
	default:
		return Policy{}, false
	}
}
