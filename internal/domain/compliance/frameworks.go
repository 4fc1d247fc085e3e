package compliance

// frameworkCatalog is the registry of built-in frameworks, keyed by id.
var frameworkCatalog = map[string]Framework{
	"eu-ai-act":   euAIAct(),
	"nist-ai-rmf": nistAIRMF(),
	"soc2":        soc2(),
	"iso-42001":   iso42001(),
	"gdpr":        gdpr(),
}

// GetFramework returns the built-in framework with the given id.
func GetFramework(id string) (Framework, bool) {
	f, ok := frameworkCatalog[id]
	return f, ok
}

// ListFrameworks returns every built-in framework.
func ListFrameworks() []Framework {
	out := make([]Framework, 0, len(frameworkCatalog))
	for _, f := range frameworkCatalog {
		out = append(out, f)
	}
	return out
}

func euAIAct() Framework {
	return Framework{
		ID: "eu-ai-act", Name: "EU AI Act", Version: "2024",
		Description: "European Union Artificial Intelligence Act",
		Categories: []ControlCategory{
			{
				ID: "risk-management", Name: "Risk Management System",
				Controls: []Control{
					{ID: "art9-1", Name: "Risk Management System Establishment", Category: "risk-management", PillarMappings: []string{"robustness", "security", "governance"}},
					{ID: "art9-2a", Name: "Risk Identification and Analysis", Category: "risk-management", PillarMappings: []string{"robustness", "fairness", "security"}},
					{ID: "art9-2b", Name: "Risk Estimation and Evaluation", Category: "risk-management", PillarMappings: []string{"accuracy", "robustness", "testing"}},
					{ID: "art9-4", Name: "Risk Mitigation Measures", Category: "risk-management", PillarMappings: []string{"robustness", "security"}},
				},
			},
			{
				ID: "data-governance", Name: "Data and Data Governance",
				Controls: []Control{
					{ID: "art10-2", Name: "Data Governance Practices", Category: "data-governance", PillarMappings: []string{"trace", "governance", "privacy"}},
					{ID: "art10-3", Name: "Data Quality Requirements", Category: "data-governance", PillarMappings: []string{"trace", "fairness", "accuracy"}},
					{ID: "art10-5", Name: "Bias Examination", Category: "data-governance", PillarMappings: []string{"fairness"}},
				},
			},
			{
				ID: "transparency", Name: "Transparency and Information",
				Controls: []Control{
					{ID: "art13-1", Name: "Transparency Design", Category: "transparency", PillarMappings: []string{"explain"}},
					{ID: "art13-3b", Name: "Performance Characteristics", Category: "transparency", PillarMappings: []string{"accuracy", "robustness", "security", "testing"}},
				},
			},
			{
				ID: "human-oversight", Name: "Human Oversight",
				Controls: []Control{
					{ID: "art14-1", Name: "Human Oversight Design", Category: "human-oversight", PillarMappings: []string{"governance"}},
					{ID: "art14-4", Name: "Oversight Measures", Category: "human-oversight", PillarMappings: []string{"governance", "explain"}},
				},
			},
			{
				ID: "technical-requirements", Name: "Accuracy, Robustness and Cybersecurity",
				Controls: []Control{
					{ID: "art15-1", Name: "Appropriate Accuracy", Category: "technical-requirements", PillarMappings: []string{"accuracy", "testing"}},
					{ID: "art15-3", Name: "Robustness Requirements", Category: "technical-requirements", PillarMappings: []string{"robustness", "actions"}},
					{ID: "art15-4", Name: "Cybersecurity Resilience", Category: "technical-requirements", PillarMappings: []string{"security", "actions", "imitation"}},
				},
			},
		},
	}
}

func nistAIRMF() Framework {
	return Framework{
		ID: "nist-ai-rmf", Name: "NIST AI RMF", Version: "1.0",
		Description: "NIST AI Risk Management Framework",
		Categories: []ControlCategory{
			{
				ID: "govern", Name: "GOVERN",
				Controls: []Control{
					{ID: "gov-1", Name: "Legal and Regulatory Requirements", Category: "govern", PillarMappings: []string{"governance"}},
					{ID: "gov-1.1", Name: "AI Policies", Category: "govern", PillarMappings: []string{"governance"}},
					{ID: "gov-3", Name: "Workforce Diversity", Category: "govern", PillarMappings: []string{"governance", "fairness"}},
				},
			},
			{
				ID: "map", Name: "MAP",
				Controls: []Control{
					{ID: "map-1", Name: "Intended Purpose Documentation", Category: "map", PillarMappings: []string{"governance"}},
					{ID: "map-2", Name: "AI Actor Identification", Category: "map", PillarMappings: []string{"governance"}},
					{ID: "map-3", Name: "AI Lifecycle Risks", Category: "map", PillarMappings: []string{"robustness", "security", "governance"}},
				},
			},
			{
				ID: "measure", Name: "MEASURE",
				Controls: []Control{
					{ID: "mea-1", Name: "Risk Metrics", Category: "measure", PillarMappings: []string{"accuracy", "fairness", "testing"}},
					{ID: "mea-2", Name: "Trustworthiness Assessment", Category: "measure", PillarMappings: []string{"accuracy", "robustness", "security"}},
					{ID: "mea-3", Name: "Bias Assessment", Category: "measure", PillarMappings: []string{"fairness"}},
				},
			},
			{
				ID: "manage", Name: "MANAGE",
				Controls: []Control{
					{ID: "man-1", Name: "Risk Prioritization", Category: "manage", PillarMappings: []string{"governance"}},
					{ID: "man-2", Name: "Risk Treatment", Category: "manage", PillarMappings: []string{"robustness", "security"}},
					{ID: "man-4", Name: "Continuous Monitoring", Category: "manage", PillarMappings: []string{"testing", "robustness"}},
				},
			},
		},
	}
}

func soc2() Framework {
	return Framework{
		ID: "soc2", Name: "SOC 2 Type II", Version: "2017",
		Description: "SOC 2 Trust Services Criteria with AI extensions",
		Categories: []ControlCategory{
			{ID: "security", Name: "Security", Controls: []Control{
				{ID: "cc6.1", Name: "Logical Access Security", Category: "security", PillarMappings: []string{"security", "governance"}},
				{ID: "cc6.7", Name: "Transmission Security", Category: "security", PillarMappings: []string{"security", "privacy"}},
			}},
			{ID: "availability", Name: "Availability", Controls: []Control{
				{ID: "a1.1", Name: "AI System Availability", Category: "availability", PillarMappings: []string{"robustness", "testing"}},
			}},
			{ID: "confidentiality", Name: "Confidentiality", Controls: []Control{
				{ID: "c1.1", Name: "AI Data Confidentiality", Category: "confidentiality", PillarMappings: []string{"privacy", "imitation", "security"}},
			}},
			{ID: "processing-integrity", Name: "Processing Integrity", Controls: []Control{
				{ID: "pi1.1", Name: "AI Processing Integrity", Category: "processing-integrity", PillarMappings: []string{"accuracy", "robustness", "testing"}},
			}},
			{ID: "privacy", Name: "Privacy", Controls: []Control{
				{ID: "p1.1", Name: "AI Privacy Controls", Category: "privacy", PillarMappings: []string{"privacy"}},
			}},
		},
	}
}

func iso42001() Framework {
	return Framework{
		ID: "iso-42001", Name: "ISO/IEC 42001", Version: "2023",
		Description: "AI Management System Standard",
		Categories: []ControlCategory{
			{ID: "context", Name: "Context of the Organization", Controls: []Control{
				{ID: "iso-4.1", Name: "Understanding Context", Category: "context", PillarMappings: []string{"governance"}},
			}},
			{ID: "planning", Name: "Planning", Controls: []Control{
				{ID: "iso-6.1", Name: "Risk and Opportunity Assessment", Category: "planning", PillarMappings: []string{"robustness", "security", "governance"}},
			}},
			{ID: "support", Name: "Support", Controls: []Control{
				{ID: "iso-7.2", Name: "Competence", Category: "support", PillarMappings: []string{"governance"}},
			}},
			{ID: "operation", Name: "Operation", Controls: []Control{
				{ID: "iso-8.1", Name: "Operational Planning", Category: "operation", PillarMappings: []string{"governance", "trace"}},
				{ID: "iso-8.4", Name: "AI System Impact Assessment", Category: "operation", PillarMappings: []string{"fairness", "privacy", "robustness"}},
			}},
			{ID: "performance", Name: "Performance Evaluation", Controls: []Control{
				{ID: "iso-9.1", Name: "Monitoring and Measurement", Category: "performance", PillarMappings: []string{"accuracy", "testing", "robustness"}},
			}},
		},
	}
}

func gdpr() Framework {
	return Framework{
		ID: "gdpr", Name: "GDPR", Version: "2018",
		Description: "General Data Protection Regulation - AI/ML provisions",
		Categories: []ControlCategory{
			{ID: "lawfulness", Name: "Lawfulness of Processing", Controls: []Control{
				{ID: "art6", Name: "Lawful Basis for Processing", Category: "lawfulness", PillarMappings: []string{"privacy", "governance"}},
			}},
			{ID: "automated-decisions", Name: "Automated Decision-Making", Controls: []Control{
				{ID: "art22", Name: "Automated Individual Decisions", Category: "automated-decisions", PillarMappings: []string{"explain", "governance"}},
			}},
			{ID: "data-protection", Name: "Data Protection by Design", Controls: []Control{
				{ID: "art25", Name: "Privacy by Design", Category: "data-protection", PillarMappings: []string{"privacy"}},
			}},
			{ID: "dpia", Name: "Data Protection Impact Assessment", Controls: []Control{
				{ID: "art35", Name: "DPIA for AI Systems", Category: "dpia", PillarMappings: []string{"privacy", "fairness", "governance"}},
			}},
		},
	}
}
