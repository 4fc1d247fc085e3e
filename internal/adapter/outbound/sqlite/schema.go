// Package sqlite defines the persisted-state layout from spec.md §6 as Go
// DTOs and a DDL string, plus a minimal store over the evaluations table
// sufficient for the operator façade's submit/status/cancel operations.
// Schema migration is explicitly out of scope for the core (spec.md §1):
// this package creates its tables once at startup with CREATE TABLE IF NOT
// EXISTS and never alters them.
package sqlite

// ModelType enumerates the `models.model_type` column.
type ModelType string

const (
	ModelTypePredictive ModelType = "predictive"
	ModelTypeGenerative ModelType = "generative"
	ModelTypeAgentic    ModelType = "agentic"
)

// EvaluationStatus enumerates the `evaluations.status` column.
type EvaluationStatus string

const (
	EvaluationPending   EvaluationStatus = "pending"
	EvaluationRunning   EvaluationStatus = "running"
	EvaluationCompleted EvaluationStatus = "completed"
	EvaluationFailed    EvaluationStatus = "failed"
	EvaluationCancelled EvaluationStatus = "cancelled"
)

// RiskLevel enumerates the `evaluation_results.risk_level` and
// `compliance_reports` risk columns.
type RiskLevel string

const (
	RiskCritical RiskLevel = "critical"
	RiskHigh     RiskLevel = "high"
	RiskMedium   RiskLevel = "medium"
	RiskLow      RiskLevel = "low"
	RiskMinimal  RiskLevel = "minimal"
)

// ConnectorType enumerates the `connectors.connector_type` column.
type ConnectorType string

const (
	ConnectorOpenAI       ConnectorType = "openai"
	ConnectorAnthropic    ConnectorType = "anthropic"
	ConnectorAzureOpenAI  ConnectorType = "azure_openai"
	ConnectorBedrock      ConnectorType = "bedrock"
	ConnectorVertex       ConnectorType = "vertex"
	ConnectorHuggingFace  ConnectorType = "huggingface"
	ConnectorOllama       ConnectorType = "ollama"
	ConnectorCustom       ConnectorType = "custom"
)

// Schema is the full DDL for the persisted-state layout in spec.md §6.
// updated_at columns are maintained by an AFTER UPDATE trigger per table,
// mirroring the row-level trigger the spec calls out rather than requiring
// every caller to set it explicitly.
const Schema = `
CREATE TABLE IF NOT EXISTS models (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	model_type  TEXT NOT NULL CHECK (model_type IN ('predictive','generative','agentic')),
	metadata    TEXT NOT NULL DEFAULT '{}',
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS evaluations (
	id           TEXT PRIMARY KEY,
	model_id     TEXT NOT NULL REFERENCES models(id),
	status       TEXT NOT NULL CHECK (status IN ('pending','running','completed','failed','cancelled')),
	pillars      TEXT NOT NULL DEFAULT '[]',
	config       TEXT NOT NULL DEFAULT '{}',
	workflow_name TEXT NOT NULL DEFAULT '',
	created_at   TEXT NOT NULL,
	updated_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS evaluation_results (
	evaluation_id TEXT NOT NULL REFERENCES evaluations(id),
	pillar        TEXT NOT NULL,
	score          REAL NOT NULL,
	confidence     REAL NOT NULL,
	risk_level     TEXT NOT NULL CHECK (risk_level IN ('critical','high','medium','low','minimal')),
	raw_metrics    TEXT NOT NULL DEFAULT '{}',
	findings       TEXT NOT NULL DEFAULT '[]',
	duration_ms    INTEGER NOT NULL DEFAULT 0,
	created_at     TEXT NOT NULL,
	PRIMARY KEY (evaluation_id, pillar)
);

CREATE TABLE IF NOT EXISTS connectors (
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	connector_type  TEXT NOT NULL,
	credentials_ct  BLOB NOT NULL,
	created_at      TEXT NOT NULL,
	updated_at      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS guardrail_policies (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	definition  TEXT NOT NULL,
	enabled     INTEGER NOT NULL DEFAULT 1,
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS guardrail_events (
	id              TEXT PRIMARY KEY,
	checkpoint_name TEXT NOT NULL,
	phase           TEXT NOT NULL,
	action          TEXT NOT NULL,
	passed          INTEGER NOT NULL,
	reasons         TEXT NOT NULL DEFAULT '[]',
	duration_ms     INTEGER NOT NULL DEFAULT 0,
	created_at      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS compliance_reports (
	id           TEXT PRIMARY KEY,
	model_id     TEXT NOT NULL REFERENCES models(id),
	framework_id TEXT NOT NULL,
	control_scores TEXT NOT NULL DEFAULT '{}',
	gaps         TEXT NOT NULL DEFAULT '[]',
	created_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS spm_inventory (
	id          TEXT PRIMARY KEY,
	model_id    TEXT NOT NULL REFERENCES models(id),
	deployment  TEXT NOT NULL,
	owner       TEXT NOT NULL DEFAULT '',
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS audit_logs (
	id          TEXT PRIMARY KEY,
	actor       TEXT NOT NULL,
	action      TEXT NOT NULL,
	target      TEXT NOT NULL DEFAULT '',
	metadata    TEXT NOT NULL DEFAULT '{}',
	created_at  TEXT NOT NULL
);

CREATE TRIGGER IF NOT EXISTS trg_models_updated_at
AFTER UPDATE ON models BEGIN
	UPDATE models SET updated_at = datetime('now') WHERE id = NEW.id;
END;

CREATE TRIGGER IF NOT EXISTS trg_evaluations_updated_at
AFTER UPDATE ON evaluations BEGIN
	UPDATE evaluations SET updated_at = datetime('now') WHERE id = NEW.id;
END;

CREATE TRIGGER IF NOT EXISTS trg_connectors_updated_at
AFTER UPDATE ON connectors BEGIN
	UPDATE connectors SET updated_at = datetime('now') WHERE id = NEW.id;
END;

CREATE TRIGGER IF NOT EXISTS trg_guardrail_policies_updated_at
AFTER UPDATE ON guardrail_policies BEGIN
	UPDATE guardrail_policies SET updated_at = datetime('now') WHERE id = NEW.id;
END;

CREATE TRIGGER IF NOT EXISTS trg_spm_inventory_updated_at
AFTER UPDATE ON spm_inventory BEGIN
	UPDATE spm_inventory SET updated_at = datetime('now') WHERE id = NEW.id;
END;
`

// Model mirrors a row of the models table.
type Model struct {
	ID        string
	Name      string
	ModelType ModelType
	Metadata  string // JSON
	CreatedAt string
	UpdatedAt string
}

// Evaluation mirrors a row of the evaluations table.
//
// WorkflowName is a plain string, not a pointer: per spec.md §9 some
// workflow-engine call sites never populate it on success, so it is simply
// empty rather than nil — callers must not assume presence either way.
type Evaluation struct {
	ID           string
	ModelID      string
	Status       EvaluationStatus
	Pillars      string // JSON array
	Config       string // JSON
	WorkflowName string
	CreatedAt    string
	UpdatedAt    string
}

// EvaluationResult mirrors a row of the evaluation_results table: one row
// per (evaluation, pillar).
type EvaluationResult struct {
	EvaluationID string
	Pillar       string
	Score        float64
	Confidence   float64
	RiskLevel    RiskLevel
	RawMetrics   string // JSON
	Findings     string // JSON array
	DurationMS   int64
	CreatedAt    string
}

// Connector mirrors a row of the connectors table. Credentials are stored
// as opaque ciphertext; this package never decrypts them.
type Connector struct {
	ID              string
	Name            string
	ConnectorType   ConnectorType
	CredentialsCT   []byte
	CreatedAt       string
	UpdatedAt       string
}

// GuardrailPolicy mirrors a row of the guardrail_policies table.
type GuardrailPolicy struct {
	ID         string
	Name       string
	Definition string // JSON
	Enabled    bool
	CreatedAt  string
	UpdatedAt  string
}

// GuardrailEvent mirrors a row of the guardrail_events table: one row per
// checkpoint invocation, kept for audit/replay.
type GuardrailEvent struct {
	ID             string
	CheckpointName string
	Phase          string
	Action         string
	Passed         bool
	Reasons        string // JSON array
	DurationMS     int64
	CreatedAt      string
}

// ComplianceReport mirrors a row of the compliance_reports table.
type ComplianceReport struct {
	ID            string
	ModelID       string
	FrameworkID   string
	ControlScores string // JSON map
	Gaps          string // JSON array
	CreatedAt     string
}

// SPMInventoryEntry mirrors a row of the spm_inventory table (Security
// Posture Management: which deployment runs which model, and who owns it).
type SPMInventoryEntry struct {
	ID         string
	ModelID    string
	Deployment string
	Owner      string
	CreatedAt  string
	UpdatedAt  string
}

// AuditLogEntry mirrors a row of the audit_logs table.
type AuditLogEntry struct {
	ID        string
	Actor     string
	Action    string
	Target    string
	Metadata  string // JSON
	CreatedAt string
}
