package calllogs

// Table is the call-log table name.
const Table = "pype_voice_call_logs"

// baseSelectColumns are fetched for every role.
var baseSelectColumns = []string{
	"id", "agent_id", "call_id", "customer_number", "call_ended_reason",
	"call_started_at", "call_ended_at", "duration_seconds", "recording_url",
	"metadata", "environment", "transcript_type", "transcript_json",
	"created_at", "transcription_metrics", "billing_duration_seconds", "metrics",
}

// roleRestrictedColumns maps a role to the columns it must never see.
// Roles without an entry see everything.
var roleRestrictedColumns = map[string][]string{
	"user": {
		"total_cost",
		"total_llm_cost",
		"total_tts_cost",
		"total_stt_cost",
		"avg_latency",
		"billing_duration_seconds",
	},
}

// ColumnVisibleForRole reports whether a role may see a column. An unknown
// caller (empty role) sees nothing sensitive.
func ColumnVisibleForRole(column, role string) bool {
	if role == "" {
		return false
	}
	restricted, ok := roleRestrictedColumns[role]
	if !ok {
		return true
	}
	for _, c := range restricted {
		if c == column {
			return false
		}
	}
	return true
}

// SelectColumns returns the select list for a role, widening the base set
// with latency and cost columns where the role allows them.
func SelectColumns(role string) []string {
	columns := append([]string(nil), baseSelectColumns...)

	if ColumnVisibleForRole("avg_latency", role) {
		columns = append(columns, "avg_latency")
	}
	if ColumnVisibleForRole("total_llm_cost", role) {
		columns = append(columns, "total_llm_cost", "total_tts_cost", "total_stt_cost")
	}

	return columns
}
