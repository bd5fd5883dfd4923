package export

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Flatten produces a flat, CSV-ready record from one call-log row. Plain
// columns are copied by key, JSON fields are looked up inside their parent
// object and emitted under a prefixed key so they cannot collide with plain
// column names. Missing fields become "" so every row in a batch carries the
// same key set. A requested total_cost column is synthesized from the three
// per-provider cost columns.
func Flatten(row map[string]interface{}, basic, metadataFields, transcriptionFields []string) map[string]string {
	flat := make(map[string]string)

	for _, key := range basic {
		if key == "total_cost" {
			total := numberAt(row, "total_llm_cost") +
				numberAt(row, "total_tts_cost") +
				numberAt(row, "total_stt_cost")
			flat["total_cost"] = formatNumber(total)
			continue
		}
		if value, ok := row[key]; ok {
			flat[key] = cellString(value)
		} else {
			flat[key] = ""
		}
	}

	flattenJSONColumn(flat, row, "metadata", "metadata", metadataFields)
	flattenJSONColumn(flat, row, "transcription_metrics", "transcription", transcriptionFields)

	return flat
}

// Header returns the uniform column set of a batch, in a stable order.
func Header(basic, metadataFields, transcriptionFields []string) []string {
	header := append([]string(nil), basic...)
	for _, field := range metadataFields {
		header = append(header, "metadata_"+field)
	}
	for _, field := range transcriptionFields {
		header = append(header, "transcription_"+field)
	}
	return header
}

// flattenJSONColumn emits the requested fields of one JSON object column
// under prefixed keys, with "" standing in for anything absent.
func flattenJSONColumn(flat map[string]string, row map[string]interface{}, column, prefix string, fields []string) {
	object := asObject(row[column])
	for _, field := range fields {
		key := prefix + "_" + field
		value, ok := object[field]
		if !ok || value == nil {
			flat[key] = ""
			continue
		}
		flat[key] = cellString(value)
	}
}

// asObject coerces a JSONB column value to a map. pgx decodes jsonb to
// map[string]interface{} already; persisted exports may carry raw strings.
func asObject(v interface{}) map[string]interface{} {
	switch value := v.(type) {
	case map[string]interface{}:
		return value
	case []byte:
		var object map[string]interface{}
		if err := json.Unmarshal(value, &object); err != nil {
			return nil
		}
		return object
	case string:
		var object map[string]interface{}
		if err := json.Unmarshal([]byte(value), &object); err != nil {
			return nil
		}
		return object
	default:
		return nil
	}
}

// cellString renders a single value for a row/column export. Nested objects
// and arrays are serialized to their textual JSON form since flat records
// may only hold scalars.
func cellString(v interface{}) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case bool:
		return strconv.FormatBool(value)
	case float64:
		return formatNumber(value)
	case float32:
		return formatNumber(float64(value))
	case int:
		return strconv.Itoa(value)
	case int32:
		return strconv.FormatInt(int64(value), 10)
	case int64:
		return strconv.FormatInt(value, 10)
	case time.Time:
		return value.Format("2006-01-02 15:04:05")
	case map[string]interface{}, []interface{}:
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprintf("%v", value)
		}
		return string(encoded)
	default:
		return fmt.Sprintf("%v", value)
	}
}

func numberAt(row map[string]interface{}, key string) float64 {
	switch value := row[key].(type) {
	case float64:
		return value
	case float32:
		return float64(value)
	case int:
		return float64(value)
	case int32:
		return float64(value)
	case int64:
		return float64(value)
	default:
		return 0
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
