// Package schemas embeds the JSON Schemas describing exported data.
package schemas

import _ "embed"

// Record is the JSON Schema of a JSON export: an array of character records.
//
//go:embed record.schema.json
var Record string
