// Package record provides the fixed-width log record types.
package record

import "strings"

// Field names as they appear in schemas and configuration.
const (
	FieldID       = "id"
	FieldUserID   = "user_id"
	FieldBytesTx  = "bytes_tx"
	FieldBytesRx  = "bytes_rx"
	FieldDateTime = "datetime"
)

// FieldNames lists every field a schema must describe, in column order.
var FieldNames = []string{FieldID, FieldUserID, FieldBytesTx, FieldBytesRx, FieldDateTime}

// Fields holds the trimmed raw text of one log line, before any formatting.
type Fields struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	BytesTx  string `json:"bytes_tx"`
	BytesRx  string `json:"bytes_rx"`
	DateTime string `json:"datetime"`
}

// Record is one parsed log line with its display values.
// BytesTx and BytesRx are already thousands-separated; DateTime is rendered
// with the date style selected for the run.
type Record struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	BytesTx  string `json:"bytes_tx"`
	BytesRx  string `json:"bytes_rx"`
	DateTime string `json:"datetime"`
}

// Separator joins the columns of a report line.
const Separator = "|"

// Line renders the record as a report line: userId|bytesTx|bytesRx|datetime|id.
func (r Record) Line() string {
	return strings.Join([]string{r.UserID, r.BytesTx, r.BytesRx, r.DateTime, r.ID}, Separator)
}
