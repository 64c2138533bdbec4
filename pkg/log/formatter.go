package log

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// JSONFormatter renders entries as single-line JSON objects. Fields are
// merged at the top level; ts, level and msg are reserved keys.
type JSONFormatter struct {
	// TimestampFormat overrides time.RFC3339Nano.
	TimestampFormat string
	// PrettyPrint indents the output, for humans rather than collectors.
	PrettyPrint bool
}

// Format implements Formatter.
func (f *JSONFormatter) Format(entry *Entry) ([]byte, error) {
	data := make(map[string]interface{}, len(entry.Fields)+4)
	for k, v := range entry.Fields {
		data[k] = v
	}
	data["ts"] = entry.Timestamp.Format(f.timestampFormat())
	data["level"] = entry.Level.String()
	data["msg"] = entry.Message
	if entry.Caller != "" {
		data["caller"] = entry.Caller
	}
	if entry.Error != nil {
		data["error"] = entry.Error.Error()
	}

	var b []byte
	var err error
	if f.PrettyPrint {
		b, err = json.MarshalIndent(data, "", "  ")
	} else {
		b, err = json.Marshal(data)
	}
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

func (f *JSONFormatter) timestampFormat() string {
	if f.TimestampFormat != "" {
		return f.TimestampFormat
	}
	return time.RFC3339Nano
}

// TextFormatter renders entries as "ts LEVEL msg key=value ...", with fields
// in sorted key order so output is stable.
type TextFormatter struct {
	// TimestampFormat overrides time.RFC3339.
	TimestampFormat string
	// DisableTimestamp drops the leading timestamp, useful in tests.
	DisableTimestamp bool
}

// Format implements Formatter.
func (f *TextFormatter) Format(entry *Entry) ([]byte, error) {
	var b bytes.Buffer

	if !f.DisableTimestamp {
		format := f.TimestampFormat
		if format == "" {
			format = time.RFC3339
		}
		b.WriteString(entry.Timestamp.Format(format))
		b.WriteByte(' ')
	}
	b.WriteString(entry.Level.String())
	b.WriteByte(' ')
	b.WriteString(entry.Message)

	if len(entry.Fields) > 0 {
		keys := make([]string, 0, len(entry.Fields))
		for k := range entry.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, entry.Fields[k])
		}
	}
	if entry.Error != nil {
		fmt.Fprintf(&b, " error=%q", entry.Error.Error())
	}
	if entry.Caller != "" {
		fmt.Fprintf(&b, " caller=%s", entry.Caller)
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}
