package wrappers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/user/cyberusb/pkg/engine"
	"github.com/user/cyberusb/pkg/sysexec"
)

// Source is an External Data Source Adapter: it runs one platform command
// and turns its output into records. On failure it returns whatever records
// it had collected (usually none) and an error wrapping
// sysexec.ErrSourceUnavailable or sysexec.ErrCapabilityMissing. Callers treat
// both as non-fatal.
type Source interface {
	Name() string
	Collect(ctx context.Context) ([]engine.Record, error)
}

const powershell = "powershell"

func psArgs(script string) []string {
	return []string{"-NoProfile", "-NonInteractive", "-Command", script}
}

// runPowerShell runs script and returns stdout. A missing powershell binary
// or a non-zero exit is reported as unavailable.
func runPowerShell(ctx context.Context, r sysexec.Runner, source, script string) ([]byte, error) {
	out, err := r.Output(ctx, powershell, psArgs(script)...)
	if err != nil {
		return nil, sysexec.Unavailable(source, err)
	}
	return out, nil
}

// decodePSJSON decodes ConvertTo-Json output, which is an array for several
// objects, a bare object for exactly one, and empty for none. Values are
// flattened to strings; numbers keep their textual form and null becomes "".
func decodePSJSON(data []byte) ([]map[string]string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw []map[string]interface{}
	switch data[0] {
	case '[':
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
	case '{':
		var one map[string]interface{}
		if err := dec.Decode(&one); err != nil {
			return nil, err
		}
		raw = append(raw, one)
	default:
		return nil, fmt.Errorf("unexpected output starting with %q", data[0])
	}

	items := make([]map[string]string, 0, len(raw))
	for _, obj := range raw {
		item := make(map[string]string, len(obj))
		for k, v := range obj {
			switch val := v.(type) {
			case nil:
				item[k] = ""
			case string:
				item[k] = val
			case json.Number:
				item[k] = val.String()
			default:
				item[k] = fmt.Sprint(val)
			}
		}
		items = append(items, item)
	}
	return items, nil
}

// mapRecord copies the PowerShell properties named in fields (property ->
// record key) into a record.
func mapRecord(source string, item map[string]string, fields [][2]string) engine.Record {
	rec := engine.Record{Source: source, Fields: make(map[string]string, len(fields))}
	for _, f := range fields {
		rec.Fields[f[1]] = item[f[0]]
	}
	return rec
}
