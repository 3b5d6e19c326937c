package interp

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/renameio"

	"github.com/aledsdavies/tale/internal/value"
)

// fileHandle is the Foreign payload behind a FileHandle Value: the live
// *os.File that OpenFile opened, a buffered reader over it, and its mode.
type fileHandle struct {
	f      *os.File
	reader *bufio.Reader
	mode   string
}

// OpenFile implements `_open_file`: mode is "r" for every translated `open`
// statement; write/append use their own dedicated verbs.
func OpenFile(path, mode string) (value.Value, error) {
	var flag int
	switch mode {
	case "r":
		flag = os.O_RDONLY
	case "w":
		flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	case "a":
		flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	default:
		return value.Value{}, fmt.Errorf("unknown file mode %q", mode)
	}
	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return value.Value{}, err
	}
	return value.FileHandleValue(path, &fileHandle{f: f, reader: bufio.NewReader(f), mode: mode}), nil
}

func (m *Machine) fileMethod(recv value.Value, attr string, args []value.Value) (value.Value, error) {
	fh, _ := recv.Foreign().(*fileHandle)
	if fh == nil {
		return value.Value{}, fmt.Errorf("file handle is already closed")
	}
	switch attr {
	case "write":
		if len(args) < 1 {
			return value.Value{}, fmt.Errorf("write() takes 1 argument")
		}
		if fh.f == nil {
			return value.Value{}, fmt.Errorf("file not open for writing")
		}
		_, err := fh.f.WriteString(args[0].String())
		return value.NullValue(), err
	case "read":
		if fh.f == nil {
			return value.Value{}, fmt.Errorf("file not open for reading")
		}
		data, err := os.ReadFile(fh.f.Name())
		if err != nil {
			return value.Value{}, err
		}
		return value.StrValue(string(data)), nil
	case "close":
		if fh.f != nil {
			err := fh.f.Close()
			fh.f = nil
			return value.NullValue(), err
		}
		return value.NullValue(), nil
	}
	return value.Value{}, fmt.Errorf("'file' object has no attribute '%s'", attr)
}

// WriteJSON and ReadJSON implement `write_json`/`read_json`, routed through
// renameio so the file is either written whole or not at all.
func WriteJSON(path string, v value.Value) error {
	data, err := jsonDumps(v)
	if err != nil {
		return err
	}
	return renameio.WriteFile(path, []byte(data), 0o644)
}

func ReadJSON(path string) (value.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return value.Value{}, err
	}
	return jsonLoads(string(data))
}

func jsonDumps(v value.Value) (string, error) {
	generic := toGeneric(v)
	out, err := json.Marshal(generic)
	return string(out), err
}

func jsonLoads(s string) (value.Value, error) {
	var generic any
	if err := json.Unmarshal([]byte(s), &generic); err != nil {
		return value.Value{}, err
	}
	return fromGeneric(generic), nil
}

func toGeneric(v value.Value) any {
	switch v.Kind {
	case value.Null:
		return nil
	case value.Bool:
		return v.Bool()
	case value.Int:
		return v.Int64()
	case value.Float:
		return v.Float64()
	case value.Str:
		return v.Str()
	case value.List, value.Tuple, value.Set:
		out := make([]any, 0, len(v.Items()))
		for _, it := range v.Items() {
			out = append(out, toGeneric(it))
		}
		return out
	case value.Map:
		out := map[string]any{}
		for _, p := range v.Pairs() {
			out[p.Key.String()] = toGeneric(p.Val)
		}
		return out
	default:
		return v.String()
	}
}

func fromGeneric(g any) value.Value {
	switch t := g.(type) {
	case nil:
		return value.NullValue()
	case bool:
		return value.BoolValue(t)
	case float64:
		if t == float64(int64(t)) {
			return value.IntValue(int64(t))
		}
		return value.FloatValue(t)
	case string:
		return value.StrValue(t)
	case []any:
		items := make([]value.Value, len(t))
		for i, it := range t {
			items[i] = fromGeneric(it)
		}
		return value.ListValue(items)
	case map[string]any:
		var pairs []value.Pair
		for k, v := range t {
			pairs = append(pairs, value.Pair{Key: value.StrValue(k), Val: fromGeneric(v)})
		}
		return value.MapValue(pairs)
	default:
		return value.NullValue()
	}
}

// WriteCSV and ReadCSV implement `write_csv`/`read_csv`: rows are lists of
// lists, written atomically via renameio the same way WriteJSON is.
func WriteCSV(path string, rows value.Value) error {
	var buf []byte
	w := &csvBuffer{}
	cw := csv.NewWriter(w)
	for _, row := range rows.Items() {
		record := make([]string, len(row.Items()))
		for i, cell := range row.Items() {
			record[i] = cell.String()
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	buf = w.data
	return renameio.WriteFile(path, buf, 0o644)
}

type csvBuffer struct{ data []byte }

func (b *csvBuffer) Write(p []byte) (int, error) {
	b.data = append(b.data, p...)
	return len(p), nil
}

func ReadCSV(path string) (value.Value, error) {
	f, err := os.Open(path)
	if err != nil {
		return value.Value{}, err
	}
	defer f.Close()

	cr := csv.NewReader(f)
	records, err := cr.ReadAll()
	if err != nil {
		return value.Value{}, err
	}
	rows := make([]value.Value, len(records))
	for i, rec := range records {
		cells := make([]value.Value, len(rec))
		for j, c := range rec {
			cells[j] = value.StrValue(c)
		}
		rows[i] = value.ListValue(cells)
	}
	return value.ListValue(rows), nil
}
