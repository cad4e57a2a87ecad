package targetfile

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// codec converts between file bytes and a generic tree for the structured
// formats. Rows has no tree form and is handled line by line.
type codec interface {
	decode(data []byte) (any, error)
	encode(tree any) ([]byte, error)
}

func codecFor(f Format) codec {
	switch f {
	case List:
		return jsonCodec{}
	case Mapping:
		return yamlCodec{}
	case Table:
		return tomlCodec{}
	default:
		return nil
	}
}

type jsonCodec struct{}

func (jsonCodec) decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("trailing data after document")
	}
	return v, nil
}

func (jsonCodec) encode(tree any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(tree); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type yamlCodec struct{}

func (yamlCodec) decode(data []byte) (any, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func (yamlCodec) encode(tree any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(tree); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type tomlCodec struct{}

func (tomlCodec) decode(data []byte) (any, error) {
	v := map[string]any{}
	if err := toml.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func (tomlCodec) encode(tree any) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(tree); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// csvFields returns every field of every data row; the header is skipped.
func csvFields(data []byte) ([]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var out []string
	header := true
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if header {
			header = false
			continue
		}
		out = append(out, rec...)
	}
	return out, nil
}

// csvRewrite replaces the leading field of each data line when it is a key
// of subs. Quoted fields are not understood. The header line and every line
// terminator are kept verbatim.
func csvRewrite(data []byte, subs map[string]string) ([]byte, int) {
	if len(data) == 0 {
		return data, 0
	}

	lines := strings.SplitAfter(string(data), "\n")
	n := 0
	for i := 1; i < len(lines); i++ {
		body, eol := splitEOL(lines[i])
		field, rest, found := strings.Cut(body, ",")
		r, ok := subs[field]
		if body == "" || !ok {
			continue
		}
		if found {
			rest = "," + rest
		}
		lines[i] = r + rest + eol
		n++
	}
	if n == 0 {
		return data, 0
	}
	return []byte(strings.Join(lines, "")), n
}

// splitEOL separates a line from its "\n" or "\r\n" terminator.
func splitEOL(line string) (string, string) {
	if body, ok := strings.CutSuffix(line, "\r\n"); ok {
		return body, "\r\n"
	}
	if body, ok := strings.CutSuffix(line, "\n"); ok {
		return body, "\n"
	}
	return line, ""
}
