// Package evidence decodes probe output into fingerprint.Response records.
//
// A record is an object with status_code (or status), headers, cookies and body (or
// body_snippet). Headers and cookies may be objects or lists of [name, value] pairs, and
// scalar values of any type are coerced to strings. Unknown fields such as final_url and
// timing_ms are ignored. When a record carries no cookies they are derived from its
// Set-Cookie header.
package evidence

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"github.com/vulntor/siteprint/pkg/fingerprint"
)

// Format selects the decoder for an evidence document.
type Format string

const (
	FormatAuto  Format = ""
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
)

// maxLineBytes bounds a single JSON Lines record.
const maxLineBytes = 16 * 1024 * 1024

// FormatFromPath guesses the format from a file extension. Unknown extensions yield
// FormatAuto.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".jsonl", ".ndjson":
		return FormatJSONL
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatAuto
	}
}

// DecodeFile reads evidence from path. "-" reads standard input.
func DecodeFile(path string) ([]fingerprint.Response, error) {
	if path == "-" {
		return Decode(os.Stdin, FormatAuto)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open evidence file: %w", err)
	}
	defer f.Close()
	return Decode(f, FormatFromPath(path))
}

// Decode reads every record from r.
func Decode(r io.Reader, format Format) ([]fingerprint.Response, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read evidence: %w", err)
	}
	return DecodeBytes(data, format)
}

// DecodeBytes decodes an evidence document. With FormatAuto the format is sniffed from
// the content: a leading '[' or a single object is JSON, several objects on separate lines
// are JSON Lines, anything else is YAML.
func DecodeBytes(data []byte, format Format) ([]fingerprint.Response, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fingerprint.NewInvalidEvidenceError(errors.New("no evidence records"))
	}

	var (
		raw []map[string]any
		err error
	)
	switch format {
	case FormatJSON:
		raw, err = decodeJSON(trimmed)
	case FormatJSONL:
		raw, err = decodeJSONLines(trimmed)
	case FormatYAML:
		raw, err = decodeYAML(trimmed)
	case FormatAuto:
		raw, err = sniff(trimmed)
	default:
		err = fmt.Errorf("unsupported evidence format %q", format)
	}
	if err != nil {
		return nil, fingerprint.NewInvalidEvidenceError(err)
	}
	if len(raw) == 0 {
		return nil, fingerprint.NewInvalidEvidenceError(errors.New("no evidence records"))
	}

	responses := make([]fingerprint.Response, 0, len(raw))
	for i, rec := range raw {
		resp, err := FromRecord(rec)
		if err != nil {
			return nil, fingerprint.NewInvalidEvidenceError(fmt.Errorf("record %d: %w", i+1, err))
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

func sniff(data []byte) ([]map[string]any, error) {
	switch data[0] {
	case '[':
		return decodeJSON(data)
	case '{':
		if records, err := decodeJSON(data); err == nil {
			return records, nil
		}
		return decodeJSONLines(data)
	default:
		return decodeYAML(data)
	}
}

func decodeJSON(data []byte) ([]map[string]any, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse JSON evidence: %w", err)
	}
	return recordList(doc)
}

func decodeJSONLines(data []byte) ([]map[string]any, error) {
	var records []map[string]any
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		var rec map[string]any
		if err := json.Unmarshal(text, &rec); err != nil {
			return nil, fmt.Errorf("parse JSON Lines evidence, line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read JSON Lines evidence: %w", err)
	}
	return records, nil
}

func decodeYAML(data []byte) ([]map[string]any, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse YAML evidence: %w", err)
	}
	return recordList(doc)
}

// recordList accepts a list of records, a single record, or an object with a
// "responses" list.
func recordList(doc any) ([]map[string]any, error) {
	switch v := doc.(type) {
	case []any:
		records := make([]map[string]any, 0, len(v))
		for i, item := range v {
			rec, err := cast.ToStringMapE(item)
			if err != nil {
				return nil, fmt.Errorf("record %d is not an object", i+1)
			}
			records = append(records, rec)
		}
		return records, nil
	case map[string]any:
		if inner, ok := v["responses"]; ok {
			return recordList(inner)
		}
		return []map[string]any{v}, nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("unexpected evidence document of type %T", doc)
	}
}

// FromRecord converts one decoded record into a Response.
func FromRecord(rec map[string]any) (fingerprint.Response, error) {
	var resp fingerprint.Response

	status, ok := rec["status_code"]
	if !ok {
		status = rec["status"]
	}
	if status != nil {
		code, err := cast.ToIntE(status)
		if err != nil {
			return resp, fmt.Errorf("status_code: %w", err)
		}
		resp.StatusCode = code
	}

	headers, setCookies, err := headerMap(rec["headers"])
	if err != nil {
		return resp, fmt.Errorf("headers: %w", err)
	}
	resp.Headers = headers

	cookies, err := pairMap(rec["cookies"])
	if err != nil {
		return resp, fmt.Errorf("cookies: %w", err)
	}
	if len(cookies) == 0 {
		cookies = parseSetCookies(setCookies)
	}
	resp.Cookies = cookies

	body, ok := rec["body"]
	if !ok || body == nil {
		body = rec["body_snippet"]
	}
	if body != nil {
		if resp.Body, err = cast.ToStringE(body); err != nil {
			return resp, fmt.Errorf("body: %w", err)
		}
	}
	return resp, nil
}

// headerMap decodes headers and returns every Set-Cookie line separately. Repeated and
// multi-valued headers are joined with ", ", Set-Cookie lines with a newline.
func headerMap(v any) (map[string]string, []string, error) {
	entries, err := entries(v)
	if err != nil {
		return nil, nil, err
	}
	headers := make(map[string]string, len(entries))
	var setCookies []string
	for _, e := range entries {
		values, err := stringValues(e.value)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", e.name, err)
		}
		sep := ", "
		if strings.EqualFold(e.name, "set-cookie") {
			sep = "\n"
			for _, line := range values {
				setCookies = append(setCookies, strings.Split(line, "\n")...)
			}
		}
		if prev, ok := headers[e.name]; ok {
			values = append([]string{prev}, values...)
		}
		headers[e.name] = strings.Join(values, sep)
	}
	return headers, setCookies, nil
}

func pairMap(v any) (map[string]string, error) {
	entries, err := entries(v)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		value, err := cast.ToStringE(e.value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.name, err)
		}
		out[e.name] = value
	}
	return out, nil
}

type entry struct {
	name  string
	value any
}

// entries reads either an object or a list of [name, value] pairs.
func entries(v any) ([]entry, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case []any:
		out := make([]entry, 0, len(t))
		for i, item := range t {
			pair, ok := item.([]any)
			if !ok || len(pair) != 2 {
				return nil, fmt.Errorf("entry %d is not a [name, value] pair", i+1)
			}
			name, err := cast.ToStringE(pair[0])
			if err != nil {
				return nil, fmt.Errorf("entry %d: %w", i+1, err)
			}
			out = append(out, entry{name: name, value: pair[1]})
		}
		return out, nil
	default:
		m, err := cast.ToStringMapE(v)
		if err != nil {
			return nil, err
		}
		out := make([]entry, 0, len(m))
		for name, value := range m {
			out = append(out, entry{name: name, value: value})
		}
		return out, nil
	}
}

func stringValues(v any) ([]string, error) {
	if list, ok := v.([]any); ok {
		return cast.ToStringSliceE(list)
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return nil, err
	}
	return []string{s}, nil
}

func parseSetCookies(lines []string) map[string]string {
	cookies := make(map[string]string)
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		c, err := http.ParseSetCookie(line)
		if err != nil {
			continue
		}
		if _, seen := cookies[c.Name]; !seen {
			cookies[c.Name] = c.Value
		}
	}
	return cookies
}

// FromHTTP builds a Response from an in-process HTTP exchange. Set-Cookie lines are kept
// newline separated and parsed into Cookies.
func FromHTTP(status int, header http.Header, body string) fingerprint.Response {
	resp := fingerprint.Response{
		StatusCode: status,
		Headers:    make(map[string]string, len(header)),
		Cookies:    make(map[string]string),
		Body:       body,
	}
	for name, values := range header {
		sep := ", "
		if http.CanonicalHeaderKey(name) == "Set-Cookie" {
			sep = "\n"
		}
		resp.Headers[name] = strings.Join(values, sep)
	}
	for _, c := range (&http.Response{Header: header}).Cookies() {
		if _, seen := resp.Cookies[c.Name]; !seen {
			resp.Cookies[c.Name] = c.Value
		}
	}
	return resp
}
