package ai

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

var ErrNoJSONObject = errors.New("response contains no JSON object")

// reply is the object every AI answer must contain.
type reply struct {
	Thought string          `json:"thought"`
	Speech  string          `json:"speech"`
	Action  json.RawMessage `json:"action"`
}

// ExtractObject returns the first balanced {...} in raw, skipping braces inside
// JSON strings. Surrounding prose and code fences are ignored.
func ExtractObject(raw string) (string, error) {
	start := strings.IndexByte(raw, '{')
	for start >= 0 {
		depth := 0
		inString, escaped := false, false
		for i := start; i < len(raw); i++ {
			c := raw[i]
			if inString {
				switch {
				case escaped:
					escaped = false
				case c == '\\':
					escaped = true
				case c == '"':
					inString = false
				}
				continue
			}
			switch c {
			case '"':
				inString = true
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return raw[start : i+1], nil
				}
			}
		}
		next := strings.IndexByte(raw[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", ErrNoJSONObject
}

// parseReply extracts and decodes the answer object. Action may be a JSON number
// or a numeric string.
func parseReply(content string) (reply, int, error) {
	var r reply
	obj, err := ExtractObject(content)
	if err != nil {
		return r, 0, err
	}
	if err := json.Unmarshal([]byte(obj), &r); err != nil {
		return r, 0, err
	}
	action, err := parseAction(r.Action)
	if err != nil {
		return r, 0, err
	}
	return r, action, nil
}

func parseAction(raw json.RawMessage) (int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, errors.New("action is missing")
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if i, err := n.Int64(); err == nil {
			return int(i), nil
		}
		f, err := n.Float64()
		if err != nil {
			return 0, err
		}
		return int(f), nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(s))
}
