package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// ErrUnknownCommand is returned for names missing from the catalog.
var ErrUnknownCommand = errors.New("unknown command")

// ArgumentError reports a missing or malformed command argument.
type ArgumentError struct {
	Command string
	Arg     string
	Reason  string
}

// Error implements the error interface.
func (e *ArgumentError) Error() string {
	if e.Arg == "" {
		return fmt.Sprintf("command %s: %s", e.Command, e.Reason)
	}
	return fmt.Sprintf("command %s: argument %q %s", e.Command, e.Arg, e.Reason)
}

// Field copies one argument into a body object.
type Field struct {
	// Arg is the argument name.
	Arg string

	// Key is the body key; empty means Arg.
	Key string

	// Default is used when the argument is absent. A nil Default makes the
	// argument required.
	Default json.RawMessage
}

// Command describes one backend call.
type Command struct {
	Name   string
	Method string

	// Path may contain {arg} placeholders, filled from string arguments.
	Path string

	// Query lists optional arguments appended as query parameters.
	Query []string

	// BodyArg forwards one argument verbatim as the body.
	BodyArg string

	// Fields builds an object body from several arguments.
	Fields []Field
}

// Request is a resolved backend call.
type Request struct {
	Method string
	Path   string
	Body   json.RawMessage
}

// Lookup returns the command registered under name.
func Lookup(name string) (Command, bool) {
	cmd, ok := catalog[name]
	return cmd, ok
}

// Names returns every command name in sorted order.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve builds the backend request for command name. args must be a JSON
// object or empty.
func Resolve(name string, args json.RawMessage) (Request, error) {
	cmd, ok := Lookup(name)
	if !ok {
		return Request{}, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	return cmd.Resolve(args)
}

// Resolve builds the backend request from args.
func (c Command) Resolve(args json.RawMessage) (Request, error) {
	values := map[string]json.RawMessage{}
	if trimmed := strings.TrimSpace(string(args)); trimmed != "" && trimmed != "null" {
		if err := json.Unmarshal(args, &values); err != nil {
			return Request{}, &ArgumentError{Command: c.Name, Reason: "arguments must be a JSON object"}
		}
	}

	path, err := c.expandPath(values)
	if err != nil {
		return Request{}, err
	}

	query := url.Values{}
	for _, q := range c.Query {
		raw, ok := values[q]
		if !ok || isNull(raw) {
			continue
		}
		s, err := scalar(raw)
		if err != nil {
			return Request{}, &ArgumentError{Command: c.Name, Arg: q, Reason: err.Error()}
		}
		query.Set(q, s)
	}
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	body, err := c.body(values)
	if err != nil {
		return Request{}, err
	}

	return Request{Method: c.Method, Path: path, Body: body}, nil
}

func (c Command) expandPath(values map[string]json.RawMessage) (string, error) {
	var b strings.Builder
	rest := c.Path
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			b.WriteString(rest)
			return b.String(), nil
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			b.WriteString(rest)
			return b.String(), nil
		}
		arg := rest[open+1 : open+end]

		raw, ok := values[arg]
		if !ok || isNull(raw) {
			return "", &ArgumentError{Command: c.Name, Arg: arg, Reason: "is required"}
		}
		s, err := scalar(raw)
		if err != nil || s == "" {
			return "", &ArgumentError{Command: c.Name, Arg: arg, Reason: "must be a non-empty string"}
		}

		b.WriteString(rest[:open])
		b.WriteString(url.PathEscape(s))
		rest = rest[open+end+1:]
	}
}

func (c Command) body(values map[string]json.RawMessage) (json.RawMessage, error) {
	if c.BodyArg != "" {
		raw, ok := values[c.BodyArg]
		if !ok {
			return nil, &ArgumentError{Command: c.Name, Arg: c.BodyArg, Reason: "is required"}
		}
		return raw, nil
	}

	if len(c.Fields) == 0 {
		return nil, nil
	}

	obj := make(map[string]json.RawMessage, len(c.Fields))
	for _, f := range c.Fields {
		key := f.Key
		if key == "" {
			key = f.Arg
		}
		raw, ok := values[f.Arg]
		switch {
		case ok && !isNull(raw):
			obj[key] = raw
		case f.Default != nil:
			obj[key] = f.Default
		default:
			return nil, &ArgumentError{Command: c.Name, Arg: f.Arg, Reason: "is required"}
		}
	}
	return json.Marshal(obj)
}

// scalar renders a JSON string, number, or bool for use in a URL.
func scalar(raw json.RawMessage) (string, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", err
	}
	switch v := v.(type) {
	case string:
		return v, nil
	case float64, bool:
		return strings.TrimSpace(string(raw)), nil
	default:
		return "", errors.New("must be a string, number, or boolean")
	}
}

func isNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}
