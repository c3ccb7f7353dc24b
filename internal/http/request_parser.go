// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing request bodies and query
// strings into ledger inputs.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"fintrack/internal/search"
	"fintrack/internal/services"
	"fintrack/internal/validate"
)

// MaxBodyBytes caps request bodies; imports are the largest payloads.
const MaxBodyBytes = 4 << 20

var errBodyTooLarge = errors.New("request body too large")

// RequestBodyParser handles JSON and form-encoded bodies.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads the body once, up to MaxBodyBytes.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{contentType: r.Header.Get("Content-Type")}
	p.body, p.err = readBody(r)
	return p
}

func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes+1))
	if err != nil {
		return nil, err
	}
	if len(body) > MaxBodyBytes {
		return nil, errBodyTooLarge
	}
	return body, nil
}

// Parse decodes the body as a JSON object or as form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}
	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if p.body[0] == '{' || strings.HasPrefix(p.contentType, "application/json") {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = fmt.Errorf("invalid JSON body: %w", err)
			return p.err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Lookup returns the sanitized value for key and whether it was present.
// Values are not trimmed; surrounding whitespace is a validation concern.
func (p *RequestBodyParser) Lookup(key string) (string, bool) {
	if p.jsonData != nil {
		val, ok := p.jsonData[key]
		if !ok || val == nil {
			return "", false
		}
		return sanitizeInput(stringValue(val)), true
	}
	if p.formData != nil {
		if _, ok := p.formData[key]; !ok {
			return "", false
		}
		return sanitizeInput(p.formData.Get(key)), true
	}
	return "", false
}

func (p *RequestBodyParser) Get(key string) string {
	v, _ := p.Lookup(key)
	return v
}

func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func (p *RequestBodyParser) Raw() []byte {
	return p.body
}

// Transaction reads the four entry fields of a create request.
func (p *RequestBodyParser) Transaction() validate.Raw {
	return validate.Raw{
		Description: p.Get("description"),
		Amount:      p.Get("amount"),
		Date:        p.Get("date"),
		Category:    p.Get("category"),
	}
}

// Patch reads only the fields the client sent.
func (p *RequestBodyParser) Patch() validate.RawPatch {
	var patch validate.RawPatch
	if v, ok := p.Lookup("description"); ok {
		patch.Description = &v
	}
	if v, ok := p.Lookup("amount"); ok {
		patch.Amount = &v
	}
	if v, ok := p.Lookup("date"); ok {
		patch.Date = &v
	}
	if v, ok := p.Lookup("category"); ok {
		patch.Category = &v
	}
	return patch
}

// ParseListQuery builds a ledger query from the list endpoint's parameters.
func ParseListQuery(q url.Values) (services.Query, error) {
	filters, err := search.ParseFilters(
		q.Get("description"),
		q.Get("from"),
		q.Get("to"),
		q.Get("amount"),
		q.Get("category"),
	)
	if err != nil {
		return services.Query{}, err
	}
	caseSensitive, _ := strconv.ParseBool(q.Get("case"))
	return services.Query{
		Search:        q.Get("q"),
		CaseSensitive: caseSensitive,
		Filters:       filters,
		Tag:           strings.TrimSpace(q.Get("tag")),
	}, nil
}

// stringValue renders a decoded JSON scalar as text. Numbers keep their
// shortest form so 12.5 stays "12.5".
func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// sanitizeInput drops control characters other than tab and newlines.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
