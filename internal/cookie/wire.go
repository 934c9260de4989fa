package cookie

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"net/url"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/KirkDiggler/initiative-tracker/internal/errors"
	"github.com/KirkDiggler/initiative-tracker/internal/tracker"
)

//go:embed schema.json
var schemaJSON string

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return jsonschema.CompileString("cookie.schema.json", schemaJSON)
})

// Marshal renders the cookie value: the JSON record array, escaped so it is
// safe inside a Cookie header.
func Marshal(ck Cookie) (string, error) {
	records := ck.Classes
	if records == nil {
		records = []Record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return "", errors.WrapWithCode(err, errors.CodeInternal, "failed to marshal cookie")
	}
	return url.QueryEscape(string(data)), nil
}

// Unmarshal reads a cookie value written by Marshal, checking its shape first
func Unmarshal(value string) (Cookie, error) {
	raw, err := url.QueryUnescape(value)
	if err != nil {
		return Cookie{}, errors.WrapWithCode(err, errors.CodeInvalidArgument, "cookie is not url encoded")
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return Cookie{}, errors.WrapWithCode(err, errors.CodeInvalidArgument, "cookie is not valid json")
	}

	schema, err := compileSchema()
	if err != nil {
		return Cookie{}, errors.WrapWithCode(err, errors.CodeInternal, "failed to compile cookie schema")
	}
	if err := schema.Validate(doc); err != nil {
		return Cookie{}, errors.WrapWithCode(err, errors.CodeInvalidArgument, "cookie does not match schema")
	}

	var records []Record
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return Cookie{}, errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to decode cookie records")
	}
	return Cookie{Classes: records}, nil
}

// Parse turns a stored cookie value into a state. The returned state is
// always usable: on any failure it is the empty state and the error says why.
func (c *Codec) Parse(value string) (tracker.State, error) {
	if value == "" {
		return tracker.NewState(), nil
	}
	ck, err := Unmarshal(value)
	if err != nil {
		return tracker.NewState(), err
	}
	return c.Decode(ck)
}

// Format encodes and marshals s in one step
func Format(s tracker.State) (string, error) {
	ck, err := Encode(s)
	if err != nil {
		return "", err
	}
	return Marshal(ck)
}
