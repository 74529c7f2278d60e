package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"

	"github.com/matzehuels/rulegraph/pkg/errors"
	"github.com/matzehuels/rulegraph/pkg/ruleset"
)

// ReadJSON decodes a ruleset document from r. The document is not checked
// against the rule it names; call [Document.Ruleset] for that.
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode ruleset document")
	}
	return &doc, nil
}

// ImportJSON reads a JSON file at path and returns the rebuilt, verified
// ruleset. Documents with more than maxStates states are rejected before
// anything is built; maxStates <= 0 disables the limit.
func ImportJSON(path string, maxStates int) (*ruleset.Ruleset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	doc, err := ReadJSON(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc.Ruleset(maxStates)
}

// Ruleset rebuilds the ruleset named by the document and checks that every
// stored table matches the rebuilt one. Tables left out of the document are
// not compared. The state count is checked against maxStates first, since
// construction cost grows with states^6.
func (d *Document) Ruleset(maxStates int) (*ruleset.Ruleset, error) {
	if err := errors.ValidateStates(d.States, maxStates); err != nil {
		return nil, err
	}
	rs, err := ruleset.New(d.Rule, d.States)
	if err != nil {
		return nil, err
	}

	if d.Perms != 0 && d.Perms != rs.Perms() {
		return nil, mismatch("perms", d)
	}
	if d.UpStates != nil && !reflect.DeepEqual(d.UpStates, rs.UpStates()) {
		return nil, mismatch("up_states", d)
	}
	if d.Adjacency != nil && !reflect.DeepEqual(d.Adjacency, rs.AdjacencyMatrix()) {
		return nil, mismatch("adjacency", d)
	}
	if d.Transitions != nil && !reflect.DeepEqual(d.Transitions, rs.Transitions()) {
		return nil, mismatch("transitions", d)
	}
	return rs, nil
}

func mismatch(field string, d *Document) error {
	return errors.New(errors.ErrCodeInvalidFormat, "%s does not match rule %d for %d states", field, d.Rule, d.States)
}
