package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/rulegraph/pkg/ruleset"
)

// Document is the JSON form of a ruleset.
type Document struct {
	Rule        int     `json:"rule"`
	States      int     `json:"states"`
	Perms       int     `json:"perms"`
	UpStates    []int   `json:"up_states"`
	Adjacency   [][]int `json:"adjacency"`
	Transitions [][]int `json:"transitions"`
}

// NewDocument captures the tables of rs.
func NewDocument(rs *ruleset.Ruleset) Document {
	return Document{
		Rule:        rs.Rule(),
		States:      rs.States(),
		Perms:       rs.Perms(),
		UpStates:    rs.UpStates(),
		Adjacency:   rs.AdjacencyMatrix(),
		Transitions: rs.Transitions(),
	}
}

// WriteJSON encodes a ruleset as an indented JSON document and writes it to w.
// The output can be re-imported with [ReadJSON].
func WriteJSON(rs *ruleset.Ruleset, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewDocument(rs)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a ruleset to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(rs *ruleset.Ruleset, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(rs, f)
}
