package lod

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/progmesh/pkg/mesh"
)

// ErrInvalidHistory is returned when a history does not fit a mesh.
var ErrInvalidHistory = errors.New("invalid collapse history")

// Entry records that vertex From was merged into vertex To.
type Entry struct {
	From mesh.VertexID `yaml:"from"`
	To   mesh.VertexID `yaml:"to"`
}

// History is the ordered list of collapses from full to minimal detail.
type History []Entry

// Validate checks that h can be replayed on a fresh copy of m: every entry
// names two distinct in-range vertices, no vertex is removed twice and no
// entry targets an already removed vertex.
func (h History) Validate(m *mesh.Mesh) error {
	dead := make([]bool, m.VertexCount())
	for i, e := range h {
		if e.From < 0 || e.From >= len(dead) || e.To < 0 || e.To >= len(dead) {
			return fmt.Errorf("%w: entry %d (%d->%d) out of range", ErrInvalidHistory, i, e.From, e.To)
		}
		if e.From == e.To {
			return fmt.Errorf("%w: entry %d collapses %d into itself", ErrInvalidHistory, i, e.From)
		}
		if dead[e.From] || dead[e.To] {
			return fmt.Errorf("%w: entry %d (%d->%d) uses a removed vertex", ErrInvalidHistory, i, e.From, e.To)
		}
		dead[e.From] = true
	}
	return nil
}

// historyFile is the YAML document written by WriteHistory.
type historyFile struct {
	Vertices  int     `yaml:"vertices"`
	Collapses History `yaml:"collapses"`
}

// WriteHistory encodes h as YAML, tagged with the vertex count of m.
func WriteHistory(w io.Writer, m *mesh.Mesh, h History) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(historyFile{Vertices: m.VertexCount(), Collapses: h}); err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}
	return enc.Close()
}

// ReadHistory decodes a YAML history and validates it against m.
func ReadHistory(r io.Reader, m *mesh.Mesh) (History, error) {
	var f historyFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHistory, err)
	}
	if f.Vertices != 0 && f.Vertices != m.VertexCount() {
		return nil, fmt.Errorf("%w: recorded for %d vertices, mesh has %d", ErrInvalidHistory, f.Vertices, m.VertexCount())
	}
	if err := f.Collapses.Validate(m); err != nil {
		return nil, err
	}
	return f.Collapses, nil
}
