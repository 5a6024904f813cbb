// Package formats reads and writes the mesh file formats used by the
// simplifier tools.
package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Faultbox/progmesh/pkg/math"
	"github.com/Faultbox/progmesh/pkg/mesh"
)

// OBJ format errors.
var (
	ErrInvalidOBJVertex   = errors.New("invalid OBJ vertex")
	ErrInvalidOBJFace     = errors.New("invalid OBJ face")
	ErrOBJIndexOutOfRange = errors.New("OBJ index out of range")
)

// OBJ holds the geometry of a Wavefront OBJ file. Each position becomes one
// mesh vertex; normals and texture coordinates referenced by face corners
// are attached to the position they accompany.
type OBJ struct {
	Positions []math.Vec3
	TexCoords []math.Vec2
	Normals   []math.Vec3

	// Vertices is parallel to Positions.
	Vertices  []mesh.VertexData
	Triangles [][3]int

	// SkippedFaces counts faces with fewer than three corners.
	SkippedFaces int
}

// objCorner is one "v/vt/vn" reference resolved to 0-based indices, -1 when absent.
type objCorner struct {
	v, vt, vn int
}

// ParseOBJ parses an OBJ file from raw bytes. Polygons are fan-triangulated.
// Statements other than v, vt, vn and f are ignored.
func ParseOBJ(data []byte) (*OBJ, error) {
	obj := &OBJ{}
	var faces [][]objCorner

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "v":
			p, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w: %v", line, ErrInvalidOBJVertex, err)
			}
			obj.Positions = append(obj.Positions, math.Vec3{X: p[0], Y: p[1], Z: p[2]})
		case "vt":
			uv, err := parseFloats(fields[1:], 2)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w: %v", line, ErrInvalidOBJVertex, err)
			}
			obj.TexCoords = append(obj.TexCoords, math.Vec2{X: uv[0], Y: uv[1]})
		case "vn":
			n, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w: %v", line, ErrInvalidOBJVertex, err)
			}
			obj.Normals = append(obj.Normals, math.Vec3{X: n[0], Y: n[1], Z: n[2]})
		case "f":
			face := make([]objCorner, 0, len(fields)-1)
			for _, ref := range fields[1:] {
				c, err := obj.parseCorner(ref)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", line, err)
				}
				face = append(face, c)
			}
			if len(face) < 3 {
				obj.SkippedFaces++
				continue
			}
			faces = append(faces, face)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading OBJ: %w", err)
	}

	obj.Vertices = make([]mesh.VertexData, len(obj.Positions))
	for i, p := range obj.Positions {
		obj.Vertices[i].Position = p
	}
	for _, face := range faces {
		for _, c := range face {
			if c.vn >= 0 {
				obj.Vertices[c.v].Normal = obj.Normals[c.vn]
			}
			if c.vt >= 0 {
				obj.Vertices[c.v].TexCoord = obj.TexCoords[c.vt]
			}
		}
		for i := 1; i+1 < len(face); i++ {
			obj.Triangles = append(obj.Triangles, [3]int{face[0].v, face[i].v, face[i+1].v})
		}
	}

	return obj, nil
}

// parseCorner resolves a face reference against the elements read so far.
func (o *OBJ) parseCorner(ref string) (objCorner, error) {
	parts := strings.Split(ref, "/")
	if len(parts) > 3 || parts[0] == "" {
		return objCorner{}, fmt.Errorf("%w: corner %q", ErrInvalidOBJFace, ref)
	}

	c := objCorner{v: -1, vt: -1, vn: -1}
	var err error
	if c.v, err = resolveIndex(parts[0], len(o.Positions)); err != nil {
		return objCorner{}, fmt.Errorf("corner %q: %w", ref, err)
	}
	if len(parts) > 1 && parts[1] != "" {
		if c.vt, err = resolveIndex(parts[1], len(o.TexCoords)); err != nil {
			return objCorner{}, fmt.Errorf("corner %q: %w", ref, err)
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if c.vn, err = resolveIndex(parts[2], len(o.Normals)); err != nil {
			return objCorner{}, fmt.Errorf("corner %q: %w", ref, err)
		}
	}
	return c, nil
}

// resolveIndex converts a 1-based or negative (relative) OBJ index to a
// 0-based one.
func resolveIndex(s string, count int) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidOBJFace, s)
	}
	idx := n - 1
	if n < 0 {
		idx = count + n
	}
	if n == 0 || idx < 0 || idx >= count {
		return 0, fmt.Errorf("%w: %d (have %d)", ErrOBJIndexOutOfRange, n, count)
	}
	return idx, nil
}

func parseFloats(fields []string, want int) ([]float32, error) {
	if len(fields) < want {
		return nil, fmt.Errorf("expected %d components, got %d", want, len(fields))
	}
	out := make([]float32, want)
	for i := range want {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(f)
	}
	return out, nil
}

// Mesh builds a geometry store from the parsed file.
func (o *OBJ) Mesh() (*mesh.Mesh, error) {
	return mesh.New(o.Vertices, o.Triangles)
}

// ParseOBJFile parses an OBJ file from disk.
func ParseOBJFile(path string) (*OBJ, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading OBJ file: %w", err)
	}
	return ParseOBJ(data)
}

// LoadOBJ reads an OBJ file and builds a mesh from it.
func LoadOBJ(path string) (*mesh.Mesh, error) {
	obj, err := ParseOBJFile(path)
	if err != nil {
		return nil, err
	}
	m, err := obj.Mesh()
	if err != nil {
		return nil, fmt.Errorf("building mesh from %s: %w", path, err)
	}
	return m, nil
}

// WriteOBJ writes the alive vertices and visible triangles of m. Vertices
// are renumbered densely in id order. Normals and texture coordinates are
// written only when at least one alive vertex carries them.
func WriteOBJ(w io.Writer, m *mesh.Mesh) error {
	bw := bufio.NewWriter(w)

	remap := make([]int, m.VertexCount())
	var hasNormals, hasUVs bool
	next := 1
	for id := range remap {
		v := m.Vertex(id)
		if !v.Alive {
			continue
		}
		remap[id] = next
		next++
		hasNormals = hasNormals || !v.Normal.IsZero()
		hasUVs = hasUVs || !v.TexCoord.IsZero()
	}

	fmt.Fprintf(bw, "# %d vertices, %d triangles\n", next-1, m.ActiveTriangleCount())
	for id := range remap {
		if v := m.Vertex(id); v.Alive {
			fmt.Fprintf(bw, "v %s %s %s\n", ftoa(v.Position.X), ftoa(v.Position.Y), ftoa(v.Position.Z))
		}
	}
	if hasUVs {
		for id := range remap {
			if v := m.Vertex(id); v.Alive {
				fmt.Fprintf(bw, "vt %s %s\n", ftoa(v.TexCoord.X), ftoa(v.TexCoord.Y))
			}
		}
	}
	if hasNormals {
		for id := range remap {
			if v := m.Vertex(id); v.Alive {
				fmt.Fprintf(bw, "vn %s %s %s\n", ftoa(v.Normal.X), ftoa(v.Normal.Y), ftoa(v.Normal.Z))
			}
		}
	}

	indices := m.RenderIndices()
	for i := 0; i+2 < len(indices); i += 3 {
		bw.WriteString("f")
		for _, idx := range indices[i : i+3] {
			n := remap[idx]
			switch {
			case hasUVs && hasNormals:
				fmt.Fprintf(bw, " %d/%d/%d", n, n, n)
			case hasUVs:
				fmt.Fprintf(bw, " %d/%d", n, n)
			case hasNormals:
				fmt.Fprintf(bw, " %d//%d", n, n)
			default:
				fmt.Fprintf(bw, " %d", n)
			}
		}
		bw.WriteString("\n")
	}

	return bw.Flush()
}

// SaveOBJ writes m to path.
func SaveOBJ(path string, m *mesh.Mesh) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating OBJ file: %w", err)
	}
	if err := WriteOBJ(f, m); err != nil {
		f.Close()
		return fmt.Errorf("writing OBJ file: %w", err)
	}
	return f.Close()
}

func ftoa(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}
