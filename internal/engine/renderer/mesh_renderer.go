package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/progmesh/internal/engine/debug"
	"github.com/Faultbox/progmesh/internal/engine/shader"
	"github.com/Faultbox/progmesh/internal/logger"
	"github.com/Faultbox/progmesh/pkg/mesh"
)

const meshVertexShader = `
#version 410 core

layout (location = 0) in vec3 aPosition;
layout (location = 1) in vec3 aNormal;

uniform mat4 uMVP;
uniform mat3 uNormalMatrix;

out vec3 vNormal;

void main() {
	vNormal = uNormalMatrix * aNormal;
	gl_Position = uMVP * vec4(aPosition, 1.0);
}
`

const meshFragmentShader = `
#version 410 core

in vec3 vNormal;

uniform vec3 uLightDir;
uniform vec3 uColor;
uniform float uAmbient;

out vec4 FragColor;

void main() {
	vec3 n = normalize(vNormal);
	// Light both faces so open meshes look right from inside.
	float diffuse = abs(dot(n, -uLightDir));
	FragColor = vec4(uColor * (uAmbient + (1.0 - uAmbient) * diffuse), 1.0);
}
`

// meshVertex is the interleaved VBO layout.
type meshVertex struct {
	Position [3]float32
	Normal   [3]float32
}

// MeshRenderer draws one mesh whose vertex buffer is fixed and whose index
// buffer is replaced on every UpdateIndices call.
type MeshRenderer struct {
	program  *shader.Program
	lines    *shader.Program
	vao      uint32
	vbo      uint32
	ebo      uint32
	boxVAO   uint32
	boxVBO   uint32
	indices  int32
	capacity int // EBO size in indices

	Wireframe  bool
	ShowBounds bool
	Color      mgl32.Vec3
	LightDir   mgl32.Vec3

	log *zap.Logger
}

const lineVertexShader = `
#version 410 core

layout (location = 0) in vec3 aPosition;

uniform mat4 uMVP;

void main() {
	gl_Position = uMVP * vec4(aPosition, 1.0);
}
`

const lineFragmentShader = `
#version 410 core

uniform vec3 uColor;

out vec4 FragColor;

void main() {
	FragColor = vec4(uColor, 1.0);
}
`

// NewMeshRenderer uploads the vertices of m. Dead vertices are uploaded too
// so that mesh vertex ids stay valid as buffer indices.
func NewMeshRenderer(m *mesh.Mesh) (*MeshRenderer, error) {
	mr := &MeshRenderer{
		Color:    mgl32.Vec3{0.75, 0.78, 0.85},
		LightDir: mgl32.Vec3{-0.4, -1, -0.6}.Normalize(),
		log:      logger.Named("renderer"),
	}

	var err error
	mr.program, err = shader.New(meshVertexShader, meshFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("mesh shader: %w", err)
	}
	mr.lines, err = shader.New(lineVertexShader, lineFragmentShader)
	if err != nil {
		mr.program.Delete()
		return nil, fmt.Errorf("line shader: %w", err)
	}

	mr.upload(m)
	mr.UpdateIndices(m.RenderIndices())
	return mr, nil
}

func (mr *MeshRenderer) upload(m *mesh.Mesh) {
	normals := m.VertexNormals()
	vertices := make([]meshVertex, m.VertexCount())
	for id := range vertices {
		p := m.Vertex(id).Position
		n := normals[id]
		vertices[id] = meshVertex{
			Position: [3]float32{p.X, p.Y, p.Z},
			Normal:   [3]float32{n.X, n.Y, n.Z},
		}
	}

	gl.GenVertexArrays(1, &mr.vao)
	gl.BindVertexArray(mr.vao)

	gl.GenBuffers(1, &mr.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, mr.vbo)
	if len(vertices) > 0 {
		gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*int(unsafe.Sizeof(meshVertex{})), unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)
	}

	stride := int32(unsafe.Sizeof(meshVertex{}))
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, unsafe.Offsetof(meshVertex{}.Normal))
	gl.EnableVertexAttribArray(1)

	// The element buffer binding is VAO state.
	gl.GenBuffers(1, &mr.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, mr.ebo)

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	if lo, hi, ok := m.Bounds(); ok {
		box := debug.BBoxWireframe(lo, hi, 0)
		gl.GenVertexArrays(1, &mr.boxVAO)
		gl.BindVertexArray(mr.boxVAO)
		gl.GenBuffers(1, &mr.boxVBO)
		gl.BindBuffer(gl.ARRAY_BUFFER, mr.boxVBO)
		gl.BufferData(gl.ARRAY_BUFFER, len(box)*4, unsafe.Pointer(&box[0]), gl.STATIC_DRAW)
		gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 3*4, 0)
		gl.EnableVertexAttribArray(0)
		gl.BindVertexArray(0)
		gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	}

	mr.log.Debug("mesh uploaded",
		zap.Int("vertices", len(vertices)),
		zap.Uint32("vao", mr.vao),
	)
}

// UpdateIndices replaces the drawn triangle list. The buffer only grows, so
// stepping back and forth through detail levels reuses its storage.
func (mr *MeshRenderer) UpdateIndices(indices []uint32) {
	gl.BindVertexArray(mr.vao)
	if len(indices) > mr.capacity {
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.DYNAMIC_DRAW)
		mr.capacity = len(indices)
	} else if len(indices) > 0 {
		gl.BufferSubData(gl.ELEMENT_ARRAY_BUFFER, 0, len(indices)*4, gl.Ptr(indices))
	}
	gl.BindVertexArray(0)
	mr.indices = int32(len(indices))
}

// TriangleCount returns the number of triangles currently drawn.
func (mr *MeshRenderer) TriangleCount() int {
	return int(mr.indices / 3)
}

// Draw renders the mesh with the given model, view and projection matrices.
func (mr *MeshRenderer) Draw(model, view, projection mgl32.Mat4) {
	mvp := projection.Mul4(view).Mul4(model)

	if mr.indices > 0 {
		mr.program.Use()
		mr.program.SetMat4("uMVP", mvp)
		mr.program.SetMat3("uNormalMatrix", model.Mat3().Inv().Transpose())
		mr.program.SetVec3("uLightDir", mr.LightDir)
		mr.program.SetVec3("uColor", mr.Color)
		mr.program.SetFloat("uAmbient", 0.25)

		gl.BindVertexArray(mr.vao)
		if mr.Wireframe {
			gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
		}
		gl.DrawElementsWithOffset(gl.TRIANGLES, mr.indices, gl.UNSIGNED_INT, 0)
		if mr.Wireframe {
			gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
		}
	}

	if mr.ShowBounds && mr.boxVAO != 0 {
		mr.lines.Use()
		mr.lines.SetMat4("uMVP", mvp)
		mr.lines.SetVec3("uColor", mgl32.Vec3{1, 0.8, 0.2})
		gl.BindVertexArray(mr.boxVAO)
		gl.DrawArrays(gl.LINES, 0, debug.BBoxWireframeVertexCount)
	}

	gl.BindVertexArray(0)
}

// Close releases GPU resources.
func (mr *MeshRenderer) Close() {
	buffers := []uint32{mr.vbo, mr.ebo, mr.boxVBO}
	gl.DeleteBuffers(int32(len(buffers)), &buffers[0])
	arrays := []uint32{mr.vao, mr.boxVAO}
	gl.DeleteVertexArrays(int32(len(arrays)), &arrays[0])
	mr.program.Delete()
	mr.lines.Delete()
}
