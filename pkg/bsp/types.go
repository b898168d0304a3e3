package bsp

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// On-disk record sizes. Decoders read exactly these many bytes per record.
const (
	planeSize       = 3*4 + 4
	nodeSize        = 4 + 2*4 + 3*4 + 3*4
	indexSize       = 4
	modelSize       = 3*4 + 3*4 + 4 + 4 + 4 + 4
	brushSize       = 4 + 4 + 4
	brushSideSize   = 4 + 4
	vertexSize      = 3*4 + 2*4 + 2*4 + 3*4 + 4
	effectSize      = nameSize + 4 + 4
	faceSize        = 8*4 + 2*4 + 2*4 + 3*4 + 2*3*4 + 3*4 + 2*4
	lightVolumeSize = 3 + 3 + 2
	visHeaderSize   = 4 + 4

	nameSize = 64

	// TextureNameSize is the compact texture record: a bare 64 byte name slot.
	TextureNameSize = nameSize
	// TextureShaderSize is the full Quake III shader record: name, surface flags, content flags.
	TextureShaderSize = nameSize + 4 + 4

	// LeafCompactSize is a leaf without brush references: cluster, area, bounds, leaf-face range.
	LeafCompactSize = 4 + 4 + 3*4 + 3*4 + 4 + 4
	// LeafFullSize is the Quake III leaf, which adds the leaf-brush range.
	LeafFullSize = LeafCompactSize + 4 + 4
)

// Plane is a splitting or brush plane.
type Plane struct {
	Normal   mgl32.Vec3
	Distance float32
}

// DistanceTo returns the signed distance of p from the plane.
func (p Plane) DistanceTo(v mgl32.Vec3) float32 {
	return p.Normal.Dot(v) - p.Distance
}

// Node is an interior BSP tree node.
// A negative child is a leaf reference: leaf index = -(child + 1).
type Node struct {
	Plane    int32
	Children [2]int32 // Front, back
	Mins     [3]int32
	Maxs     [3]int32
}

// ChildLeaf reports whether child i refers to a leaf and, if so, which one.
func (n Node) ChildLeaf(i int) (int, bool) {
	c := n.Children[i]
	if c >= 0 {
		return 0, false
	}
	return int(-(c + 1)), true
}

// Leaf is a BSP tree leaf.
type Leaf struct {
	Cluster        int32 // Visdata cluster, negative = outside the map
	Area           int32
	Mins           [3]int32
	Maxs           [3]int32
	FirstLeafFace  int32
	NumLeafFaces   int32
	FirstLeafBrush int32 // Zero in LeafCompactSize records
	NumLeafBrushes int32
}

// Model is a rigid piece of world geometry. Model 0 is the static world.
type Model struct {
	Mins       mgl32.Vec3
	Maxs       mgl32.Vec3
	FirstFace  int32
	NumFaces   int32
	FirstBrush int32
	NumBrushes int32
}

// Brush is a convex volume made of brush sides.
type Brush struct {
	FirstSide int32
	NumSides  int32
	Texture   int32
}

// BrushSide is one bounding plane of a brush.
type BrushSide struct {
	Plane   int32
	Texture int32
}

// Vertex is a face vertex.
type Vertex struct {
	Position      mgl32.Vec3
	TexCoord      mgl32.Vec2
	LightmapCoord mgl32.Vec2
	Normal        mgl32.Vec3
	Color         [4]uint8 // RGBA
}

// Effect is a fog volume description.
type Effect struct {
	Name    string
	Brush   int32
	Unknown int32 // Visible side of the brush, -1 for none
}

// FaceType selects how a face's vertices form geometry.
type FaceType int32

const (
	FacePolygon   FaceType = 1
	FacePatch     FaceType = 2
	FaceMesh      FaceType = 3
	FaceBillboard FaceType = 4
)

// String returns the face type name.
func (t FaceType) String() string {
	switch t {
	case FacePolygon:
		return "Polygon"
	case FacePatch:
		return "Patch"
	case FaceMesh:
		return "Mesh"
	case FaceBillboard:
		return "Billboard"
	default:
		return fmt.Sprintf("FaceType(%d)", int32(t))
	}
}

// Face is a renderable surface.
type Face struct {
	Texture         int32
	Effect          int32 // -1 = no effect
	Type            FaceType
	FirstVertex     int32
	NumVertices     int32
	FirstMeshVertex int32
	NumMeshVertices int32
	Lightmap        int32 // Negative = no lightmap
	LightmapStart   [2]int32
	LightmapSize    [2]int32
	LightmapOrigin  mgl32.Vec3
	LightmapVecs    [2]mgl32.Vec3
	Normal          mgl32.Vec3
	PatchSize       [2]int32
}

// Texture is a surface description. Flags and Contents are only set for 72 byte records.
type Texture struct {
	Name     string
	Flags    int32
	Contents int32
}

// LightVolume is one cell of the light grid.
type LightVolume struct {
	Ambient     [3]uint8
	Directional [3]uint8
	Dir         [2]uint8 // Phi, theta
}

// VisData is the cluster visibility bit matrix, kept as raw bytes.
type VisData struct {
	NumVecs int32
	VecSize int32
	Vecs    []byte
}
