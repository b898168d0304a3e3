// Package bsp decodes Quake III (IBSP version 46) map files.
//
// A file is a fixed header, a directory of 17 offset/length pairs and the
// lumps those pairs address. Lumps are decoded field by field at explicit
// little-endian offsets, in a fixed order, and every cross-lump index is
// checked as soon as both collections exist. A load either returns a fully
// validated *Map or a single *LoadError.
//
// References:
//   - https://www.mralligator.com/q3/
//   - https://github.com/id-Software/Quake-III-Arena/blob/master/code/qcommon/qfiles.h
package bsp

import (
	"fmt"
	"io"
	"slices"
)

// decodeOrder is the order lumps are decoded in. Every lump a step's mandatory
// checks read comes earlier in the list, except LeafFaces and LeafBrushes for
// Leafs, whose checks run once those follow.
var decodeOrder = []Lump{
	LumpEntities,
	LumpTextures,
	LumpPlanes,
	LumpNodes,
	LumpLeafs,
	LumpLeafFaces,
	LumpLeafBrushes,
	LumpVertices,
	LumpMeshVerts,
	LumpFaces,
	LumpBrushes,
	LumpBrushSides,
	LumpLightmaps,
	LumpModels,
	LumpEffects,
	LumpLightVolumes,
	LumpVisData,
}

// requires lists the lumps that must be decoded together with a lump so its
// range checks can run.
var requires = map[Lump][]Lump{
	LumpFaces:   {LumpVertices, LumpMeshVerts},
	LumpLeafs:   {LumpLeafFaces, LumpLeafBrushes},
	LumpBrushes: {LumpBrushSides},
}

func withDependencies(sel map[Lump]bool) map[Lump]bool {
	out := make(map[Lump]bool, len(sel))
	var add func(l Lump)
	add = func(l Lump) {
		if out[l] {
			return
		}
		out[l] = true
		for _, dep := range requires[l] {
			add(dep)
		}
	}
	for l := range sel {
		add(l)
	}
	return out
}

// Map is a decoded map file. It is immutable once returned by a loader.
type Map struct {
	header  Header
	dir     Directory
	decoded [NumLumps]bool

	leafRecord int

	entities     string
	textures     []Texture
	planes       []Plane
	nodes        []Node
	leafs        []Leaf
	leafFaces    []int32
	leafBrushes  []int32
	models       []Model
	brushes      []Brush
	brushSides   []BrushSide
	vertices     []Vertex
	meshVerts    []int32
	effects      []Effect
	faces        []Face
	lightmaps    []Lightmap
	lightVolumes []LightVolume
	visData      VisData
}

// Load loads every lump of the map file at path with default options.
//
// The defaults read 64 byte texture records and 40 byte leaf records. Maps
// compiled by q3map use 72 and 48 byte records; load them with LoadAll and
// WithTextureRecordSize(TextureShaderSize), WithLeafRecordSize(LeafFullSize).
// A 72 byte texture lump holding a multiple of 8 records also divides into 64
// byte records, so the wrong size can decode without error and yield garbled names.
func Load(path string) (*Map, error) {
	return LoadAll(path)
}

// LoadAll opens path, decodes the header, the directory and the selected lumps,
// and closes the file on every exit path.
func LoadAll(path string, opts ...Option) (*Map, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return nil, fmt.Errorf("bsp options: %w", err)
	}

	src, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	return load(src, &o)
}

// LoadReader loads a map from a random-access reader of known size.
func LoadReader(r io.ReaderAt, size int64, opts ...Option) (*Map, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return nil, fmt.Errorf("bsp options: %w", err)
	}
	return load(NewSource(r, size), &o)
}

// LoadBytes loads a map held in memory.
func LoadBytes(data []byte, opts ...Option) (*Map, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return nil, fmt.Errorf("bsp options: %w", err)
	}
	return load(NewBytesSource(data), &o)
}

func load(src *Source, o *options) (*Map, error) {
	m := &Map{leafRecord: o.leafRecord}

	var err error
	if m.header, err = readHeader(src); err != nil {
		return nil, err
	}
	if m.dir, err = readDirectory(src); err != nil {
		return nil, err
	}

	ran := make([]bool, len(crossChecks))
	for _, lump := range decodeOrder {
		if !o.wants(lump) {
			continue
		}

		e := m.dir[lump]
		data, err := src.ReadAt(int64(e.Offset), int64(e.Length))
		if err != nil {
			return nil, withLump(err, lump)
		}
		if err := m.decode(lump, data, o); err != nil {
			return nil, err
		}
		m.decoded[lump] = true

		for i, c := range crossChecks {
			if ran[i] || !c.ready(m) {
				continue
			}
			ran[i] = true
			if err := c.run(m); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func (m *Map) decode(lump Lump, data []byte, o *options) error {
	var err error
	switch lump {
	case LumpEntities:
		m.entities = decodeEntities(data)
	case LumpTextures:
		m.textures, err = decodeTextures(data, o.textureRecord, o.name)
	case LumpPlanes:
		m.planes, err = decodePlanes(data)
	case LumpNodes:
		m.nodes, err = decodeNodes(data)
	case LumpLeafs:
		m.leafs, err = decodeLeafs(data, o.leafRecord)
	case LumpLeafFaces:
		m.leafFaces, err = decodeIndices(lump, data)
	case LumpLeafBrushes:
		m.leafBrushes, err = decodeIndices(lump, data)
	case LumpModels:
		m.models, err = decodeModels(data)
	case LumpBrushes:
		m.brushes, err = decodeBrushes(data)
	case LumpBrushSides:
		m.brushSides, err = decodeBrushSides(data)
	case LumpVertices:
		m.vertices, err = decodeVertices(data)
	case LumpMeshVerts:
		m.meshVerts, err = decodeIndices(lump, data)
	case LumpEffects:
		m.effects, err = decodeEffects(data, o.name)
	case LumpFaces:
		m.faces, err = decodeFaces(data)
	case LumpLightmaps:
		m.lightmaps, err = decodeLightmaps(data, o.lightmapFormat)
	case LumpLightVolumes:
		m.lightVolumes, err = decodeLightVolumes(data)
	case LumpVisData:
		m.visData, err = decodeVisData(data)
	default:
		err = fmt.Errorf("no decoder for %v", lump)
	}
	return err
}

// Header returns the file header.
func (m *Map) Header() Header { return m.header }

// Directory returns the lump directory.
func (m *Map) Directory() Directory { return m.dir }

// Decoded reports whether a lump was decoded by this load.
func (m *Map) Decoded(l Lump) bool {
	return l >= 0 && int(l) < NumLumps && m.decoded[l]
}

// Entities returns the raw entity text.
func (m *Map) Entities() string { return m.entities }

// Slice accessors return copies; the document itself is never mutated.

func (m *Map) Textures() []Texture         { return slices.Clone(m.textures) }
func (m *Map) Planes() []Plane             { return slices.Clone(m.planes) }
func (m *Map) Nodes() []Node               { return slices.Clone(m.nodes) }
func (m *Map) Leafs() []Leaf               { return slices.Clone(m.leafs) }
func (m *Map) LeafFaces() []int32          { return slices.Clone(m.leafFaces) }
func (m *Map) LeafBrushes() []int32        { return slices.Clone(m.leafBrushes) }
func (m *Map) Models() []Model             { return slices.Clone(m.models) }
func (m *Map) Brushes() []Brush            { return slices.Clone(m.brushes) }
func (m *Map) BrushSides() []BrushSide     { return slices.Clone(m.brushSides) }
func (m *Map) Vertices() []Vertex          { return slices.Clone(m.vertices) }
func (m *Map) MeshVerts() []int32          { return slices.Clone(m.meshVerts) }
func (m *Map) Effects() []Effect           { return slices.Clone(m.effects) }
func (m *Map) Faces() []Face               { return slices.Clone(m.faces) }
func (m *Map) LightVolumes() []LightVolume { return slices.Clone(m.lightVolumes) }

// Lightmaps returns copies of every lightmap block.
func (m *Map) Lightmaps() []Lightmap {
	out := make([]Lightmap, len(m.lightmaps))
	for i, l := range m.lightmaps {
		out[i] = Lightmap{Format: l.Format, Data: slices.Clone(l.Data)}
	}
	return out
}

// VisData returns a copy of the visibility data.
func (m *Map) VisData() VisData {
	v := m.visData
	v.Vecs = slices.Clone(v.Vecs)
	return v
}

// NumFaces returns the number of faces.
func (m *Map) NumFaces() int { return len(m.faces) }

// Face returns face i.
func (m *Map) Face(i int) Face { return m.faces[i] }

// NumVertices returns the number of vertices.
func (m *Map) NumVertices() int { return len(m.vertices) }

// Vertex returns vertex i.
func (m *Map) Vertex(i int) Vertex { return m.vertices[i] }

// FaceVertices returns a copy of the vertex range of face i.
func (m *Map) FaceVertices(i int) []Vertex {
	f := m.faces[i]
	return slices.Clone(m.vertices[f.FirstVertex : f.FirstVertex+f.NumVertices])
}

// FaceMeshVerts returns a copy of the mesh vertex offsets of face i.
// Offsets are relative to the face's first vertex.
func (m *Map) FaceMeshVerts(i int) []int32 {
	f := m.faces[i]
	return slices.Clone(m.meshVerts[f.FirstMeshVertex : f.FirstMeshVertex+f.NumMeshVertices])
}
