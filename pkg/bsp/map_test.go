package bsp

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestLoadAll_ValidFile(t *testing.T) {
	path := newValidMap().write(t)

	m, err := LoadAll(path)
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}

	h := m.Header()
	if got := string(h.Magic[:]); got != "IBSP" {
		t.Errorf("expected magic IBSP, got %q", got)
	}
	if h.Version != 46 {
		t.Errorf("expected version 46, got %d", h.Version)
	}

	if !strings.HasPrefix(m.Entities(), "{\n\"classname\" \"worldspawn\"") {
		t.Errorf("unexpected entity text: %q", m.Entities())
	}
	if strings.ContainsRune(m.Entities(), 0) {
		t.Error("entity text should stop at the NUL terminator")
	}

	counts := []struct {
		name string
		got  int
		want int
	}{
		{"textures", len(m.Textures()), 2},
		{"planes", len(m.Planes()), 2},
		{"nodes", len(m.Nodes()), 1},
		{"leafs", len(m.Leafs()), 2},
		{"leaf faces", len(m.LeafFaces()), 1},
		{"leaf brushes", len(m.LeafBrushes()), 1},
		{"models", len(m.Models()), 1},
		{"brushes", len(m.Brushes()), 1},
		{"brush sides", len(m.BrushSides()), 2},
		{"vertices", len(m.Vertices()), 3},
		{"mesh verts", len(m.MeshVerts()), 3},
		{"effects", len(m.Effects()), 0},
		{"faces", len(m.Faces()), 1},
		{"lightmaps", len(m.Lightmaps()), 1},
		{"light volumes", len(m.LightVolumes()), 1},
	}
	for _, c := range counts {
		if c.got != c.want {
			t.Errorf("%s: expected %d, got %d", c.name, c.want, c.got)
		}
	}

	if name := m.Textures()[0].Name; name != "textures/base_wall/concrete" {
		t.Errorf("texture 0: expected textures/base_wall/concrete, got %q", name)
	}

	face := m.Face(0)
	if face.Type != FacePolygon {
		t.Errorf("expected polygon face, got %v", face.Type)
	}
	if face.Effect != -1 {
		t.Errorf("expected no effect, got %d", face.Effect)
	}
	if face.LightmapSize != [2]int32{16, 16} {
		t.Errorf("expected lightmap size 16x16, got %v", face.LightmapSize)
	}
	if face.LightmapVecs[1] != (mgl32.Vec3{0, 1, 0}) {
		t.Errorf("expected lightmap t vector (0,1,0), got %v", face.LightmapVecs[1])
	}
	if face.Normal != (mgl32.Vec3{0, 0, 1}) {
		t.Errorf("expected normal (0,0,1), got %v", face.Normal)
	}

	v := m.Vertex(1)
	if v.Position != (mgl32.Vec3{64, 0, 0}) {
		t.Errorf("vertex 1: expected position (64,0,0), got %v", v.Position)
	}
	if v.TexCoord != (mgl32.Vec2{1, 0}) {
		t.Errorf("vertex 1: expected texcoord (1,0), got %v", v.TexCoord)
	}
	if v.Color != [4]uint8{255, 128, 64, 255} {
		t.Errorf("vertex 1: unexpected color %v", v.Color)
	}

	node := m.Nodes()[0]
	if leaf, ok := node.ChildLeaf(1); !ok || leaf != 1 {
		t.Errorf("node back child: expected leaf 1, got %d (leaf=%v)", leaf, ok)
	}

	lv := m.LightVolumes()[0]
	if lv.Ambient != [3]uint8{1, 2, 3} || lv.Directional != [3]uint8{4, 5, 6} || lv.Dir != [2]uint8{7, 8} {
		t.Errorf("unexpected light volume %+v", lv)
	}

	vis := m.VisData()
	if vis.NumVecs != 2 || vis.VecSize != 1 || !bytes.Equal(vis.Vecs, []byte{3, 3}) {
		t.Errorf("unexpected vis data %+v", vis)
	}

	for _, l := range AllLumps() {
		if !m.Decoded(l) {
			t.Errorf("%v should be decoded by default", l)
		}
	}
}

func TestLoad_TwoPlanes(t *testing.T) {
	b := newTestMap()
	b.lumps[LumpPlanes] = join(planeRecord(0, 0, 1, 0), planeRecord(1, 0, 0, 5))

	m, err := Load(b.write(t))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := []Plane{
		{Normal: mgl32.Vec3{0, 0, 1}, Distance: 0},
		{Normal: mgl32.Vec3{1, 0, 0}, Distance: 5},
	}
	if got := m.Planes(); !reflect.DeepEqual(got, want) {
		t.Errorf("planes: expected %v, got %v", want, got)
	}
}

func TestLoad_TextureName(t *testing.T) {
	tests := []struct {
		name string
		slot []byte
		want string
	}{
		{"nul terminated", nameSlot("wall", 64), "wall"},
		{"garbage after nul", append([]byte("wall\x00junk"), make([]byte, 55)...), "wall"},
		{"no nul", bytes.Repeat([]byte{'a'}, 64), strings.Repeat("a", 64)},
		{"empty", make([]byte, 64), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestMap()
			b.lumps[LumpTextures] = tt.slot

			m, err := LoadBytes(b.bytes())
			if err != nil {
				t.Fatalf("LoadBytes failed: %v", err)
			}
			textures := m.Textures()
			if len(textures) != 1 {
				t.Fatalf("expected 1 texture, got %d", len(textures))
			}
			if textures[0].Name != tt.want {
				t.Errorf("expected name %q, got %q", tt.want, textures[0].Name)
			}
		})
	}
}

func TestLoad_ShaderTextureRecords(t *testing.T) {
	b := newTestMap()
	b.lumps[LumpTextures] = join(
		nameSlot("textures/sfx/fog", 64), le(int32(0x80), int32(0x40)),
		nameSlot("noshader", 64), le(int32(0), int32(1)),
	)

	m, err := LoadBytes(b.bytes(), WithTextureRecordSize(TextureShaderSize))
	if err != nil {
		t.Fatalf("LoadBytes failed: %v", err)
	}

	want := []Texture{
		{Name: "textures/sfx/fog", Flags: 0x80, Contents: 0x40},
		{Name: "noshader", Flags: 0, Contents: 1},
	}
	if got := m.Textures(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %+v, got %+v", want, got)
	}

	// 144 bytes are not a whole number of 64 byte records.
	if _, err := LoadBytes(b.bytes()); !errors.Is(err, ErrMisalignedLump) {
		t.Errorf("expected misaligned lump with 64 byte records, got %v", err)
	}
}

func TestLoad_NameDecoder(t *testing.T) {
	b := newTestMap()
	b.lumps[LumpTextures] = nameSlot("wall", 64)

	upper := func(p []byte) string { return strings.ToUpper(string(p)) }
	m, err := LoadBytes(b.bytes(), WithNameDecoder(upper))
	if err != nil {
		t.Fatalf("LoadBytes failed: %v", err)
	}
	if got := m.Textures()[0].Name; got != "WALL" {
		t.Errorf("expected WALL, got %q", got)
	}
}

func TestLoad_RecordCountsMatchLengths(t *testing.T) {
	b := newValidMap()
	m, err := LoadBytes(b.bytes())
	if err != nil {
		t.Fatalf("LoadBytes failed: %v", err)
	}

	dir := m.Directory()
	tests := []struct {
		lump  Lump
		count int
		size  int
	}{
		{LumpPlanes, len(m.Planes()), planeSize},
		{LumpNodes, len(m.Nodes()), nodeSize},
		{LumpLeafs, len(m.Leafs()), LeafCompactSize},
		{LumpLeafFaces, len(m.LeafFaces()), indexSize},
		{LumpLeafBrushes, len(m.LeafBrushes()), indexSize},
		{LumpVertices, len(m.Vertices()), vertexSize},
		{LumpMeshVerts, len(m.MeshVerts()), indexSize},
		{LumpFaces, len(m.Faces()), faceSize},
		{LumpBrushes, len(m.Brushes()), brushSize},
		{LumpBrushSides, len(m.BrushSides()), brushSideSize},
		{LumpModels, len(m.Models()), modelSize},
		{LumpLightVolumes, len(m.LightVolumes()), lightVolumeSize},
		{LumpLightmaps, len(m.Lightmaps()), DefaultLightmapFormat.BlockSize()},
	}
	for _, tt := range tests {
		if got := uint32(tt.count * tt.size); got != dir[tt.lump].Length {
			t.Errorf("%v: %d records of %d bytes = %d, directory says %d", tt.lump, tt.count, tt.size, got, dir[tt.lump].Length)
		}
	}
}

func TestLoad_BadMagic(t *testing.T) {
	b := newValidMap()
	b.magic = "XBSP"

	m, err := LoadAll(b.write(t))
	if m != nil {
		t.Error("expected no document on bad magic")
	}
	if !errors.Is(err, ErrFormat) {
		t.Fatalf("expected format error, got %v", err)
	}
	if !errors.Is(err, ErrBadMagic) {
		t.Errorf("expected bad magic, got %v", err)
	}
	var le *LoadError
	if !errors.As(err, &le) || le.Lump != LumpNone {
		t.Errorf("expected header-level LoadError, got %#v", err)
	}
}

func TestLoad_BadVersion(t *testing.T) {
	b := newValidMap()
	b.version = 45

	m, err := LoadAll(b.write(t))
	if m != nil {
		t.Error("expected no document on bad version")
	}
	if !errors.Is(err, ErrFormat) || !errors.Is(err, ErrBadVersion) {
		t.Fatalf("expected bad version format error, got %v", err)
	}
	if errors.Is(err, ErrBounds) || errors.Is(err, ErrIO) {
		t.Errorf("error must match exactly one kind: %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := LoadAll(filepath.Join(t.TempDir(), "nope.bsp"))
	if !errors.Is(err, ErrIO) {
		t.Fatalf("expected io error, got %v", err)
	}
}

func TestLoad_Directory(t *testing.T) {
	_, err := LoadAll(t.TempDir())
	if !errors.Is(err, ErrIO) {
		t.Fatalf("expected io error for a directory, got %v", err)
	}
}

func TestLoad_TruncatedFile(t *testing.T) {
	data := newValidMap().bytes()
	// Cut into the VisData lump, the last one in the file.
	truncated := data[:len(data)-1]

	_, err := LoadBytes(truncated)
	if !errors.Is(err, ErrBounds) {
		t.Fatalf("expected bounds error, got %v", err)
	}
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("expected *LoadError, got %T", err)
	}
	if le.Lump != LumpVisData {
		t.Errorf("expected VisData lump, got %v", le.Lump)
	}
	if !errors.Is(err, ErrOutOfFile) {
		t.Errorf("expected out-of-file detail, got %v", err)
	}
}

func TestLoad_ShorterThanHeader(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"partial magic", []byte("IBS")},
		{"header only", le([4]byte{'I', 'B', 'S', 'P'}, int32(46))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadBytes(tt.data)
			if !errors.Is(err, ErrBounds) {
				t.Errorf("expected bounds error, got %v", err)
			}
		})
	}
}

func TestLoad_MisalignedLumps(t *testing.T) {
	lumps := []Lump{
		LumpTextures, LumpPlanes, LumpNodes, LumpLeafs, LumpLeafFaces, LumpLeafBrushes,
		LumpModels, LumpBrushes, LumpBrushSides, LumpVertices, LumpMeshVerts, LumpEffects,
		LumpFaces, LumpLightmaps, LumpLightVolumes, LumpVisData,
	}

	for _, lump := range lumps {
		t.Run(lump.String(), func(t *testing.T) {
			b := newValidMap()
			b.lumps[lump] = append(b.lumps[lump], 0)

			m, err := LoadBytes(b.bytes())
			if m != nil {
				t.Error("expected no document")
			}
			if !errors.Is(err, ErrFormat) || !errors.Is(err, ErrMisalignedLump) {
				t.Fatalf("expected misaligned lump format error, got %v", err)
			}
			var le *LoadError
			if !errors.As(err, &le) || le.Lump != lump {
				t.Errorf("expected error in %v, got %v", lump, err)
			}
		})
	}
}

func TestLoad_CrossReferences(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(b *testMap)
		opts   []Option
		lump   Lump
	}{
		{
			name: "face vertices past end",
			mutate: func(b *testMap) {
				f := validFace()
				f.numVertices = 4
				b.lumps[LumpFaces] = faceRecord(f)
			},
			lump: LumpFaces,
		},
		{
			name: "face negative first vertex",
			mutate: func(b *testMap) {
				f := validFace()
				f.firstVertex = -1
				b.lumps[LumpFaces] = faceRecord(f)
			},
			lump: LumpFaces,
		},
		{
			name: "face mesh vertices past end",
			mutate: func(b *testMap) {
				f := validFace()
				f.firstMesh = 1
				b.lumps[LumpFaces] = faceRecord(f)
			},
			lump: LumpFaces,
		},
		{
			name: "mesh vertex offset outside face",
			mutate: func(b *testMap) {
				b.lumps[LumpMeshVerts] = le(int32(0), int32(1), int32(3))
			},
			lump: LumpFaces,
		},
		{
			name: "face texture",
			mutate: func(b *testMap) {
				f := validFace()
				f.texture = 2
				b.lumps[LumpFaces] = faceRecord(f)
			},
			lump: LumpFaces,
		},
		{
			name: "face lightmap",
			mutate: func(b *testMap) {
				f := validFace()
				f.lightmap = 1
				b.lumps[LumpFaces] = faceRecord(f)
			},
			lump: LumpFaces,
		},
		{
			name: "face effect",
			mutate: func(b *testMap) {
				f := validFace()
				f.effect = 0
				b.lumps[LumpFaces] = faceRecord(f)
			},
			lump: LumpFaces,
		},
		{
			name: "leaf faces past end",
			mutate: func(b *testMap) {
				b.lumps[LumpLeafs] = join(leafRecord(0, 2), leafRecord(0, 0))
			},
			lump: LumpLeafs,
		},
		{
			name: "leaf brushes past end",
			mutate: func(b *testMap) {
				b.lumps[LumpLeafs] = join(fullLeafRecord(0, 1, 1, 1), fullLeafRecord(0, 0, 0, 0))
			},
			opts: []Option{WithLeafRecordSize(LeafFullSize)},
			lump: LumpLeafs,
		},
		{
			name: "brush sides past end",
			mutate: func(b *testMap) {
				b.lumps[LumpBrushes] = le(int32(1), int32(2), int32(1))
			},
			lump: LumpBrushes,
		},
		{
			name: "node plane",
			mutate: func(b *testMap) {
				b.lumps[LumpNodes] = nodeRecord(2, -1, -2)
			},
			lump: LumpNodes,
		},
		{
			name: "node child leaf",
			mutate: func(b *testMap) {
				b.lumps[LumpNodes] = nodeRecord(0, -1, -3)
			},
			lump: LumpNodes,
		},
		{
			name: "node child node",
			mutate: func(b *testMap) {
				b.lumps[LumpNodes] = nodeRecord(0, 1, -2)
			},
			lump: LumpNodes,
		},
		{
			name: "leaf face index",
			mutate: func(b *testMap) {
				b.lumps[LumpLeafFaces] = le(int32(1))
			},
			lump: LumpLeafFaces,
		},
		{
			name: "leaf brush index",
			mutate: func(b *testMap) {
				b.lumps[LumpLeafBrushes] = le(int32(-1))
			},
			lump: LumpLeafBrushes,
		},
		{
			name: "brush side plane",
			mutate: func(b *testMap) {
				b.lumps[LumpBrushSides] = le(int32(0), int32(1), int32(5), int32(1))
			},
			lump: LumpBrushSides,
		},
		{
			name: "model faces",
			mutate: func(b *testMap) {
				b.lumps[LumpModels] = le([3]float32{}, [3]float32{}, int32(0), int32(2), int32(0), int32(1))
			},
			lump: LumpModels,
		},
		{
			name: "effect brush",
			mutate: func(b *testMap) {
				b.lumps[LumpEffects] = join(nameSlot("fog", 64), le(int32(3), int32(-1)))
			},
			lump: LumpEffects,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newValidMap()
			tt.mutate(b)

			m, err := LoadBytes(b.bytes(), tt.opts...)
			if m != nil {
				t.Error("expected no document")
			}
			if !errors.Is(err, ErrBounds) || !errors.Is(err, ErrIndexRange) {
				t.Fatalf("expected index range bounds error, got %v", err)
			}
			var le *LoadError
			if !errors.As(err, &le) {
				t.Fatalf("expected *LoadError, got %T", err)
			}
			if le.Lump != tt.lump {
				t.Errorf("expected error in %v, got %v", tt.lump, le.Lump)
			}
		})
	}
}

func TestLoad_FaceCheckRunsBeforeLaterLumps(t *testing.T) {
	b := newValidMap()
	f := validFace()
	f.numVertices = 10
	b.lumps[LumpFaces] = faceRecord(f)
	// Lightmaps are decoded after Faces; their error must never be reached.
	b.lumps[LumpLightmaps] = []byte{1, 2, 3}

	_, err := LoadBytes(b.bytes())
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("expected *LoadError, got %v", err)
	}
	if le.Kind != KindBounds || le.Lump != LumpFaces || le.Index != 0 {
		t.Errorf("expected bounds error at face 0, got %v", err)
	}
}

func TestLoad_Deterministic(t *testing.T) {
	path := newValidMap().write(t)

	a, err := LoadAll(path)
	if err != nil {
		t.Fatalf("first load failed: %v", err)
	}
	b, err := LoadAll(path)
	if err != nil {
		t.Fatalf("second load failed: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("two loads of the same file differ")
	}
}

func TestLoad_ReaderAndBytesAgree(t *testing.T) {
	data := newValidMap().bytes()

	fromBytes, err := LoadBytes(data)
	if err != nil {
		t.Fatalf("LoadBytes failed: %v", err)
	}
	fromReader, err := LoadReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("LoadReader failed: %v", err)
	}
	if !reflect.DeepEqual(fromBytes, fromReader) {
		t.Error("LoadBytes and LoadReader disagree")
	}

	// The document must not alias the caller's buffer.
	for i := range data {
		data[i] = 0
	}
	if fromBytes.Textures()[0].Name != "textures/base_wall/concrete" || fromBytes.Lightmaps()[0].Data[0] != 10 {
		t.Error("document changed after the input buffer was cleared")
	}
}

func TestLoad_WithLumps(t *testing.T) {
	b := newValidMap()
	// Planes are broken but not requested, so they are never read.
	b.lumps[LumpPlanes] = []byte{1}

	m, err := LoadBytes(b.bytes(), WithLumps(LumpFaces))
	if err != nil {
		t.Fatalf("LoadBytes failed: %v", err)
	}

	for _, l := range []Lump{LumpFaces, LumpVertices, LumpMeshVerts} {
		if !m.Decoded(l) {
			t.Errorf("%v should be decoded", l)
		}
	}
	for _, l := range []Lump{LumpPlanes, LumpTextures, LumpLightmaps, LumpEntities} {
		if m.Decoded(l) {
			t.Errorf("%v should not be decoded", l)
		}
	}
	if len(m.Faces()) != 1 || len(m.Vertices()) != 3 {
		t.Errorf("unexpected faces/vertices: %d/%d", len(m.Faces()), len(m.Vertices()))
	}
	if m.Decoded(LumpNone) || m.Decoded(Lump(NumLumps)) {
		t.Error("Decoded must be false for invalid lumps")
	}
}

func TestLoad_WithLumpsPullsDependencies(t *testing.T) {
	b := newValidMap()
	b.lumps[LumpLeafFaces] = le(int32(0), int32(0), int32(0))
	b.lumps[LumpLeafs] = join(leafRecord(0, 4), leafRecord(0, 0))

	_, err := LoadBytes(b.bytes(), WithLumps(LumpLeafs))
	var le *LoadError
	if !errors.As(err, &le) || le.Lump != LumpLeafs || le.Kind != KindBounds {
		t.Errorf("expected leaf range error, got %v", err)
	}
}

func TestLoad_ShaderTexturesNeedRecordSize(t *testing.T) {
	// Eight 72 byte records also divide into nine 64 byte records.
	var records [][]byte
	for i := 0; i < 8; i++ {
		records = append(records, nameSlot(fmt.Sprintf("textures/base/t%d", i), nameSize), le(int32(i), int32(1)))
	}
	b := newTestMap()
	b.lumps[LumpTextures] = join(records...)

	m, err := LoadBytes(b.bytes())
	if err != nil {
		t.Fatalf("LoadBytes failed: %v", err)
	}
	if got := len(m.Textures()); got != 9 {
		t.Errorf("expected the default layout to read 9 records, got %d", got)
	}

	m, err = LoadBytes(b.bytes(), WithTextureRecordSize(TextureShaderSize))
	if err != nil {
		t.Fatalf("LoadBytes failed: %v", err)
	}
	textures := m.Textures()
	if len(textures) != 8 || textures[7].Name != "textures/base/t7" || textures[7].Flags != 7 {
		t.Errorf("unexpected shader textures %+v", textures)
	}
}

func TestLoad_LeafLayouts(t *testing.T) {
	t.Run("compact by default", func(t *testing.T) {
		b := newTestMap()
		b.lumps[LumpLeafs] = le(int32(0), int32(0), [3]int32{-8, -8, -8}, [3]int32{8, 8, 8}, int32(0), int32(0))

		m, err := LoadBytes(b.bytes())
		if err != nil {
			t.Fatalf("LoadBytes failed: %v", err)
		}
		leafs := m.Leafs()
		if len(leafs) != 1 || leafs[0].Maxs != [3]int32{8, 8, 8} {
			t.Errorf("unexpected leafs %+v", leafs)
		}
	})

	t.Run("full", func(t *testing.T) {
		b := newValidMap()
		b.lumps[LumpLeafs] = join(fullLeafRecord(0, 1, 0, 1), fullLeafRecord(0, 0, 0, 0))

		m, err := LoadBytes(b.bytes(), WithLeafRecordSize(LeafFullSize))
		if err != nil {
			t.Fatalf("LoadBytes failed: %v", err)
		}
		if l := m.Leafs()[0]; l.NumLeafFaces != 1 || l.NumLeafBrushes != 1 {
			t.Errorf("unexpected leaf %+v", l)
		}

		_, err = LoadBytes(b.bytes())
		var le *LoadError
		if !errors.As(err, &le) || le.Lump != LumpLeafs || !errors.Is(err, ErrMisalignedLump) {
			t.Errorf("expected misaligned Leafs lump with compact records, got %v", err)
		}
	})

	t.Run("compact ignores leaf brushes", func(t *testing.T) {
		b := newValidMap()
		b.lumps[LumpLeafBrushes] = nil

		if _, err := LoadBytes(b.bytes()); err != nil {
			t.Fatalf("LoadBytes failed: %v", err)
		}
	})
}

func TestLoad_InvalidOptions(t *testing.T) {
	data := newValidMap().bytes()
	tests := []struct {
		name string
		opt  Option
	}{
		{"texture record", WithTextureRecordSize(70)},
		{"leaf record", WithLeafRecordSize(44)},
		{"lightmap format", WithLightmapFormat(LightmapFormat{Width: 128, Height: 0, Channels: 3})},
		{"lump", WithLumps(Lump(99))},
		{"name decoder", WithNameDecoder(nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadBytes(data, tt.opt); err == nil {
				t.Error("expected option error")
			}
		})
	}
}

func TestLoad_LightmapFormat(t *testing.T) {
	b := newTestMap()
	b.lumps[LumpLightmaps] = bytes.Repeat([]byte{7}, 2*4*4*1)

	m, err := LoadBytes(b.bytes(), WithLightmapFormat(LightmapFormat{Width: 4, Height: 4, Channels: 1}))
	if err != nil {
		t.Fatalf("LoadBytes failed: %v", err)
	}
	if got := len(m.Lightmaps()); got != 2 {
		t.Errorf("expected 2 lightmaps, got %d", got)
	}
}

func TestMap_AccessorsReturnCopies(t *testing.T) {
	m, err := LoadBytes(newValidMap().bytes())
	if err != nil {
		t.Fatalf("LoadBytes failed: %v", err)
	}

	faces := m.Faces()
	faces[0].NumVertices = 99
	verts := m.Vertices()
	verts[0].Position = mgl32.Vec3{9, 9, 9}
	lms := m.Lightmaps()
	lms[0].Data[0] = 0
	vis := m.VisData()
	vis.Vecs[0] = 0

	if m.Face(0).NumVertices != 3 {
		t.Error("face modified through accessor")
	}
	if m.Vertex(0).Position != (mgl32.Vec3{}) {
		t.Error("vertex modified through accessor")
	}
	if m.Lightmaps()[0].Data[0] != 10 {
		t.Error("lightmap modified through accessor")
	}
	if m.VisData().Vecs[0] != 3 {
		t.Error("vis data modified through accessor")
	}
}

func TestMap_FaceRanges(t *testing.T) {
	m, err := LoadBytes(newValidMap().bytes())
	if err != nil {
		t.Fatalf("LoadBytes failed: %v", err)
	}

	if m.NumFaces() != 1 || m.NumVertices() != 3 {
		t.Fatalf("unexpected counts %d/%d", m.NumFaces(), m.NumVertices())
	}
	verts := m.FaceVertices(0)
	if len(verts) != 3 || verts[2].Position != (mgl32.Vec3{0, 64, 0}) {
		t.Errorf("unexpected face vertices %v", verts)
	}
	if got := m.FaceMeshVerts(0); !reflect.DeepEqual(got, []int32{0, 1, 2}) {
		t.Errorf("unexpected mesh verts %v", got)
	}
}
