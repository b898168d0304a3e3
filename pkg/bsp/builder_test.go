package bsp

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// testMap assembles a map file from raw lump payloads.
type testMap struct {
	magic   string
	version int32
	lumps   [NumLumps][]byte
}

func newTestMap() *testMap {
	return &testMap{magic: Magic, version: Version}
}

// bytes lays out header, directory and lumps back to back in directory order.
func (b *testMap) bytes() []byte {
	buf := new(bytes.Buffer)
	buf.WriteString(b.magic)
	binary.Write(buf, binary.LittleEndian, b.version)

	offset := uint32(headerSize + directorySize)
	for _, data := range b.lumps {
		binary.Write(buf, binary.LittleEndian, offset)
		binary.Write(buf, binary.LittleEndian, uint32(len(data)))
		offset += uint32(len(data))
	}
	for _, data := range b.lumps {
		buf.Write(data)
	}
	return buf.Bytes()
}

// write stores the file in a temp dir and returns its path.
func (b *testMap) write(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.bsp")
	if err := os.WriteFile(path, b.bytes(), 0644); err != nil {
		t.Fatalf("failed to write test map: %v", err)
	}
	return path
}

// le encodes values with binary.Write, little-endian, packed.
func le(values ...any) []byte {
	buf := new(bytes.Buffer)
	for _, v := range values {
		if err := binary.Write(buf, binary.LittleEndian, v); err != nil {
			panic(err)
		}
	}
	return buf.Bytes()
}

func nameSlot(name string, size int) []byte {
	b := make([]byte, size)
	copy(b, name)
	return b
}

func planeRecord(nx, ny, nz, dist float32) []byte {
	return le(nx, ny, nz, dist)
}

func nodeRecord(plane, front, back int32) []byte {
	return le(plane, front, back, [3]int32{-64, -64, -64}, [3]int32{64, 64, 64})
}

// leafRecord builds a LeafCompactSize record.
func leafRecord(firstFace, numFaces int32) []byte {
	return le(int32(0), int32(0), [3]int32{-64, -64, -64}, [3]int32{64, 64, 64}, firstFace, numFaces)
}

// fullLeafRecord builds a LeafFullSize record.
func fullLeafRecord(firstFace, numFaces, firstBrush, numBrushes int32) []byte {
	return join(leafRecord(firstFace, numFaces), le(firstBrush, numBrushes))
}

func vertexRecord(x, y, z float32) []byte {
	return le([3]float32{x, y, z}, [2]float32{x / 64, y / 64}, [2]float32{0.5, 0.5},
		[3]float32{0, 0, 1}, [4]uint8{255, 128, 64, 255})
}

type faceRecordArgs struct {
	texture, effect, typ                         int32
	firstVertex, numVertices, firstMesh, numMesh int32
	lightmap                                     int32
}

func faceRecord(a faceRecordArgs) []byte {
	return le(a.texture, a.effect, a.typ, a.firstVertex, a.numVertices, a.firstMesh, a.numMesh,
		a.lightmap, [2]int32{0, 0}, [2]int32{16, 16},
		[3]float32{0, 0, 0}, [2][3]float32{{1, 0, 0}, {0, 1, 0}}, [3]float32{0, 0, 1},
		[2]int32{0, 0})
}

func validFace() faceRecordArgs {
	return faceRecordArgs{
		texture: 0, effect: -1, typ: int32(FacePolygon),
		firstVertex: 0, numVertices: 3, firstMesh: 0, numMesh: 3,
		lightmap: 0,
	}
}

func join(parts ...[]byte) []byte {
	return bytes.Join(parts, nil)
}

const testEntities = "{\n\"classname\" \"worldspawn\"\n\"message\" \"Test {map}\"\n}\n{\n\"classname\" \"info_player_deathmatch\"\n\"origin\" \"0 0 24\"\n}\n\x00"

// newValidMap returns a small map in which every lump is populated and every
// cross reference resolves.
func newValidMap() *testMap {
	b := newTestMap()
	b.lumps[LumpEntities] = []byte(testEntities)
	b.lumps[LumpTextures] = join(nameSlot("textures/base_wall/concrete", 64), nameSlot("textures/common/caulk", 64))
	b.lumps[LumpPlanes] = join(planeRecord(0, 0, 1, 0), planeRecord(1, 0, 0, 5))
	b.lumps[LumpNodes] = nodeRecord(0, -1, -2)
	b.lumps[LumpLeafs] = join(leafRecord(0, 1), leafRecord(0, 0))
	b.lumps[LumpLeafFaces] = le(int32(0))
	b.lumps[LumpLeafBrushes] = le(int32(0))
	b.lumps[LumpModels] = le([3]float32{-64, -64, -64}, [3]float32{64, 64, 64}, int32(0), int32(1), int32(0), int32(1))
	b.lumps[LumpBrushes] = le(int32(0), int32(2), int32(1))
	b.lumps[LumpBrushSides] = le(int32(0), int32(1), int32(1), int32(1))
	b.lumps[LumpVertices] = join(vertexRecord(0, 0, 0), vertexRecord(64, 0, 0), vertexRecord(0, 64, 0))
	b.lumps[LumpMeshVerts] = le(int32(0), int32(1), int32(2))
	b.lumps[LumpEffects] = nil
	b.lumps[LumpFaces] = faceRecord(validFace())
	b.lumps[LumpLightmaps] = bytes.Repeat([]byte{10, 20, 30}, 128*128)
	b.lumps[LumpLightVolumes] = le([3]uint8{1, 2, 3}, [3]uint8{4, 5, 6}, [2]uint8{7, 8})
	b.lumps[LumpVisData] = le(int32(2), int32(1), []byte{0x3, 0x3})
	return b
}
