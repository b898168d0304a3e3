package bsp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// fields reads little-endian values from one record at explicit, advancing offsets.
type fields struct {
	b   []byte
	off int
}

func (f *fields) i32() int32 {
	v := int32(binary.LittleEndian.Uint32(f.b[f.off:]))
	f.off += 4
	return v
}

func (f *fields) f32() float32 {
	v := math.Float32frombits(binary.LittleEndian.Uint32(f.b[f.off:]))
	f.off += 4
	return v
}

func (f *fields) vec2() mgl32.Vec2 {
	return mgl32.Vec2{f.f32(), f.f32()}
}

func (f *fields) vec3() mgl32.Vec3 {
	return mgl32.Vec3{f.f32(), f.f32(), f.f32()}
}

func (f *fields) ivec3() [3]int32 {
	return [3]int32{f.i32(), f.i32(), f.i32()}
}

func (f *fields) raw(n int) []byte {
	v := f.b[f.off : f.off+n]
	f.off += n
	return v
}

// decodeRecords splits a fixed-record lump and decodes every record.
func decodeRecords[T any](lump Lump, data []byte, size int, decode func(*fields) T) ([]T, error) {
	if len(data)%size != 0 {
		return nil, formatError(lump, fmt.Errorf("%w: %d bytes is not a multiple of %d", ErrMisalignedLump, len(data), size))
	}

	out := make([]T, len(data)/size)
	for i := range out {
		out[i] = decode(&fields{b: data[i*size : (i+1)*size]})
	}
	return out, nil
}

// cString returns the bytes up to the first NUL, or all of them.
func cString(b []byte) []byte {
	if idx := bytes.IndexByte(b, 0); idx >= 0 {
		return b[:idx]
	}
	return b
}

func decodeEntities(data []byte) string {
	return string(cString(data))
}

func decodeTextures(data []byte, recordSize int, name NameDecoder) ([]Texture, error) {
	return decodeRecords(LumpTextures, data, recordSize, func(f *fields) Texture {
		t := Texture{Name: name(cString(f.raw(nameSize)))}
		if recordSize == TextureShaderSize {
			t.Flags = f.i32()
			t.Contents = f.i32()
		}
		return t
	})
}

func decodePlanes(data []byte) ([]Plane, error) {
	return decodeRecords(LumpPlanes, data, planeSize, func(f *fields) Plane {
		return Plane{
			Normal:   f.vec3(),
			Distance: f.f32(),
		}
	})
}

func decodeNodes(data []byte) ([]Node, error) {
	return decodeRecords(LumpNodes, data, nodeSize, func(f *fields) Node {
		return Node{
			Plane:    f.i32(),
			Children: [2]int32{f.i32(), f.i32()},
			Mins:     f.ivec3(),
			Maxs:     f.ivec3(),
		}
	})
}

func decodeLeafs(data []byte, recordSize int) ([]Leaf, error) {
	return decodeRecords(LumpLeafs, data, recordSize, func(f *fields) Leaf {
		l := Leaf{
			Cluster:       f.i32(),
			Area:          f.i32(),
			Mins:          f.ivec3(),
			Maxs:          f.ivec3(),
			FirstLeafFace: f.i32(),
			NumLeafFaces:  f.i32(),
		}
		if recordSize == LeafFullSize {
			l.FirstLeafBrush = f.i32()
			l.NumLeafBrushes = f.i32()
		}
		return l
	})
}

// decodeIndices handles LeafFaces, LeafBrushes and MeshVerts.
func decodeIndices(lump Lump, data []byte) ([]int32, error) {
	return decodeRecords(lump, data, indexSize, func(f *fields) int32 {
		return f.i32()
	})
}

func decodeModels(data []byte) ([]Model, error) {
	return decodeRecords(LumpModels, data, modelSize, func(f *fields) Model {
		return Model{
			Mins:       f.vec3(),
			Maxs:       f.vec3(),
			FirstFace:  f.i32(),
			NumFaces:   f.i32(),
			FirstBrush: f.i32(),
			NumBrushes: f.i32(),
		}
	})
}

func decodeBrushes(data []byte) ([]Brush, error) {
	return decodeRecords(LumpBrushes, data, brushSize, func(f *fields) Brush {
		return Brush{
			FirstSide: f.i32(),
			NumSides:  f.i32(),
			Texture:   f.i32(),
		}
	})
}

func decodeBrushSides(data []byte) ([]BrushSide, error) {
	return decodeRecords(LumpBrushSides, data, brushSideSize, func(f *fields) BrushSide {
		return BrushSide{
			Plane:   f.i32(),
			Texture: f.i32(),
		}
	})
}

func decodeVertices(data []byte) ([]Vertex, error) {
	return decodeRecords(LumpVertices, data, vertexSize, func(f *fields) Vertex {
		v := Vertex{
			Position:      f.vec3(),
			TexCoord:      f.vec2(),
			LightmapCoord: f.vec2(),
			Normal:        f.vec3(),
		}
		copy(v.Color[:], f.raw(4))
		return v
	})
}

func decodeEffects(data []byte, name NameDecoder) ([]Effect, error) {
	return decodeRecords(LumpEffects, data, effectSize, func(f *fields) Effect {
		return Effect{
			Name:    name(cString(f.raw(nameSize))),
			Brush:   f.i32(),
			Unknown: f.i32(),
		}
	})
}

func decodeFaces(data []byte) ([]Face, error) {
	return decodeRecords(LumpFaces, data, faceSize, func(f *fields) Face {
		return Face{
			Texture:         f.i32(),
			Effect:          f.i32(),
			Type:            FaceType(f.i32()),
			FirstVertex:     f.i32(),
			NumVertices:     f.i32(),
			FirstMeshVertex: f.i32(),
			NumMeshVertices: f.i32(),
			Lightmap:        f.i32(),
			LightmapStart:   [2]int32{f.i32(), f.i32()},
			LightmapSize:    [2]int32{f.i32(), f.i32()},
			LightmapOrigin:  f.vec3(),
			LightmapVecs:    [2]mgl32.Vec3{f.vec3(), f.vec3()},
			Normal:          f.vec3(),
			PatchSize:       [2]int32{f.i32(), f.i32()},
		}
	})
}

func decodeLightmaps(data []byte, format LightmapFormat) ([]Lightmap, error) {
	return decodeRecords(LumpLightmaps, data, format.BlockSize(), func(f *fields) Lightmap {
		block := make([]byte, format.BlockSize())
		copy(block, f.raw(len(block)))
		return Lightmap{Format: format, Data: block}
	})
}

func decodeLightVolumes(data []byte) ([]LightVolume, error) {
	return decodeRecords(LumpLightVolumes, data, lightVolumeSize, func(f *fields) LightVolume {
		var lv LightVolume
		copy(lv.Ambient[:], f.raw(3))
		copy(lv.Directional[:], f.raw(3))
		copy(lv.Dir[:], f.raw(2))
		return lv
	})
}

func decodeVisData(data []byte) (VisData, error) {
	if len(data) == 0 {
		return VisData{}, nil
	}
	if len(data) < visHeaderSize {
		return VisData{}, formatError(LumpVisData, fmt.Errorf("%w: %d bytes is shorter than the %d byte header", ErrMisalignedLump, len(data), visHeaderSize))
	}

	f := &fields{b: data}
	vis := VisData{NumVecs: f.i32(), VecSize: f.i32()}
	if vis.NumVecs < 0 || vis.VecSize < 0 || int64(vis.NumVecs)*int64(vis.VecSize) != int64(len(data)-visHeaderSize) {
		return VisData{}, formatError(LumpVisData, fmt.Errorf("%w: %d vectors of %d bytes in %d bytes", ErrMisalignedLump, vis.NumVecs, vis.VecSize, len(data)-visHeaderSize))
	}
	vis.Vecs = bytes.Clone(data[visHeaderSize:])
	return vis, nil
}
