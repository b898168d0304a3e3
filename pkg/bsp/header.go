package bsp

import (
	"encoding/binary"
	"fmt"
)

const (
	// Magic identifies a Quake III map file.
	Magic = "IBSP"

	// Version is the only supported format version (0x2e).
	Version = 46

	headerSize    = 4 + 4
	dirEntrySize  = 4 + 4
	directorySize = NumLumps * dirEntrySize
)

// Lump identifies one of the directory entries. The order is the on-disk order.
type Lump int

const (
	LumpNone Lump = iota - 1 // Not a lump: header and byte source failures

	LumpEntities     // Entity descriptions, text
	LumpTextures     // Surface descriptions
	LumpPlanes       // Planes used by map geometry
	LumpNodes        // BSP tree nodes
	LumpLeafs        // BSP tree leaves
	LumpLeafFaces    // Lists of face indices, one list per leaf
	LumpLeafBrushes  // Lists of brush indices, one list per leaf
	LumpModels       // Descriptions of rigid world geometry
	LumpBrushes      // Convex polyhedra used to describe solid space
	LumpBrushSides   // Brush surfaces
	LumpVertices     // Vertices used to describe faces
	LumpMeshVerts    // Lists of offsets, one list per mesh
	LumpEffects      // List of special map effects
	LumpFaces        // Surface geometry
	LumpLightmaps    // Packed lightmap data
	LumpLightVolumes // Local illumination data
	LumpVisData      // Cluster-cluster visibility data

	NumLumps = 17
)

var lumpNames = [NumLumps]string{
	"Entities", "Textures", "Planes", "Nodes", "Leafs", "LeafFaces", "LeafBrushes", "Models",
	"Brushes", "BrushSides", "Vertices", "MeshVerts", "Effects", "Faces", "Lightmaps",
	"LightVolumes", "VisData",
}

// String returns the lump name.
func (l Lump) String() string {
	if l == LumpNone {
		return "Header"
	}
	if l < 0 || int(l) >= NumLumps {
		return fmt.Sprintf("Lump(%d)", int(l))
	}
	return lumpNames[l]
}

// ParseLump returns the lump with the given name (case-sensitive, as printed by String).
func ParseLump(name string) (Lump, error) {
	for i, n := range lumpNames {
		if n == name {
			return Lump(i), nil
		}
	}
	return LumpNone, fmt.Errorf("unknown lump %q", name)
}

// AllLumps returns every lump in directory order.
func AllLumps() []Lump {
	out := make([]Lump, NumLumps)
	for i := range out {
		out[i] = Lump(i)
	}
	return out
}

// Header is the fixed file header.
type Header struct {
	Magic   [4]byte
	Version int32
}

// DirEntry locates one lump in the file.
type DirEntry struct {
	Offset uint32
	Length uint32
}

// End returns the offset one past the last byte of the lump.
func (d DirEntry) End() int64 {
	return int64(d.Offset) + int64(d.Length)
}

// Directory holds the 17 entries indexed by Lump.
type Directory [NumLumps]DirEntry

// readHeader reads and checks magic and version. Nothing else is read before this succeeds.
func readHeader(src *Source) (Header, error) {
	data, err := src.ReadAt(0, headerSize)
	if err != nil {
		return Header{}, err
	}

	var h Header
	copy(h.Magic[:], data[0:4])
	h.Version = int32(binary.LittleEndian.Uint32(data[4:8]))

	if string(h.Magic[:]) != Magic {
		return Header{}, formatError(LumpNone, fmt.Errorf("%w: got %q", ErrBadMagic, h.Magic[:]))
	}
	if h.Version != Version {
		return Header{}, formatError(LumpNone, fmt.Errorf("%w: got %d, want %d", ErrBadVersion, h.Version, Version))
	}
	return h, nil
}

// readDirectory reads the entries following the header and checks each range against the file size.
func readDirectory(src *Source) (Directory, error) {
	var dir Directory

	data, err := src.ReadAt(headerSize, directorySize)
	if err != nil {
		return dir, err
	}

	for i := range dir {
		off := i * dirEntrySize
		dir[i] = DirEntry{
			Offset: binary.LittleEndian.Uint32(data[off:]),
			Length: binary.LittleEndian.Uint32(data[off+4:]),
		}
	}

	for i, e := range dir {
		if e.End() > src.Size() {
			return dir, &LoadError{
				Kind:   KindBounds,
				Lump:   Lump(i),
				Offset: int64(e.Offset),
				Index:  -1,
				Err:    fmt.Errorf("%w: directory claims [%d, %d) of %d bytes", ErrOutOfFile, e.Offset, e.End(), src.Size()),
			}
		}
	}
	return dir, nil
}
