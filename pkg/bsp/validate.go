package bsp

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// spanWithin reports whether [first, first+count) lies inside a collection of n records.
func spanWithin[T constraints.Integer](first, count T, n int) bool {
	if first < 0 || count < 0 {
		return false
	}
	return int64(first)+int64(count) <= int64(n)
}

// indexWithin reports whether i addresses a record of a collection of n records.
func indexWithin[T constraints.Integer](i T, n int) bool {
	return i >= 0 && int64(i) < int64(n)
}

func spanError(lump Lump, index int, what string, first, count int32, n int) error {
	return boundsError(lump, index, fmt.Errorf("%w: %s [%d, %d) outside %d records",
		ErrIndexRange, what, first, int64(first)+int64(count), n))
}

func indexError(lump Lump, index int, what string, value int32, n int) error {
	return boundsError(lump, index, fmt.Errorf("%w: %s %d outside %d records", ErrIndexRange, what, value, n))
}

// A crossCheck validates references from one decoded collection into others.
// It runs as soon as every lump in needs has been decoded.
type crossCheck struct {
	needs []Lump
	run   func(m *Map) error
}

// ready reports whether all lumps the check reads are decoded.
func (c crossCheck) ready(m *Map) bool {
	for _, l := range c.needs {
		if !m.decoded[l] {
			return false
		}
	}
	return true
}

var crossChecks = []crossCheck{
	{needs: []Lump{LumpFaces, LumpVertices}, run: checkFaceVertices},
	{needs: []Lump{LumpFaces, LumpMeshVerts}, run: checkFaceMeshVerts},
	{needs: []Lump{LumpLeafs, LumpLeafFaces}, run: checkLeafFaces},
	{needs: []Lump{LumpLeafs, LumpLeafBrushes}, run: checkLeafBrushes},
	{needs: []Lump{LumpBrushes, LumpBrushSides}, run: checkBrushSides},
	{needs: []Lump{LumpNodes, LumpPlanes}, run: checkNodePlanes},
	{needs: []Lump{LumpNodes, LumpLeafs}, run: checkNodeChildren},
	{needs: []Lump{LumpLeafFaces, LumpFaces}, run: checkLeafFaceIndices},
	{needs: []Lump{LumpLeafBrushes, LumpBrushes}, run: checkLeafBrushIndices},
	{needs: []Lump{LumpFaces, LumpTextures}, run: checkFaceTextures},
	{needs: []Lump{LumpFaces, LumpEffects}, run: checkFaceEffects},
	{needs: []Lump{LumpFaces, LumpLightmaps}, run: checkFaceLightmaps},
	{needs: []Lump{LumpBrushes, LumpTextures}, run: checkBrushTextures},
	{needs: []Lump{LumpBrushSides, LumpPlanes, LumpTextures}, run: checkBrushSideRefs},
	{needs: []Lump{LumpModels, LumpFaces, LumpBrushes}, run: checkModels},
	{needs: []Lump{LumpEffects, LumpBrushes}, run: checkEffectBrushes},
}

func checkFaceVertices(m *Map) error {
	for i, f := range m.faces {
		if !spanWithin(f.FirstVertex, f.NumVertices, len(m.vertices)) {
			return spanError(LumpFaces, i, "vertices", f.FirstVertex, f.NumVertices, len(m.vertices))
		}
	}
	return nil
}

// checkFaceMeshVerts also requires every mesh vertex offset to stay inside the face's own vertex range.
func checkFaceMeshVerts(m *Map) error {
	for i, f := range m.faces {
		if !spanWithin(f.FirstMeshVertex, f.NumMeshVertices, len(m.meshVerts)) {
			return spanError(LumpFaces, i, "mesh vertices", f.FirstMeshVertex, f.NumMeshVertices, len(m.meshVerts))
		}
		for _, off := range m.meshVerts[f.FirstMeshVertex : f.FirstMeshVertex+f.NumMeshVertices] {
			if !indexWithin(off, int(f.NumVertices)) {
				return indexError(LumpFaces, i, "mesh vertex offset", off, int(f.NumVertices))
			}
		}
	}
	return nil
}

func checkLeafFaces(m *Map) error {
	for i, l := range m.leafs {
		if !spanWithin(l.FirstLeafFace, l.NumLeafFaces, len(m.leafFaces)) {
			return spanError(LumpLeafs, i, "leaf faces", l.FirstLeafFace, l.NumLeafFaces, len(m.leafFaces))
		}
	}
	return nil
}

func checkLeafBrushes(m *Map) error {
	if m.leafRecord != LeafFullSize {
		return nil
	}
	for i, l := range m.leafs {
		if !spanWithin(l.FirstLeafBrush, l.NumLeafBrushes, len(m.leafBrushes)) {
			return spanError(LumpLeafs, i, "leaf brushes", l.FirstLeafBrush, l.NumLeafBrushes, len(m.leafBrushes))
		}
	}
	return nil
}

func checkBrushSides(m *Map) error {
	for i, b := range m.brushes {
		if !spanWithin(b.FirstSide, b.NumSides, len(m.brushSides)) {
			return spanError(LumpBrushes, i, "brush sides", b.FirstSide, b.NumSides, len(m.brushSides))
		}
	}
	return nil
}

func checkNodePlanes(m *Map) error {
	for i, n := range m.nodes {
		if !indexWithin(n.Plane, len(m.planes)) {
			return indexError(LumpNodes, i, "plane", n.Plane, len(m.planes))
		}
	}
	return nil
}

func checkNodeChildren(m *Map) error {
	for i, n := range m.nodes {
		for side, c := range n.Children {
			if leaf, ok := n.ChildLeaf(side); ok {
				if leaf >= len(m.leafs) {
					return indexError(LumpNodes, i, "child leaf", int32(leaf), len(m.leafs))
				}
				continue
			}
			if !indexWithin(c, len(m.nodes)) {
				return indexError(LumpNodes, i, "child node", c, len(m.nodes))
			}
		}
	}
	return nil
}

func checkLeafFaceIndices(m *Map) error {
	for i, f := range m.leafFaces {
		if !indexWithin(f, len(m.faces)) {
			return indexError(LumpLeafFaces, i, "face", f, len(m.faces))
		}
	}
	return nil
}

func checkLeafBrushIndices(m *Map) error {
	for i, b := range m.leafBrushes {
		if !indexWithin(b, len(m.brushes)) {
			return indexError(LumpLeafBrushes, i, "brush", b, len(m.brushes))
		}
	}
	return nil
}

func checkFaceTextures(m *Map) error {
	for i, f := range m.faces {
		if !indexWithin(f.Texture, len(m.textures)) {
			return indexError(LumpFaces, i, "texture", f.Texture, len(m.textures))
		}
	}
	return nil
}

func checkFaceEffects(m *Map) error {
	for i, f := range m.faces {
		if f.Effect >= 0 && !indexWithin(f.Effect, len(m.effects)) {
			return indexError(LumpFaces, i, "effect", f.Effect, len(m.effects))
		}
	}
	return nil
}

func checkFaceLightmaps(m *Map) error {
	for i, f := range m.faces {
		if f.Lightmap >= 0 && !indexWithin(f.Lightmap, len(m.lightmaps)) {
			return indexError(LumpFaces, i, "lightmap", f.Lightmap, len(m.lightmaps))
		}
	}
	return nil
}

func checkBrushTextures(m *Map) error {
	for i, b := range m.brushes {
		if !indexWithin(b.Texture, len(m.textures)) {
			return indexError(LumpBrushes, i, "texture", b.Texture, len(m.textures))
		}
	}
	return nil
}

func checkBrushSideRefs(m *Map) error {
	for i, s := range m.brushSides {
		if !indexWithin(s.Plane, len(m.planes)) {
			return indexError(LumpBrushSides, i, "plane", s.Plane, len(m.planes))
		}
		if !indexWithin(s.Texture, len(m.textures)) {
			return indexError(LumpBrushSides, i, "texture", s.Texture, len(m.textures))
		}
	}
	return nil
}

func checkModels(m *Map) error {
	for i, md := range m.models {
		if !spanWithin(md.FirstFace, md.NumFaces, len(m.faces)) {
			return spanError(LumpModels, i, "faces", md.FirstFace, md.NumFaces, len(m.faces))
		}
		if !spanWithin(md.FirstBrush, md.NumBrushes, len(m.brushes)) {
			return spanError(LumpModels, i, "brushes", md.FirstBrush, md.NumBrushes, len(m.brushes))
		}
	}
	return nil
}

func checkEffectBrushes(m *Map) error {
	for i, e := range m.effects {
		if e.Brush >= 0 && !indexWithin(e.Brush, len(m.brushes)) {
			return indexError(LumpEffects, i, "brush", e.Brush, len(m.brushes))
		}
	}
	return nil
}
