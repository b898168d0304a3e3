package main

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/Faultbox/ibsp/pkg/bsp"
	"github.com/Faultbox/ibsp/pkg/pk3"
)

func cmdInfo(args []string, stdout io.Writer) error {
	fs, flags := newFlagSet("info")
	e, m, err := oneMap(fs, flags, args, stdout)
	if err != nil {
		return err
	}
	defer e.close()

	h := m.Header()
	fmt.Fprintf(e.out, "Map:      %s\n", fs.Arg(0))
	fmt.Fprintf(e.out, "Magic:    %s\n", h.Magic[:])
	fmt.Fprintf(e.out, "Version:  %d\n", h.Version)
	fmt.Fprintln(e.out)

	for _, l := range bsp.AllLumps() {
		if !m.Decoded(l) {
			fmt.Fprintf(e.out, "  %-14s -\n", l)
			continue
		}
		fmt.Fprintf(e.out, "  %-14s %d\n", l, lumpCount(m, l))
	}
	return nil
}

// lumpCount returns the number of decoded records of a lump. Entities counts
// entity blocks and VisData counts clusters.
func lumpCount(m *bsp.Map, l bsp.Lump) int {
	switch l {
	case bsp.LumpEntities:
		blocks, _ := bsp.SplitEntities(m.Entities())
		return len(blocks)
	case bsp.LumpTextures:
		return len(m.Textures())
	case bsp.LumpPlanes:
		return len(m.Planes())
	case bsp.LumpNodes:
		return len(m.Nodes())
	case bsp.LumpLeafs:
		return len(m.Leafs())
	case bsp.LumpLeafFaces:
		return len(m.LeafFaces())
	case bsp.LumpLeafBrushes:
		return len(m.LeafBrushes())
	case bsp.LumpModels:
		return len(m.Models())
	case bsp.LumpBrushes:
		return len(m.Brushes())
	case bsp.LumpBrushSides:
		return len(m.BrushSides())
	case bsp.LumpVertices:
		return m.NumVertices()
	case bsp.LumpMeshVerts:
		return len(m.MeshVerts())
	case bsp.LumpEffects:
		return len(m.Effects())
	case bsp.LumpFaces:
		return m.NumFaces()
	case bsp.LumpLightmaps:
		return len(m.Lightmaps())
	case bsp.LumpLightVolumes:
		return len(m.LightVolumes())
	case bsp.LumpVisData:
		return int(m.VisData().NumVecs)
	}
	return 0
}

func cmdLumps(args []string, stdout io.Writer) error {
	fs, flags := newFlagSet("lumps")
	e, m, err := oneMap(fs, flags, args, stdout)
	if err != nil {
		return err
	}
	defer e.close()

	dir := m.Directory()
	fmt.Fprintf(e.out, "%-3s %-14s %10s %10s %8s\n", "#", "Lump", "Offset", "Length", "Records")
	for _, l := range bsp.AllLumps() {
		count := "-"
		if m.Decoded(l) {
			count = fmt.Sprint(lumpCount(m, l))
		}
		fmt.Fprintf(e.out, "%-3d %-14s %10d %10d %8s\n", int(l), l, dir[l].Offset, dir[l].Length, count)
	}
	return nil
}

func cmdEntities(args []string, stdout io.Writer) error {
	fs, flags := newFlagSet("entities")
	limit := fs.Int("n", 0, "Limit output to N entities (0 = all)")
	e, m, err := oneMap(fs, flags, args, stdout)
	if err != nil {
		return err
	}
	defer e.close()

	blocks, err := bsp.SplitEntities(m.Entities())
	if err != nil {
		return fmt.Errorf("entity text: %w", err)
	}
	for i, b := range blocks {
		if *limit > 0 && i >= *limit {
			break
		}
		fmt.Fprintf(e.out, "// entity %d\n%s\n", i, b)
	}
	return nil
}

func cmdTextures(args []string, stdout io.Writer) error {
	fs, flags := newFlagSet("textures")
	e, m, err := oneMap(fs, flags, args, stdout)
	if err != nil {
		return err
	}
	defer e.close()

	for i, t := range m.Textures() {
		fmt.Fprintf(e.out, "%4d  flags=0x%08x contents=0x%08x  %s\n", i, uint32(t.Flags), uint32(t.Contents), t.Name)
	}
	return nil
}

func cmdFaces(args []string, stdout io.Writer) error {
	fs, flags := newFlagSet("faces")
	typeName := fs.String("type", "", "Only faces of this type: Polygon, Patch, Mesh, Billboard")
	limit := fs.Int("n", 0, "Limit output to N faces (0 = all)")
	e, m, err := oneMap(fs, flags, args, stdout)
	if err != nil {
		return err
	}
	defer e.close()

	textures := m.Textures()
	shown := 0
	for i, f := range m.Faces() {
		if *typeName != "" && !strings.EqualFold(f.Type.String(), *typeName) {
			continue
		}
		if *limit > 0 && shown >= *limit {
			break
		}
		shown++

		texture := fmt.Sprint(f.Texture)
		if f.Texture >= 0 && int(f.Texture) < len(textures) {
			texture = textures[f.Texture].Name
		}
		fmt.Fprintf(e.out, "%5d %-9s verts=%d+%d mesh=%d+%d lightmap=%d  %s\n",
			i, f.Type, f.FirstVertex, f.NumVertices, f.FirstMeshVertex, f.NumMeshVertices, f.Lightmap, texture)
	}
	e.log.Debug("faces listed", zap.Int("shown", shown), zap.Int("total", m.NumFaces()))
	return nil
}

var imageEncoders = map[string]func(io.Writer, image.Image) error{
	"png": png.Encode,
	"bmp": bmp.Encode,
	"tiff": func(w io.Writer, img image.Image) error {
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	},
}

func cmdLightmaps(args []string, stdout io.Writer) error {
	fs, flags := newFlagSet("lightmaps")
	format := fs.String("format", "png", "Image format: png, bmp, tiff")
	e, m, err := oneMap(fs, flags, args, stdout)
	if err != nil {
		return err
	}
	defer e.close()

	encode, ok := imageEncoders[strings.ToLower(*format)]
	if !ok {
		return fmt.Errorf("unknown image format %q", *format)
	}

	dir := e.cfg.Output.Dir
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	lightmaps := m.Lightmaps()
	for i, l := range lightmaps {
		img, err := l.Image()
		if err != nil {
			return fmt.Errorf("lightmap %d: %w", i, err)
		}
		path := filepath.Join(dir, fmt.Sprintf("lm_%04d.%s", i, strings.ToLower(*format)))
		if err := writeImage(path, img, encode); err != nil {
			return fmt.Errorf("lightmap %d: %w", i, err)
		}
	}

	e.log.Info("lightmaps exported", zap.Int("count", len(lightmaps)), zap.String("dir", dir))
	fmt.Fprintf(e.out, "Exported %d lightmaps to %s\n", len(lightmaps), dir)
	return nil
}

func writeImage(path string, img image.Image, encode func(io.Writer, image.Image) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func cmdVerify(args []string, stdout io.Writer) error {
	fs, flags := newFlagSet("verify")
	e, err := setup(fs, flags, args, stdout)
	if err != nil {
		return err
	}
	defer e.close()

	if fs.NArg() == 0 {
		return errUsage
	}

	failed := 0
	for _, arg := range fs.Args() {
		m, err := e.loadMap(arg)
		if err != nil {
			failed++
			fmt.Fprintf(e.out, "FAIL %s: %v\n", arg, err)
			e.log.Warn("map rejected", append([]zap.Field{zap.String("map", arg)}, loadErrorFields(err)...)...)
			continue
		}
		fmt.Fprintf(e.out, "OK   %s (%d faces, %d vertices, %d textures)\n",
			arg, m.NumFaces(), m.NumVertices(), len(m.Textures()))
	}

	if failed > 0 {
		fmt.Fprintf(e.out, "%d of %d maps failed\n", failed, fs.NArg())
		return errFailed
	}
	return nil
}

// loadErrorFields turns a load error into structured log fields.
func loadErrorFields(err error) []zap.Field {
	var le *bsp.LoadError
	if !errors.As(err, &le) {
		return []zap.Field{zap.Error(err)}
	}
	fields := []zap.Field{
		zap.Stringer("kind", le.Kind),
		zap.Stringer("lump", le.Lump),
		zap.Error(le.Err),
	}
	if le.Index >= 0 {
		fields = append(fields, zap.Int("index", le.Index))
	}
	if le.Offset >= 0 {
		fields = append(fields, zap.Int64("offset", le.Offset))
	}
	return fields
}

func cmdPK3(args []string, stdout io.Writer) error {
	fs, flags := newFlagSet("pk3")
	files := fs.Bool("files", false, "List every file instead of maps only")
	e, err := setup(fs, flags, args, stdout)
	if err != nil {
		return err
	}
	defer e.close()

	paths := fs.Args()
	if len(paths) == 0 {
		paths = e.cfg.Data.PK3Paths
	}
	if len(paths) == 0 {
		return errUsage
	}

	for _, p := range paths {
		archive, err := pk3.Open(p)
		if err != nil {
			return err
		}

		names := archive.Maps()
		if *files {
			names = archive.List()
		}
		fmt.Fprintf(e.out, "%s: %d entries\n", p, len(names))
		for _, n := range names {
			fmt.Fprintf(e.out, "  %s\n", n)
		}

		if err := archive.Close(); err != nil {
			e.log.Warn("closing archive", zap.String("path", p), zap.Error(err))
		}
	}
	return nil
}
