package bsp

import "fmt"

// NameDecoder turns a NUL-trimmed name slot into a string.
type NameDecoder func([]byte) string

func rawName(b []byte) string {
	return string(b)
}

type options struct {
	lumps          map[Lump]bool // nil = all
	textureRecord  int
	leafRecord     int
	lightmapFormat LightmapFormat
	name           NameDecoder
}

func defaultOptions() options {
	return options{
		textureRecord:  TextureNameSize,
		leafRecord:     LeafCompactSize,
		lightmapFormat: DefaultLightmapFormat,
		name:           rawName,
	}
}

// Option configures a load.
type Option func(*options) error

// WithLumps restricts decoding to the given lumps plus the lumps their
// cross-reference checks depend on. Without it every lump is decoded.
func WithLumps(lumps ...Lump) Option {
	return func(o *options) error {
		sel := make(map[Lump]bool, len(lumps))
		for _, l := range lumps {
			if l < 0 || int(l) >= NumLumps {
				return fmt.Errorf("invalid lump %d", int(l))
			}
			sel[l] = true
		}
		o.lumps = sel
		return nil
	}
}

// WithTextureRecordSize selects the texture record layout, TextureNameSize or TextureShaderSize.
func WithTextureRecordSize(size int) Option {
	return func(o *options) error {
		if size != TextureNameSize && size != TextureShaderSize {
			return fmt.Errorf("texture record size must be %d or %d, got %d", TextureNameSize, TextureShaderSize, size)
		}
		o.textureRecord = size
		return nil
	}
}

// WithLeafRecordSize selects the leaf record layout, LeafCompactSize or LeafFullSize.
// Leaf-brush ranges are only read and checked for LeafFullSize records.
func WithLeafRecordSize(size int) Option {
	return func(o *options) error {
		if size != LeafCompactSize && size != LeafFullSize {
			return fmt.Errorf("leaf record size must be %d or %d, got %d", LeafCompactSize, LeafFullSize, size)
		}
		o.leafRecord = size
		return nil
	}
}

// WithLightmapFormat sets the raster block layout of the lightmap lump.
func WithLightmapFormat(f LightmapFormat) Option {
	return func(o *options) error {
		if err := f.validate(); err != nil {
			return err
		}
		o.lightmapFormat = f
		return nil
	}
}

// WithNameDecoder sets how texture and effect names are converted to strings.
func WithNameDecoder(d NameDecoder) Option {
	return func(o *options) error {
		if d == nil {
			return fmt.Errorf("nil name decoder")
		}
		o.name = d
		return nil
	}
}

func buildOptions(opts []Option) (options, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return o, err
		}
	}
	if o.lumps != nil {
		o.lumps = withDependencies(o.lumps)
	}
	return o, nil
}

func (o *options) wants(l Lump) bool {
	return o.lumps == nil || o.lumps[l]
}
