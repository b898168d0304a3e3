// Package config handles bsptool configuration loading and management.
package config

import (
	"fmt"

	"github.com/Faultbox/ibsp/pkg/bsp"
	"github.com/Faultbox/ibsp/pkg/encoding"
)

// Config holds all tool settings.
type Config struct {
	Decode  DecodeConfig  `yaml:"decode"`
	Data    DataConfig    `yaml:"data"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// DecodeConfig controls how map files are decoded.
type DecodeConfig struct {
	Lumps             []string `yaml:"lumps,omitempty"`     // Lump names to decode, empty = all
	TextureRecordSize int      `yaml:"texture_record_size"` // 64 (name only) or 72 (name, flags, contents)
	LeafRecordSize    int      `yaml:"leaf_record_size"`    // 40 (leaf faces only) or 48 (leaf faces and brushes)
	LightmapWidth     int      `yaml:"lightmap_width"`
	LightmapHeight    int      `yaml:"lightmap_height"`
	LightmapChannels  int      `yaml:"lightmap_channels"`
	NameEncoding      string   `yaml:"name_encoding"` // ascii, latin1, windows1252, euc-kr
}

// DataConfig holds game data file paths.
type DataConfig struct {
	PK3Paths []string `yaml:"pk3_paths"` // Archives searched for maps/<name>.bsp, later paths win
}

// OutputConfig holds export settings.
type OutputConfig struct {
	Dir string `yaml:"dir"` // Directory for exported lightmaps
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
// Shipped Quake III maps use 72 byte texture records and 48 byte leaf records.
func Default() *Config {
	return &Config{
		Decode: DecodeConfig{
			TextureRecordSize: bsp.TextureShaderSize,
			LeafRecordSize:    bsp.LeafFullSize,
			LightmapWidth:     bsp.DefaultLightmapFormat.Width,
			LightmapHeight:    bsp.DefaultLightmapFormat.Height,
			LightmapChannels:  bsp.DefaultLightmapFormat.Channels,
			NameEncoding:      encoding.ASCII,
		},
		Data: DataConfig{
			PK3Paths: []string{"baseq3/pak0.pk3"},
		},
		Output: OutputConfig{
			Dir: "lightmaps",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// DecodeOptions converts the decode section into loader options.
func (c *Config) DecodeOptions() ([]bsp.Option, error) {
	d := c.Decode

	name, err := encoding.Decoder(d.NameEncoding)
	if err != nil {
		return nil, fmt.Errorf("decode.name_encoding: %w", err)
	}

	opts := []bsp.Option{
		bsp.WithTextureRecordSize(d.TextureRecordSize),
		bsp.WithLeafRecordSize(d.LeafRecordSize),
		bsp.WithLightmapFormat(bsp.LightmapFormat{
			Width:    d.LightmapWidth,
			Height:   d.LightmapHeight,
			Channels: d.LightmapChannels,
		}),
		bsp.WithNameDecoder(name),
	}

	if len(d.Lumps) > 0 {
		lumps := make([]bsp.Lump, 0, len(d.Lumps))
		for _, n := range d.Lumps {
			l, err := bsp.ParseLump(n)
			if err != nil {
				return nil, fmt.Errorf("decode.lumps: %w", err)
			}
			lumps = append(lumps, l)
		}
		opts = append(opts, bsp.WithLumps(lumps...))
	}
	return opts, nil
}

// Validate checks values the loader would otherwise reject later.
func (c *Config) Validate() error {
	d := c.Decode
	if d.TextureRecordSize != bsp.TextureNameSize && d.TextureRecordSize != bsp.TextureShaderSize {
		return fmt.Errorf("decode.texture_record_size must be %d or %d, got %d",
			bsp.TextureNameSize, bsp.TextureShaderSize, d.TextureRecordSize)
	}
	if d.LeafRecordSize != bsp.LeafCompactSize && d.LeafRecordSize != bsp.LeafFullSize {
		return fmt.Errorf("decode.leaf_record_size must be %d or %d, got %d",
			bsp.LeafCompactSize, bsp.LeafFullSize, d.LeafRecordSize)
	}
	if d.LightmapWidth <= 0 || d.LightmapHeight <= 0 || d.LightmapChannels <= 0 {
		return fmt.Errorf("decode lightmap format must be positive, got %dx%dx%d",
			d.LightmapWidth, d.LightmapHeight, d.LightmapChannels)
	}
	_, err := c.DecodeOptions()
	return err
}
