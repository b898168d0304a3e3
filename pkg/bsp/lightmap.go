package bsp

import (
	"fmt"
	"image"
)

// LightmapFormat describes the raster block layout of the lightmap lump.
type LightmapFormat struct {
	Width    int
	Height   int
	Channels int // Bytes per texel
}

// DefaultLightmapFormat is the Quake III layout: 128x128 RGB.
var DefaultLightmapFormat = LightmapFormat{Width: 128, Height: 128, Channels: 3}

// BlockSize returns the size in bytes of one lightmap.
func (f LightmapFormat) BlockSize() int {
	return f.Width * f.Height * f.Channels
}

func (f LightmapFormat) validate() error {
	if f.Width <= 0 || f.Height <= 0 || f.Channels <= 0 {
		return fmt.Errorf("invalid lightmap format %dx%dx%d", f.Width, f.Height, f.Channels)
	}
	return nil
}

// Lightmap is one opaque raster block.
type Lightmap struct {
	Format LightmapFormat
	Data   []byte
}

// Image exposes the block as an image for export.
// One channel is read as gray, three as RGB, four as RGBA; other layouts are not supported.
func (l Lightmap) Image() (image.Image, error) {
	f := l.Format
	if len(l.Data) != f.BlockSize() {
		return nil, fmt.Errorf("lightmap holds %d bytes, format wants %d", len(l.Data), f.BlockSize())
	}

	rect := image.Rect(0, 0, f.Width, f.Height)
	switch f.Channels {
	case 1:
		img := image.NewGray(rect)
		copy(img.Pix, l.Data)
		return img, nil
	case 3:
		img := image.NewNRGBA(rect)
		for i := 0; i < f.Width*f.Height; i++ {
			img.Pix[i*4+0] = l.Data[i*3+0]
			img.Pix[i*4+1] = l.Data[i*3+1]
			img.Pix[i*4+2] = l.Data[i*3+2]
			img.Pix[i*4+3] = 0xff
		}
		return img, nil
	case 4:
		img := image.NewNRGBA(rect)
		copy(img.Pix, l.Data)
		return img, nil
	default:
		return nil, fmt.Errorf("unsupported lightmap channel count %d", f.Channels)
	}
}

