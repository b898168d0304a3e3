package config

import (
	"flag"
	"strings"
)

// Flags holds command-line overrides shared by every subcommand.
type Flags struct {
	Config       string
	Debug        bool
	LogFile      string
	PK3          string
	Lumps        string
	TextureSize  int
	LeafSize     int
	NameEncoding string
	OutputDir    string
}

// Bind registers the shared flags on fs.
func (f *Flags) Bind(fs *flag.FlagSet) {
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.LogFile, "log", "", "Also write logs to this file")
	fs.StringVar(&f.PK3, "pk3", "", "Comma-separated pk3 archives (replaces data.pk3_paths)")
	fs.StringVar(&f.Lumps, "lumps", "", "Comma-separated lumps to decode, e.g. Faces,Vertices")
	fs.IntVar(&f.TextureSize, "texture-size", 0, "Texture record size, 64 or 72")
	fs.IntVar(&f.LeafSize, "leaf-size", 0, "Leaf record size, 40 or 48")
	fs.StringVar(&f.NameEncoding, "encoding", "", "Name encoding: ascii, latin1, windows1252, euc-kr")
	fs.StringVar(&f.OutputDir, "out", "", "Output directory for exports")
}

// apply applies flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.LogFile != "" {
		cfg.Logging.LogFile = f.LogFile
	}
	if f.PK3 != "" {
		cfg.Data.PK3Paths = splitList(f.PK3)
	}
	if f.Lumps != "" {
		cfg.Decode.Lumps = splitList(f.Lumps)
	}
	if f.TextureSize > 0 {
		cfg.Decode.TextureRecordSize = f.TextureSize
	}
	if f.LeafSize > 0 {
		cfg.Decode.LeafRecordSize = f.LeafSize
	}
	if f.NameEncoding != "" {
		cfg.Decode.NameEncoding = f.NameEncoding
	}
	if f.OutputDir != "" {
		cfg.Output.Dir = f.OutputDir
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
