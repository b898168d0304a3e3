// bsptool is a CLI utility for inspecting Quake III map files.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/ibsp/internal/assets"
	"github.com/Faultbox/ibsp/internal/config"
	"github.com/Faultbox/ibsp/internal/logger"
	"github.com/Faultbox/ibsp/pkg/bsp"
)

type command struct {
	run   func(args []string, stdout io.Writer) error
	usage string
	help  string
}

var commands = map[string]command{
	"info":      {cmdInfo, "info <map>", "Show header and record counts"},
	"lumps":     {cmdLumps, "lumps <map>", "Show the lump directory"},
	"entities":  {cmdEntities, "entities [-n N] <map>", "Print entity blocks"},
	"textures":  {cmdTextures, "textures <map>", "List textures"},
	"faces":     {cmdFaces, "faces [-type T] [-n N] <map>", "List faces"},
	"lightmaps": {cmdLightmaps, "lightmaps [-format png|bmp|tiff] <map>", "Export lightmaps as images"},
	"verify":    {cmdVerify, "verify <map>...", "Decode maps and report the first error of each"},
	"pk3":       {cmdPK3, "pk3 [-files] [archive.pk3...]", "List maps inside archives"},
}

var aliases = map[string]string{
	"ls":    "pk3",
	"check": "verify",
	"lm":    "lightmaps",
}

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "help", "-h", "--help":
		printUsage(os.Stdout)
		return
	}

	os.Exit(run(os.Args[1], os.Args[2:], os.Stdout))
}

// run executes one subcommand and returns the process exit code.
func run(name string, args []string, stdout io.Writer) int {
	if alias, ok := aliases[name]; ok {
		name = alias
	}
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", name)
		printUsage(os.Stderr)
		return 1
	}

	err := cmd.run(args, stdout)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, flag.ErrHelp):
		return 0
	case errors.Is(err, errUsage):
		fmt.Fprintf(os.Stderr, "Usage: bsptool %s\n", cmd.usage)
		return 2
	case errors.Is(err, errFailed):
		return 1
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `bsptool - Quake III map (IBSP v46) utility

Usage:
  bsptool <command> [options] <map>

A <map> is a path to a .bsp file or a map name looked up as maps/<name>.bsp
in the configured pk3 archives.

Commands:`)

	names := make([]string, 0, len(commands))
	for n := range commands {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(w, "  %-40s %s\n", commands[n].usage, commands[n].help)
	}

	fmt.Fprintln(w, `
Common options:
  -config <file>       Config file (default ./bsptool.yaml or the user config dir)
  -pk3 <a.pk3,b.pk3>   Archives to search for maps
  -lumps <A,B>         Decode only these lumps and their dependencies
  -texture-size 64|72  Texture record size
  -leaf-size 40|48     Leaf record size
  -encoding <name>     Name encoding: ascii, latin1, windows1252, euc-kr
  -out <dir>           Export directory
  -debug, -log <file>  Logging

Examples:
  bsptool info maps/q3dm17.bsp
  bsptool faces -type Patch -pk3 baseq3/pak0.pk3 q3dm17
  bsptool lightmaps -out ./lm q3dm17
  bsptool verify maps/*.bsp`)
}

var (
	// errUsage makes run print the command usage line.
	errUsage = errors.New("usage")
	// errFailed reports a failure the command has already printed.
	errFailed = errors.New("failed")
)

// env is the state shared by one subcommand run.
type env struct {
	cfg    *config.Config
	log    *zap.Logger
	out    io.Writer
	assets *assets.Manager
}

// newFlagSet returns a flag set for a subcommand with the common options bound to flags.
func newFlagSet(name string) (*flag.FlagSet, *config.Flags) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	flags := &config.Flags{}
	flags.Bind(fs)
	return fs, flags
}

// setup parses args, loads the config and initializes logging. The caller must close the env.
func setup(fs *flag.FlagSet, flags *config.Flags, args []string, stdout io.Writer) (*env, error) {
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg, err := config.Load(flags)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log := logger.Named(fs.Name())
	log.Debug("config loaded",
		zap.Strings("pk3_paths", cfg.Data.PK3Paths),
		zap.Strings("lumps", cfg.Decode.Lumps),
		zap.Int("texture_record_size", cfg.Decode.TextureRecordSize),
		zap.Int("leaf_record_size", cfg.Decode.LeafRecordSize),
		zap.String("name_encoding", cfg.Decode.NameEncoding))

	return &env{cfg: cfg, log: log, out: stdout}, nil
}

func (e *env) close() {
	if e.assets != nil {
		if err := e.assets.Close(); err != nil {
			e.log.Warn("closing archives", zap.Error(err))
		}
	}
	logger.Sync()
}

// archives opens the configured pk3 archives once. Archives that fail to open are logged and skipped.
func (e *env) archives() *assets.Manager {
	if e.assets != nil {
		return e.assets
	}
	e.assets = assets.NewManager(logger.Named("assets"))
	if err := e.assets.AddArchives(e.cfg.Data.PK3Paths); err != nil {
		e.log.Warn("some archives could not be opened", zap.Error(err))
	}
	return e.assets
}

// loadMap decodes a map given as a .bsp path or as a map name found in the pk3 archives.
func (e *env) loadMap(arg string) (*bsp.Map, error) {
	opts, err := e.cfg.DecodeOptions()
	if err != nil {
		return nil, err
	}

	if isMapFile(arg) {
		e.log.Debug("loading map file", zap.String("path", arg))
		return bsp.LoadAll(arg, opts...)
	}

	e.log.Debug("loading map from archives", zap.String("name", arg))
	return e.archives().LoadMap(arg, opts...)
}

func isMapFile(arg string) bool {
	if strings.EqualFold(filepath.Ext(arg), ".bsp") {
		return true
	}
	info, err := os.Stat(arg)
	return err == nil && info.Mode().IsRegular()
}

// oneMap parses args and loads the single map argument.
func oneMap(fs *flag.FlagSet, flags *config.Flags, args []string, stdout io.Writer) (*env, *bsp.Map, error) {
	e, err := setup(fs, flags, args, stdout)
	if err != nil {
		return nil, nil, err
	}
	if fs.NArg() != 1 {
		e.close()
		return nil, nil, errUsage
	}
	m, err := e.loadMap(fs.Arg(0))
	if err != nil {
		e.close()
		return nil, nil, err
	}
	return e, m, nil
}
