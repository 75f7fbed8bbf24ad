// Package config loads the optional tmplprof.toml project file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"tmplprof/internal/dialect"
	"tmplprof/internal/postprocess"
	"tmplprof/internal/report"
)

// FileName is the name looked up by Find.
const FileName = "tmplprof.toml"

type Config struct {
	Path        string            `toml:"-"`
	Postprocess PostprocessConfig `toml:"postprocess"`
	Output      OutputConfig      `toml:"output"`
}

type PostprocessConfig struct {
	Compiler    dialect.Kind  `toml:"compiler"`
	Format      report.Format `toml:"format"`
	DetectLines int           `toml:"detect_lines"`
	Top         int           `toml:"top"`
}

type OutputConfig struct {
	Dir string `toml:"dir"`
}

// Default returns the configuration used when no file is found.
func Default() Config {
	return Config{
		Postprocess: PostprocessConfig{
			Compiler:    dialect.Unknown,
			Format:      report.FormatText,
			DetectLines: postprocess.DefaultDetectLines,
		},
	}
}

// Find walks up from startDir looking for tmplprof.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load decodes path on top of Default. Keys absent from the file keep their
// default values.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	if meta.IsDefined("postprocess", "detect_lines") && cfg.Postprocess.DetectLines <= 0 {
		return Config{}, fmt.Errorf("%s: [postprocess].detect_lines must be positive", path)
	}
	if cfg.Postprocess.Top < 0 {
		return Config{}, fmt.Errorf("%s: [postprocess].top must not be negative", path)
	}
	cfg.Path = path
	if cfg.Output.Dir != "" && !filepath.IsAbs(cfg.Output.Dir) {
		cfg.Output.Dir = filepath.Join(filepath.Dir(path), cfg.Output.Dir)
	}
	return cfg, nil
}

// Discover combines Find and Load. A missing file yields Default.
func Discover(startDir string) (Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}
