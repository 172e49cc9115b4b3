package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	lerrors "github.com/ryotapoi/mdlinkify/internal/errors"
)

const configFileName = "mdlinkify.yaml"

// DefaultAutoConvertDelay is the auto-convert debounce in milliseconds.
const DefaultAutoConvertDelay = 500

// Config represents the mdlinkify.yaml configuration file.
type Config struct {
	ShowDetails        bool     `yaml:"show_details"`
	AutoConvert        bool     `yaml:"auto_convert"`
	AutoConvertDelay   int      `yaml:"auto_convert_delay"` // milliseconds
	NonBoundaryScripts []string `yaml:"non_boundary_scripts"`

	// Excludes mixes note names and folder prefixes; entries ending in "/"
	// are folders.
	Excludes        []string `yaml:"excludes"`
	ExcludedNames   []string `yaml:"excluded_names"`
	ExcludedFolders []string `yaml:"excluded_folders"`

	Language string `yaml:"language"`
}

// DefaultConfig returns the settings used when no config file exists.
func DefaultConfig() Config {
	return Config{
		ShowDetails:        true,
		AutoConvertDelay:   DefaultAutoConvertDelay,
		NonBoundaryScripts: append([]string(nil), DefaultNonBoundaryScripts...),
	}
}

// LoadConfig reads mdlinkify.yaml from the vault root. Keys missing from the
// file keep their defaults. Returns DefaultConfig if the file does not exist.
func LoadConfig(vaultPath string) (Config, error) {
	cfg := DefaultConfig()
	p := filepath.Join(vaultPath, configFileName)
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, lerrors.ConfigInvalid(configFileName, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the engine cannot use.
func (c Config) Validate() error {
	if c.AutoConvertDelay < 0 {
		return lerrors.ConfigInvalid(fmt.Sprintf("auto_convert_delay must not be negative (got %d)", c.AutoConvertDelay), nil)
	}
	return nil
}

// Delay returns the auto-convert debounce.
func (c Config) Delay() time.Duration {
	return time.Duration(c.AutoConvertDelay) * time.Millisecond
}

// Exclusions splits the combined excludes list and merges it with the
// dedicated lists. Folder prefixes are normalized to end in "/".
func (c Config) Exclusions() (names, folders []string) {
	for _, e := range c.Excludes {
		if strings.HasSuffix(e, "/") {
			folders = append(folders, e)
		} else {
			names = append(names, e)
		}
	}
	names = append(names, c.ExcludedNames...)
	folders = append(folders, c.ExcludedFolders...)
	for i, f := range folders {
		folders[i] = normalizeFolderPrefix(f)
	}
	return names, folders
}

// SplitList parses a free-text list separated by "," or the full-width "，".
// Blank entries are dropped.
func SplitList(raw string) []string {
	raw = strings.ReplaceAll(raw, "，", ",")
	var out []string
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func normalizeFolderPrefix(f string) string {
	f = strings.TrimPrefix(filepath.ToSlash(f), "./")
	if !strings.HasSuffix(f, "/") {
		f += "/"
	}
	return f
}
