package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

type Settings struct {
	ParticleCount  int     `toml:"particle_count"`
	OrnamentCount  int     `toml:"ornament_count"`
	TreeHeight     float32 `toml:"tree_height"`
	TreeRadiusBase float32 `toml:"tree_radius_base"`
	ScatterRadius  float32 `toml:"scatter_radius"`

	BlendAssembleRate    float32 `toml:"blend_assemble_rate"`
	BlendDisperseRate    float32 `toml:"blend_disperse_rate"`
	OrnamentAssembleRate float32 `toml:"ornament_assemble_rate"`
	OrnamentDisperseRate float32 `toml:"ornament_disperse_rate"`
	PhotoSmoothing       float32 `toml:"photo_smoothing"`

	MaxShareLength int    `toml:"max_share_length"`
	TextureSize    int    `toml:"texture_size"`
	Listen         string `toml:"listen"`
}

func Defaults() *Settings {
	return &Settings{
		ParticleCount:        50000,
		OrnamentCount:        800,
		TreeHeight:           18,
		TreeRadiusBase:       7,
		ScatterRadius:        45,
		BlendAssembleRate:    1.5,
		BlendDisperseRate:    2.5,
		OrnamentAssembleRate: 2.5,
		OrnamentDisperseRate: 1.5,
		PhotoSmoothing:       0.06,
		MaxShareLength:       2 << 20,
		TextureSize:          512,
	}
}

func GetSettingsPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	configDir := filepath.Join(homeDir, ".config", "treemorph")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", err
	}
	return filepath.Join(configDir, "settings.toml"), nil
}

// LoadSettings reads path, creating it with defaults when missing. An empty
// path means the per-user settings file. Bad values fall back to their
// defaults with a warning; only I/O failures are returned.
func LoadSettings(path string, logger *slog.Logger) (*Settings, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if path == "" {
		p, err := GetSettingsPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	defaultSettings := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("creating default settings file", "path", path)
			if err := createDefaultSettings(path, defaultSettings); err != nil {
				logger.Warn("failed to create default settings file", "err", err)
			}
			return defaultSettings, nil
		}
		return nil, err
	}

	// Check for unrecognised keys
	var rawSettings map[string]any
	if err := toml.Unmarshal(data, &rawSettings); err != nil {
		logger.Warn("invalid settings file, using defaults", "path", path, "err", err)
		return defaultSettings, nil
	}

	knownKeys := getKnownKeys(Settings{})
	for key := range rawSettings {
		if !knownKeys[key] {
			logger.Warn("unrecognised setting key", "key", key, "path", path)
		}
	}

	settings := Defaults()
	if err := toml.Unmarshal(data, settings); err != nil {
		logger.Warn("invalid settings file, using defaults", "path", path, "err", err)
		return defaultSettings, nil
	}

	settings.validate(defaultSettings, logger)
	return settings, nil
}

func (s *Settings) validate(d *Settings, logger *slog.Logger) {
	reject := func(key string, got, def any, want string) {
		logger.Warn("invalid setting, using default", "key", key, "value", got, "want", want, "default", def)
	}
	if s.ParticleCount < 1 || s.ParticleCount > 1_000_000 {
		reject("particle_count", s.ParticleCount, d.ParticleCount, "1..1000000")
		s.ParticleCount = d.ParticleCount
	}
	if s.OrnamentCount < 0 || s.OrnamentCount > 100_000 {
		reject("ornament_count", s.OrnamentCount, d.OrnamentCount, "0..100000")
		s.OrnamentCount = d.OrnamentCount
	}
	for _, f := range []struct {
		key string
		v   *float32
		def float32
	}{
		{"tree_height", &s.TreeHeight, d.TreeHeight},
		{"tree_radius_base", &s.TreeRadiusBase, d.TreeRadiusBase},
		{"scatter_radius", &s.ScatterRadius, d.ScatterRadius},
		{"blend_assemble_rate", &s.BlendAssembleRate, d.BlendAssembleRate},
		{"blend_disperse_rate", &s.BlendDisperseRate, d.BlendDisperseRate},
		{"ornament_assemble_rate", &s.OrnamentAssembleRate, d.OrnamentAssembleRate},
		{"ornament_disperse_rate", &s.OrnamentDisperseRate, d.OrnamentDisperseRate},
	} {
		if !(*f.v > 0) {
			reject(f.key, *f.v, f.def, "> 0")
			*f.v = f.def
		}
	}
	if !(s.PhotoSmoothing > 0 && s.PhotoSmoothing <= 1) {
		reject("photo_smoothing", s.PhotoSmoothing, d.PhotoSmoothing, "(0, 1]")
		s.PhotoSmoothing = d.PhotoSmoothing
	}
	if s.MaxShareLength < 1 {
		reject("max_share_length", s.MaxShareLength, d.MaxShareLength, "> 0")
		s.MaxShareLength = d.MaxShareLength
	}
	if s.TextureSize < 16 || s.TextureSize > 4096 {
		reject("texture_size", s.TextureSize, d.TextureSize, "16..4096")
		s.TextureSize = d.TextureSize
	}
	if s.Listen != "" {
		if _, _, err := net.SplitHostPort(s.Listen); err != nil {
			reject("listen", s.Listen, d.Listen, "host:port")
			s.Listen = d.Listen
		}
	}
}

// Save writes s to path as TOML.
func Save(path string, s *Settings) error {
	data, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func createDefaultSettings(path string, settings *Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return Save(path, settings)
}

func getKnownKeys(v any) map[string]bool {
	keys := make(map[string]bool)
	t := reflect.TypeOf(v)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if tag := field.Tag.Get("toml"); tag != "" {
			// Handle tags like "field,omitempty"
			tagName := strings.Split(tag, ",")[0]
			if tagName != "-" {
				keys[tagName] = true
			}
		}
	}
	return keys
}
