// Package config reads the INI model configuration (config.ini) that
// accompanies a pretrained model.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/ini.v1"
)

const (
	SectionDF            = "df"
	SectionDeepFilterNet = "deepfilternet"
)

var ErrKeyNotFound = errors.New("key not found")

type Config struct {
	Path string
	File *ini.File
}

// Load parses the INI file at path. If mustExist is false, a missing file
// results into an empty config.
func Load(path string, mustExist bool) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) || mustExist {
			return nil, fmt.Errorf("unable to access config file '%s': %w", path, err)
		}
		return &Config{
			Path: path,
			File: ini.Empty(ini.LoadOptions{InsensitiveKeys: true}),
		}, nil
	}

	f, err := ini.LoadSources(ini.LoadOptions{InsensitiveKeys: true}, path)
	if err != nil {
		return nil, fmt.Errorf("unable to parse config file '%s': %w", path, err)
	}
	return &Config{
		Path: path,
		File: f,
	}, nil
}

// HasSection reports whether the config defines the section.
func (cfg *Config) HasSection(section string) bool {
	_, err := cfg.File.GetSection(section)
	return err == nil
}

// Section returns a typed accessor of the given section. The section
// does not need to exist, and it is not created if it does not.
func (cfg *Config) Section(section string) Section {
	s, err := cfg.File.GetSection(section)
	if err != nil {
		s = nil
	}
	return Section{
		Name:    section,
		Section: s,
	}
}

// Set overrides a value, creating the section if needed.
func (cfg *Config) Set(section, key string, value any) {
	var s string
	switch value := value.(type) {
	case bool:
		s = strconv.FormatBool(value)
	case string:
		s = value
	default:
		s = fmt.Sprint(value)
	}
	cfg.File.Section(section).Key(key).SetValue(s)
}

type Section struct {
	Name    string
	Section *ini.Section
}

func (s Section) Has(key string) bool {
	return s.Section != nil && s.Section.HasKey(key)
}

func (s Section) key(key string) (*ini.Key, error) {
	if !s.Has(key) {
		return nil, fmt.Errorf("[%s] %s: %w", s.Name, key, ErrKeyNotFound)
	}
	return s.Section.Key(key), nil
}

func (s Section) Int(key string) (int, error) {
	k, err := s.key(key)
	if err != nil {
		return 0, err
	}
	v, err := k.Int()
	if err != nil {
		return 0, fmt.Errorf("[%s] %s: unable to parse '%s' as an integer: %w", s.Name, key, k.String(), err)
	}
	return v, nil
}

func (s Section) Float(key string) (float64, error) {
	k, err := s.key(key)
	if err != nil {
		return 0, err
	}
	v, err := k.Float64()
	if err != nil {
		return 0, fmt.Errorf("[%s] %s: unable to parse '%s' as a float: %w", s.Name, key, k.String(), err)
	}
	return v, nil
}

func (s Section) Bool(key string) (bool, error) {
	k, err := s.key(key)
	if err != nil {
		return false, err
	}
	v, err := k.Bool()
	if err != nil {
		return false, fmt.Errorf("[%s] %s: unable to parse '%s' as a boolean: %w", s.Name, key, k.String(), err)
	}
	return v, nil
}

func (s Section) IntOr(key string, defaultValue int) (int, error) {
	if !s.Has(key) {
		return defaultValue, nil
	}
	return s.Int(key)
}

func (s Section) FloatOr(key string, defaultValue float64) (float64, error) {
	if !s.Has(key) {
		return defaultValue, nil
	}
	return s.Float(key)
}

func (s Section) BoolOr(key string, defaultValue bool) (bool, error) {
	if !s.Has(key) {
		return defaultValue, nil
	}
	return s.Bool(key)
}
