package testenv

import "path/filepath"

// Dirs contains isolated config/cache directories for cursor-meter tests.
type Dirs struct {
	Base   string
	Config string
	Cache  string
}

// MeterDirs returns conventional test directories rooted at base.
func MeterDirs(base string) Dirs {
	return Dirs{
		Base:   base,
		Config: filepath.Join(base, "config"),
		Cache:  filepath.Join(base, "cache"),
	}
}

// Apply sets CURSOR_METER_* env vars to isolated test directories.
func Apply(setenv func(string, string), base string) Dirs {
	dirs := MeterDirs(base)
	setenv("CURSOR_METER_CONFIG_DIR", dirs.Config)
	setenv("CURSOR_METER_CACHE_DIR", dirs.Cache)
	return dirs
}
