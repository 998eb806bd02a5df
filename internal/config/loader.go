package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-ini/ini"
)

// FileName is the name of the configuration file.
const FileName = ".zipcd"

// Loader can be used for loading .zipcd configuration as well as overridden with default settings.
type Loader struct {
	// Profile is the AWS profile to use, taking precedence over bucket-based AWS profile setting.
	Profile string

	cfg           *ini.File
	s3clientCache sync.Map
}

// Load will traverse the directory hierarchy upwards from the current working directory to find the first .zipcd file
// available and load its contents into the Loader.
//
// The name of the .zipcd file is returned. If none is found, the returned name is empty and the Loader has empty
// configuration.
func (l *Loader) Load(ctx context.Context) (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	return l.LoadFrom(ctx, dir)
}

// LoadFrom is a variant of Load that starts the search from the given directory.
func (l *Loader) LoadFrom(ctx context.Context, dir string) (string, error) {
	l.cfg = ini.Empty()

	cur, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		path := filepath.Join(cur, FileName)
		switch fi, err := os.Stat(path); {
		case err == nil && !fi.IsDir():
			if l.cfg, err = ini.Load(path); err != nil {
				l.cfg = ini.Empty()
				return path, err
			}

			return path, nil
		case err == nil, errors.Is(err, os.ErrNotExist):
			parent := filepath.Dir(cur)
			if parent == cur {
				return "", nil
			}

			cur = parent
		default:
			return "", err
		}
	}
}

// LoadProfile is a convenient method to set Loader.Profile then call Load.
func (l *Loader) LoadProfile(ctx context.Context, profile string) (string, error) {
	l.Profile = profile
	return l.Load(ctx)
}

// DefaultLoader is the default Loader instance for package-level methods.
var DefaultLoader = &Loader{cfg: ini.Empty()}

// Load calls Loader.Load on the DefaultLoader instance.
func Load(ctx context.Context) (string, error) {
	return DefaultLoader.Load(ctx)
}

// LoadProfile calls Loader.LoadProfile on the DefaultLoader instance.
func LoadProfile(ctx context.Context, profile string) (string, error) {
	return DefaultLoader.LoadProfile(ctx, profile)
}
