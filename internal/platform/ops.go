package platform

import (
	"context"
	"fmt"

	"github.com/aretw0/cellar/pkg/adapters/fs"
	"github.com/aretw0/cellar/pkg/core"
)

// Init initializes a notebook workspace based on the provided configuration.
// The 'uri' argument is adapter-specific (a directory path for 'fs').
//
// It returns the configured core.Repository.
func Init(uri string, opts ...Option) (core.Repository, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	// 1. Check for injected repository
	if o.repository != nil {
		return o.repository, nil
	}

	// 2. Initialize based on Adapter
	var repo core.Repository
	var err error

	switch o.adapter {
	case "fs":
		repo, err = initFS(uri, o)
	default:
		return nil, fmt.Errorf("unknown adapter: %s", o.adapter)
	}

	if err != nil {
		return nil, err
	}

	// 3. Run Initialization
	if err := repo.Initialize(context.Background()); err != nil {
		return nil, err
	}

	return repo, nil
}

// initFS handles the initialization logic for the filesystem adapter.
func initFS(path string, o *options) (core.Repository, error) {
	mustExist, _ := o.config["must_exist"].(bool)
	readOnly, _ := o.config["read_only"].(bool)
	tempDir, _ := o.config["temp_dir"].(bool)
	version, _ := o.config["version"].(string)
	systemDir, _ := o.config["system_dir"].(string)
	eventBuffer, _ := o.config["event_buffer"].(int)

	// Default to true (safe) if not present.
	devSafety := true
	if val, ok := o.config["dev_safety"].(bool); ok {
		devSafety = val
	}

	// Bypass the sandbox if:
	// 1. ReadOnly is active (inherently safe)
	// 2. User explicitly disabled DevSafety
	bypassSafety := readOnly || !devSafety

	useTemp := tempDir || (IsDevRun() && !bypassSafety)
	resolvedPath := ResolveWorkspacePath(path, useTemp)

	if IsDevRun() && o.logger != nil {
		if bypassSafety {
			if readOnly {
				o.logger.Debug("running in READ-ONLY mode (bypassing dev sandbox)", "path", resolvedPath)
			} else {
				o.logger.Warn("running in UNSAFE mode (bypassing dev sandbox)", "path", resolvedPath)
			}
		} else {
			o.logger.Debug("running in SAFE mode (dev sandbox enabled)", "path", resolvedPath)
		}
	}

	if o.logger != nil && useTemp {
		o.logger.Warn("running in SAFE MODE (Dev/Test)", "original_path", path, "resolved_path", resolvedPath)
	}

	repo := fs.NewRepository(fs.Config{
		Path:        resolvedPath,
		MustExist:   mustExist,
		ReadOnly:    readOnly,
		Version:     version,
		SystemDir:   systemDir,
		EventBuffer: eventBuffer,
		Logger:      o.logger,
	})

	// Register Custom Serializers
	for ext, s := range o.serializers {
		serializer, ok := s.(fs.Serializer)
		if !ok {
			if o.logger != nil {
				o.logger.Warn("invalid serializer type ignored", "ext", ext, "expected", "fs.Serializer")
			}
			return nil, fmt.Errorf("serializer for %s must implement fs.Serializer", ext)
		}
		repo.RegisterSerializer(ext, serializer)
	}

	return repo, nil
}
