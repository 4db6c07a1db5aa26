package platform

import (
	"github.com/aretw0/cellar/pkg/core"
)

// New wires a complete notebook service over the workspace at uri.
// The URI argument is adapter-specific (a directory path for 'fs').
func New(uri string, opts ...Option) (*core.Service, error) {
	// 1. Initialize environment (path resolution, directories)
	repo, err := Init(uri, opts...)
	if err != nil {
		return nil, err
	}

	// 2. Initialize domain service
	return core.NewService(repo), nil
}
