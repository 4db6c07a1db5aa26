package core

import (
	"github.com/aretw0/introspection"
)

// ServiceState exposes internal state for observability.
type ServiceState struct {
	RepositoryType  string `json:"repository_type"`
	Watchable       bool   `json:"watchable"`
	EventBufferSize int    `json:"event_buffer_size"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	repoType := "unknown"
	if s.repo != nil {
		repoType = "repository"
		// Prefer the component type when the repository exposes one.
		if comp, ok := s.repo.(introspection.Component); ok {
			repoType = comp.ComponentType()
		}
	}
	_, watchable := s.repo.(Watchable)

	return ServiceState{
		RepositoryType:  repoType,
		Watchable:       watchable,
		EventBufferSize: s.eventBufferSize,
	}
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "service"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
