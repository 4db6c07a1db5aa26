package core

import (
	"context"
	"errors"
)

// Service handles the business logic for notebooks.
type Service struct {
	repo            Repository
	eventBufferSize int
}

// defaultEventBuffer is the slack between the repository's event emitter
// and a watch consumer; see Watch.
const defaultEventBuffer = 64

// NewService creates a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, eventBufferSize: defaultEventBuffer}
}

// SaveNotebook persists a notebook after structural validation.
func (s *Service) SaveNotebook(ctx context.Context, id string, nb Notebook) error {
	if id == "" {
		return errors.New("notebook ID cannot be empty")
	}
	if err := nb.Validate(); err != nil {
		return err
	}
	return s.repo.Save(ctx, id, nb)
}

// GetNotebook retrieves a notebook.
func (s *Service) GetNotebook(ctx context.Context, id string) (Notebook, error) {
	if id == "" {
		return Notebook{}, errors.New("notebook ID cannot be empty")
	}
	return s.repo.Get(ctx, id)
}

// ListNotebooks returns summaries for every notebook in the workspace.
func (s *Service) ListNotebooks(ctx context.Context) ([]Info, error) {
	return s.repo.List(ctx)
}

// DeleteNotebook removes a notebook.
func (s *Service) DeleteNotebook(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("notebook ID cannot be empty")
	}
	return s.repo.Delete(ctx, id)
}

// Watch observes changes in the repository if supported. Events are
// re-buffered here so a slow consumer does not stall the repository's
// emitter.
func (s *Service) Watch(ctx context.Context, pattern string) (<-chan Event, error) {
	w, ok := s.repo.(Watchable)
	if !ok {
		return nil, errors.New("repository does not support watching")
	}

	upstream, err := w.Watch(ctx, pattern)
	if err != nil {
		return nil, err
	}

	out := make(chan Event, s.eventBufferSize)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-upstream:
				if !ok {
					return
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Reconcile surfaces changes made to the repository while nothing was
// watching, if the repository supports it.
func (s *Service) Reconcile(ctx context.Context) ([]Event, error) {
	r, ok := s.repo.(Reconcilable)
	if !ok {
		return nil, errors.New("repository does not support reconciliation")
	}
	return r.Reconcile(ctx)
}
