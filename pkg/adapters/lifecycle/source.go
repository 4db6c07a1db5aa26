package lifecycle

import (
	"context"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/cellar/pkg/core"
)

type workspaceSource struct {
	backlog []core.Event
	events  <-chan core.Event
	out     chan lifecycle.Event
}

// NewSource creates a lifecycle.Source that emits workspace notebook
// events. Backlog events, usually the result of a reconciliation pass,
// are replayed before the live feed so consumers see a single ordered
// stream instead of two phases.
func NewSource(backlog []core.Event, events <-chan core.Event) lifecycle.Source {
	return &workspaceSource{
		backlog: backlog,
		events:  events,
		out:     make(chan lifecycle.Event),
	}
}

func (s *workspaceSource) Events() <-chan lifecycle.Event {
	return s.out
}

func (s *workspaceSource) Start(ctx context.Context) error {
	// The pump runs under lifecycle.Go so the bridge itself is tracked
	// and stops with the context.
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for _, e := range s.backlog {
			select {
			case s.out <- e:
			case <-ctx.Done():
				return nil
			}
		}
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-s.events:
				if !ok {
					return nil
				}
				// core.Event implements lifecycle.Event (has String())
				select {
				case s.out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}
