package editor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	rgerrors "github.com/matzehuels/roomgraph/pkg/errors"
	"github.com/matzehuels/roomgraph/pkg/observability"
	"github.com/matzehuels/roomgraph/pkg/roomgraph"
	"github.com/matzehuels/roomgraph/pkg/roomtype"
	"github.com/matzehuels/roomgraph/pkg/store"
)

// Service serializes edits to the graphs in a store.
type Service struct {
	mu                sync.Mutex
	store             store.Store
	types             *roomtype.Registry
	maxChildCorridors int
	newID             func() string
	logger            *log.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithMaxChildCorridors sets the branching limit for graphs created by the
// service. Stored graphs keep the limit they were saved with.
func WithMaxChildCorridors(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxChildCorridors = n
		}
	}
}

// WithIDGenerator replaces UUID node IDs, mainly for tests.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

// New creates a service over st.
// If types is nil, the built-in catalog is used.
// If logger is nil, log.Default() is used.
func New(st store.Store, types *roomtype.Registry, logger *log.Logger, opts ...Option) *Service {
	if types == nil {
		types = roomtype.Default()
	}
	if logger == nil {
		logger = log.Default()
	}
	s := &Service{
		store:             st,
		types:             types,
		maxChildCorridors: roomgraph.DefaultMaxChildCorridors,
		logger:            logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Types returns the registry graphs are restored against.
func (s *Service) Types() *roomtype.Registry { return s.types }

func (s *Service) graphOptions() []roomgraph.Option {
	opts := []roomgraph.Option{roomgraph.WithMaxChildCorridors(s.maxChildCorridors)}
	if s.newID != nil {
		opts = append(opts, roomgraph.WithIDGenerator(s.newID))
	}
	return opts
}

// load restores a stored graph. Callers hold s.mu.
func (s *Service) load(ctx context.Context, name string) (*roomgraph.Graph, error) {
	snap, err := s.store.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	g, err := roomgraph.Restore(s.types, snap, s.graphOptions()...)
	if err != nil {
		return nil, fmt.Errorf("graph %s: %w", name, err)
	}
	return g, nil
}

// save validates g and writes it. Callers hold s.mu.
func (s *Service) save(ctx context.Context, name string, g *roomgraph.Graph) error {
	if err := g.Validate(); err != nil {
		return fmt.Errorf("graph %s: %w", name, err)
	}
	return s.store.Save(ctx, name, g.Snapshot())
}

// =============================================================================
// Graph lifecycle
// =============================================================================

// Create stores a new empty graph under name.
func (s *Service) Create(ctx context.Context, name string) error {
	return s.track(ctx, name, "create", func() error {
		if err := rgerrors.ValidateGraphName(name); err != nil {
			return err
		}
		_, err := s.store.Load(ctx, name)
		switch {
		case err == nil:
			return rgerrors.New(rgerrors.ErrCodeGraphExists, "graph %s already exists", name)
		case !errors.Is(err, store.ErrNotFound):
			return err
		}
		return s.save(ctx, name, roomgraph.New(s.types, s.graphOptions()...))
	})
}

// Put replaces the graph stored under name with snap after restoring it,
// so a corrupted document is rejected without touching the store.
func (s *Service) Put(ctx context.Context, name string, snap roomgraph.Snapshot) error {
	return s.track(ctx, name, "put", func() error {
		if err := rgerrors.ValidateGraphName(name); err != nil {
			return err
		}
		g, err := roomgraph.Restore(s.types, snap, s.graphOptions()...)
		if err != nil {
			return err
		}
		return s.save(ctx, name, g)
	})
}

// Get returns the stored snapshot after checking that it restores cleanly.
func (s *Service) Get(ctx context.Context, name string) (roomgraph.Snapshot, error) {
	var snap roomgraph.Snapshot
	err := s.View(ctx, name, func(g *roomgraph.Graph) error {
		snap = g.Snapshot()
		return nil
	})
	return snap, err
}

// List returns the names of all stored graphs.
func (s *Service) List(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	names, err := s.store.List(ctx)
	if err != nil {
		return nil, Classify(err)
	}
	return names, nil
}

// Remove deletes the graph stored under name.
func (s *Service) Remove(ctx context.Context, name string) error {
	return s.track(ctx, name, "remove", func() error {
		return s.store.Delete(ctx, name)
	})
}

// View loads the named graph and passes it to fn. Changes fn makes to the
// graph are discarded.
func (s *Service) View(ctx context.Context, name string, fn func(*roomgraph.Graph) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, err := s.load(ctx, name)
	if err != nil {
		return Classify(err)
	}
	return Classify(fn(g))
}

// Update loads the named graph, applies fn and saves the result. Nothing
// is saved when fn fails. op names the edit for logs and metrics.
func (s *Service) Update(ctx context.Context, name, op string, fn func(*roomgraph.Graph) error) error {
	return s.track(ctx, name, op, func() error {
		g, err := s.load(ctx, name)
		if err != nil {
			return err
		}
		if err := fn(g); err != nil {
			return err
		}
		return s.save(ctx, name, g)
	})
}

// track runs fn under the lock, classifies its error and reports the
// outcome to the log and the edit hooks.
func (s *Service) track(ctx context.Context, name, op string, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	err := Classify(fn())
	duration := time.Since(start)

	observability.Edit().OnEdit(ctx, name, op, duration, err)
	if reason, ok := roomgraph.ReasonOf(err); ok {
		observability.Edit().OnDenied(ctx, name, reason.String())
	}
	if err != nil {
		s.logger.Debug("edit failed", "graph", name, "op", op, "code", rgerrors.GetCode(err), "err", err)
		return err
	}
	s.logger.Debug("edit applied", "graph", name, "op", op, "duration", duration)
	return nil
}

// =============================================================================
// Node and edge edits
// =============================================================================

// AddNode creates a node of the named type ("" selects the none type) and
// returns its ID. In an empty graph the entrance is created first, unless
// the requested node is the entrance itself.
func (s *Service) AddNode(ctx context.Context, name, typeName string) (string, error) {
	var id string
	err := s.Update(ctx, name, "add_node", func(g *roomgraph.Graph) error {
		t, err := s.lookupType(typeName)
		if err != nil {
			return err
		}
		if g.Len() == 0 && !t.IsEntrance {
			entrance, err := g.CreateNode(s.types.Entrance())
			if err != nil {
				return err
			}
			s.logger.Debug("created entrance", "graph", name, "node", entrance)
		}
		id, err = g.CreateNode(t)
		return err
	})
	return id, err
}

// SetNodeType reclassifies a node and returns the edges the change severed.
func (s *Service) SetNodeType(ctx context.Context, name, id, typeName string) ([]roomgraph.Edge, error) {
	var severed []roomgraph.Edge
	err := s.Update(ctx, name, "set_type", func(g *roomgraph.Graph) error {
		t, err := s.lookupType(typeName)
		if err != nil {
			return err
		}
		severed, err = g.SetType(id, t)
		return err
	})
	if err == nil && len(severed) > 0 {
		observability.Edit().OnSevered(ctx, name, len(severed))
		s.logger.Info("type change severed edges", "graph", name, "node", id, "count", len(severed))
	}
	return severed, err
}

// SetPresentation replaces a node's presentation blob.
func (s *Service) SetPresentation(ctx context.Context, name, id string, data json.RawMessage) error {
	if len(data) > 0 && !json.Valid(data) {
		return rgerrors.New(rgerrors.ErrCodeInvalidInput, "presentation for %s is not valid JSON", id)
	}
	return s.Update(ctx, name, "set_presentation", func(g *roomgraph.Graph) error {
		n, ok := g.Node(id)
		if !ok {
			return fmt.Errorf("node %s: %w", id, roomgraph.ErrUnknownNode)
		}
		n.Presentation = append(json.RawMessage(nil), data...)
		return nil
	})
}

// DeleteNode removes a node and its edges. The entrance cannot be deleted.
func (s *Service) DeleteNode(ctx context.Context, name, id string) error {
	return s.Update(ctx, name, "delete_node", func(g *roomgraph.Graph) error {
		t, ok := g.TypeOf(id)
		if !ok {
			return fmt.Errorf("node %s: %w", id, roomgraph.ErrUnknownNode)
		}
		if t.IsEntrance {
			return rgerrors.New(rgerrors.ErrCodeEntranceProtected, "the entrance %s cannot be deleted", id)
		}
		return g.DeleteNode(id)
	})
}

// DeleteNodes removes every listed node except the entrance and returns
// how many were deleted. Unknown IDs are ignored.
func (s *Service) DeleteNodes(ctx context.Context, name string, ids []string) (int, error) {
	var n int
	err := s.Update(ctx, name, "delete_nodes", func(g *roomgraph.Graph) error {
		var keep []string
		for _, id := range ids {
			if t, ok := g.TypeOf(id); ok && !t.IsEntrance {
				keep = append(keep, id)
			}
		}
		n = g.DeleteNodes(keep)
		return nil
	})
	return n, err
}

// Connect adds the edge parent → child if the validity engine allows it.
func (s *Service) Connect(ctx context.Context, name, parentID, childID string) error {
	err := s.Update(ctx, name, "connect", func(g *roomgraph.Graph) error {
		return g.Connect(parentID, childID)
	})
	if reason, ok := roomgraph.ReasonOf(err); ok {
		s.logger.Debug("connection denied", "graph", name, "parent", parentID, "child", childID, "reason", reason)
	}
	return err
}

// Disconnect removes the edge parent → child and reports whether it existed.
func (s *Service) Disconnect(ctx context.Context, name, parentID, childID string) (bool, error) {
	var removed bool
	err := s.Update(ctx, name, "disconnect", func(g *roomgraph.Graph) error {
		removed = g.Disconnect(parentID, childID)
		return nil
	})
	return removed, err
}

// Unlink severs every edge between two of the listed nodes and returns how
// many edges were removed.
func (s *Service) Unlink(ctx context.Context, name string, ids []string) (int, error) {
	var n int
	err := s.Update(ctx, name, "unlink", func(g *roomgraph.Graph) error {
		n = g.DeleteLinksAmong(ids)
		return nil
	})
	return n, err
}

func (s *Service) lookupType(name string) (*roomtype.Type, error) {
	if name == "" {
		return s.types.None(), nil
	}
	t, ok := s.types.ByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", roomgraph.ErrUnknownType, name)
	}
	return t, nil
}
