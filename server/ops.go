package server

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/coastalsim/longshore/bmi"
	"github.com/coastalsim/longshore/bmirpc"
)

// bindOps fills the op table. Every operation the wire surface knows gets
// a handler here; NewService verifies the table against bmirpc.Ops so a
// forgotten binding fails construction.
func (s *Service) bindOps() {
	m := s.model

	s.handlers = map[string]opHandler{
		bmirpc.OpInitialize: func(ctx context.Context, req bmirpc.Request) (map[string]any, error) {
			path, _ := req.String("config")
			if err := m.Initialize(ctx, path); err != nil {
				return nil, err
			}
			s.initialized = true
			if len(s.pendingForcing) > 0 {
				pending := s.pendingForcing
				s.pendingForcing = make(map[string][]float64)
				if err := s.setForcing(pending); err != nil {
					return nil, err
				}
			}
			return map[string]any{}, nil
		},

		bmirpc.OpUpdate: func(_ context.Context, _ bmirpc.Request) (map[string]any, error) {
			return s.advance(m.Update)
		},

		bmirpc.OpUpdateUntil: func(_ context.Context, req bmirpc.Request) (map[string]any, error) {
			t, ok := req.Float("time")
			if !ok {
				return nil, status.Error(codes.InvalidArgument, "update_until needs a time parameter")
			}
			return s.advance(func() error { return m.UpdateUntil(t) })
		},

		bmirpc.OpFinalize: func(_ context.Context, _ bmirpc.Request) (map[string]any, error) {
			if err := m.Finalize(); err != nil {
				return nil, err
			}
			s.finalized = true
			return map[string]any{}, nil
		},

		bmirpc.OpGetComponentName: func(_ context.Context, _ bmirpc.Request) (map[string]any, error) {
			return map[string]any{"name": m.ComponentName()}, nil
		},
		bmirpc.OpGetInputItemCount: func(_ context.Context, _ bmirpc.Request) (map[string]any, error) {
			return map[string]any{"count": len(m.InputVarNames())}, nil
		},
		bmirpc.OpGetOutputItemCount: func(_ context.Context, _ bmirpc.Request) (map[string]any, error) {
			return map[string]any{"count": len(m.OutputVarNames())}, nil
		},
		bmirpc.OpGetInputVarNames: func(_ context.Context, _ bmirpc.Request) (map[string]any, error) {
			return map[string]any{"names": m.InputVarNames()}, nil
		},
		bmirpc.OpGetOutputVarNames: func(_ context.Context, _ bmirpc.Request) (map[string]any, error) {
			return map[string]any{"names": m.OutputVarNames()}, nil
		},

		bmirpc.OpGetVarGrid: s.varOp(func(name string) (any, error) { return m.VarGrid(name) }, "grid"),
		bmirpc.OpGetVarType: s.varOp(func(name string) (any, error) {
			t, err := m.VarType(name)
			return string(t), err
		}, "type"),
		bmirpc.OpGetVarUnits:    s.varOp(func(name string) (any, error) { return m.VarUnits(name) }, "units"),
		bmirpc.OpGetVarItemsize: s.varOp(func(name string) (any, error) { return m.VarItemSize(name) }, "itemsize"),
		bmirpc.OpGetVarNBytes:   s.varOp(func(name string) (any, error) { return m.VarNBytes(name) }, "nbytes"),
		bmirpc.OpGetVarLocation: s.varOp(func(name string) (any, error) {
			l, err := m.VarLocation(name)
			return string(l), err
		}, "location"),

		bmirpc.OpGetCurrentTime: func(_ context.Context, _ bmirpc.Request) (map[string]any, error) {
			return map[string]any{"time": m.CurrentTime()}, nil
		},
		bmirpc.OpGetStartTime: func(_ context.Context, _ bmirpc.Request) (map[string]any, error) {
			return map[string]any{"time": m.StartTime()}, nil
		},
		bmirpc.OpGetEndTime: func(_ context.Context, _ bmirpc.Request) (map[string]any, error) {
			return map[string]any{"time": m.EndTime()}, nil
		},
		bmirpc.OpGetTimeUnits: func(_ context.Context, _ bmirpc.Request) (map[string]any, error) {
			return map[string]any{"units": m.TimeUnits()}, nil
		},
		bmirpc.OpGetTimeStep: func(_ context.Context, _ bmirpc.Request) (map[string]any, error) {
			return map[string]any{"time_step": m.TimeStep()}, nil
		},

		bmirpc.OpGetValue: func(_ context.Context, req bmirpc.Request) (map[string]any, error) {
			name, ok := req.String("name")
			if !ok {
				return nil, status.Error(codes.InvalidArgument, "get_value needs a name parameter")
			}
			grid, err := m.VarGrid(name)
			if err != nil {
				return nil, err
			}
			size, err := m.GridSize(grid)
			if err != nil {
				return nil, err
			}
			dst := make([]float64, size)
			if err := m.Value(name, dst); err != nil {
				return nil, err
			}
			return map[string]any{"values": dst}, nil
		},

		// Pointer access has no wire representation; bound to a defined
		// answer rather than left unbound.
		bmirpc.OpGetValuePtr: func(_ context.Context, _ bmirpc.Request) (map[string]any, error) {
			return nil, status.Error(codes.Unimplemented, "get_value_ptr is not available over the wire")
		},

		bmirpc.OpGetValueAtIndices: func(_ context.Context, req bmirpc.Request) (map[string]any, error) {
			name, ok := req.String("name")
			if !ok {
				return nil, status.Error(codes.InvalidArgument, "get_value_at_indices needs a name parameter")
			}
			indices, ok := req.Ints("indices")
			if !ok {
				return nil, status.Error(codes.InvalidArgument, "get_value_at_indices needs an indices parameter")
			}
			dst := make([]float64, len(indices))
			if err := m.ValueAtIndices(name, dst, indices); err != nil {
				return nil, err
			}
			return map[string]any{"values": dst}, nil
		},

		bmirpc.OpSetValue: func(_ context.Context, req bmirpc.Request) (map[string]any, error) {
			name, ok := req.String("name")
			if !ok {
				return nil, status.Error(codes.InvalidArgument, "set_value needs a name parameter")
			}
			values, ok := req.Floats("values")
			if !ok {
				return nil, status.Error(codes.InvalidArgument, "set_value needs a values parameter")
			}
			if err := m.SetValue(name, values); err != nil {
				return nil, err
			}
			return map[string]any{}, nil
		},

		bmirpc.OpSetValueAtIndices: func(_ context.Context, req bmirpc.Request) (map[string]any, error) {
			name, ok := req.String("name")
			if !ok {
				return nil, status.Error(codes.InvalidArgument, "set_value_at_indices needs a name parameter")
			}
			indices, ok := req.Ints("indices")
			if !ok {
				return nil, status.Error(codes.InvalidArgument, "set_value_at_indices needs an indices parameter")
			}
			values, ok := req.Floats("values")
			if !ok {
				return nil, status.Error(codes.InvalidArgument, "set_value_at_indices needs a values parameter")
			}
			if err := m.SetValueAtIndices(name, indices, values); err != nil {
				return nil, err
			}
			return map[string]any{}, nil
		},

		bmirpc.OpGetGridRank: s.gridOp(func(g int) (any, error) { return m.GridRank(g) }, "rank"),
		bmirpc.OpGetGridSize: s.gridOp(func(g int) (any, error) { return m.GridSize(g) }, "size"),
		bmirpc.OpGetGridType: s.gridOp(func(g int) (any, error) {
			t, err := m.GridType(g)
			return string(t), err
		}, "type"),
		bmirpc.OpGetGridShape:   s.gridOp(func(g int) (any, error) { return m.GridShape(g) }, "shape"),
		bmirpc.OpGetGridSpacing: s.gridOp(func(g int) (any, error) { return m.GridSpacing(g) }, "spacing"),
		bmirpc.OpGetGridOrigin:  s.gridOp(func(g int) (any, error) { return m.GridOrigin(g) }, "origin"),

		bmirpc.OpGetGridX: s.meshOp(func(mm bmi.Mesher, g int) (any, error) { return mm.GridX(g) }, "values"),
		bmirpc.OpGetGridY: s.meshOp(func(mm bmi.Mesher, g int) (any, error) { return mm.GridY(g) }, "values"),
		bmirpc.OpGetGridZ: s.meshOp(func(mm bmi.Mesher, g int) (any, error) { return mm.GridZ(g) }, "values"),

		bmirpc.OpGetGridNodeCount: s.meshOp(func(mm bmi.Mesher, g int) (any, error) { return mm.GridNodeCount(g) }, "count"),
		bmirpc.OpGetGridEdgeCount: s.meshOp(func(mm bmi.Mesher, g int) (any, error) { return mm.GridEdgeCount(g) }, "count"),
		bmirpc.OpGetGridFaceCount: s.meshOp(func(mm bmi.Mesher, g int) (any, error) { return mm.GridFaceCount(g) }, "count"),

		bmirpc.OpGetGridEdgeNodes:    s.meshOp(func(mm bmi.Mesher, g int) (any, error) { return mm.GridEdgeNodes(g) }, "values"),
		bmirpc.OpGetGridFaceEdges:    s.meshOp(func(mm bmi.Mesher, g int) (any, error) { return mm.GridFaceEdges(g) }, "values"),
		bmirpc.OpGetGridFaceNodes:    s.meshOp(func(mm bmi.Mesher, g int) (any, error) { return mm.GridFaceNodes(g) }, "values"),
		bmirpc.OpGetGridNodesPerFace: s.meshOp(func(mm bmi.Mesher, g int) (any, error) { return mm.GridNodesPerFace(g) }, "values"),
	}
}

// advance runs a stepping call and folds the end-of-run indicator into an
// at_end result instead of an error.
func (s *Service) advance(step func() error) (map[string]any, error) {
	err := step()
	atEnd := false
	if err != nil {
		if !errors.Is(err, bmi.ErrEndOfModelTime) {
			return nil, err
		}
		atEnd = true
	}

	now := s.model.CurrentTime()
	if s.metrics != nil {
		s.metrics.setModelTime(now)
	}
	return map[string]any{"time": now, "at_end": atEnd}, nil
}

// varOp builds a handler for an operation taking a variable name and
// returning a single field.
func (s *Service) varOp(get func(name string) (any, error), field string) opHandler {
	return func(_ context.Context, req bmirpc.Request) (map[string]any, error) {
		name, ok := req.String("name")
		if !ok {
			return nil, status.Error(codes.InvalidArgument, "operation needs a name parameter")
		}
		v, err := get(name)
		if err != nil {
			return nil, err
		}
		return map[string]any{field: v}, nil
	}
}

// gridOp builds a handler for an operation taking a grid identifier and
// returning a single field.
func (s *Service) gridOp(get func(grid int) (any, error), field string) opHandler {
	return func(_ context.Context, req bmirpc.Request) (map[string]any, error) {
		grid, ok := req.Int("grid")
		if !ok {
			return nil, status.Error(codes.InvalidArgument, "operation needs a grid parameter")
		}
		v, err := get(grid)
		if err != nil {
			return nil, err
		}
		return map[string]any{field: v}, nil
	}
}

// meshOp builds a handler for an unstructured-grid operation. Models that
// do not implement bmi.Mesher answer Unimplemented.
func (s *Service) meshOp(get func(m bmi.Mesher, grid int) (any, error), field string) opHandler {
	return func(_ context.Context, req bmirpc.Request) (map[string]any, error) {
		if s.mesher == nil {
			return nil, status.Error(codes.Unimplemented, "model has no unstructured grids")
		}
		grid, ok := req.Int("grid")
		if !ok {
			return nil, status.Error(codes.InvalidArgument, "operation needs a grid parameter")
		}
		v, err := get(s.mesher, grid)
		if err != nil {
			return nil, err
		}
		return map[string]any{field: v}, nil
	}
}
