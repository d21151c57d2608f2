// Package server exposes one bmi.Model over the bmirpc envelope protocol.
// It owns the model for the lifetime of the process: a single mutex
// serializes every dispatch against the model, and the op table binding
// every wire operation to a model method is built, and checked complete,
// before the first request is accepted.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/coastalsim/longshore/bmi"
	"github.com/coastalsim/longshore/bmirpc"
	"github.com/coastalsim/longshore/internal/mapsafe"
)

type opHandler func(ctx context.Context, req bmirpc.Request) (map[string]any, error)

// Service implements bmirpc.ModelServiceServer against a single model.
type Service struct {
	mu    sync.Mutex
	model bmi.Model
	// mesher is non-nil when the model also serves unstructured grids.
	mesher bmi.Mesher

	initialized bool
	finalized   bool

	// pendingForcing holds SetValue overrides received before the model
	// was initialized; they are applied right after a successful
	// initialize.
	pendingForcing map[string][]float64

	handlers map[string]opHandler
	metrics  *Metrics
	log      *slog.Logger
}

var _ bmirpc.ModelServiceServer = (*Service)(nil)

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithMetrics attaches a metrics set the service reports dispatches to.
func WithMetrics(m *Metrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the service logger.
func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) { s.log = log }
}

// NewService binds the op table for model. It fails if any operation the
// wire surface dispatches is left without a handler, so an incomplete
// binding is caught at construction rather than on first use.
func NewService(model bmi.Model, opts ...ServiceOption) (*Service, error) {
	s := &Service{
		model:          model,
		pendingForcing: make(map[string][]float64),
		log:            slog.Default(),
	}
	if mesher, ok := model.(bmi.Mesher); ok {
		s.mesher = mesher
	}
	for _, opt := range opts {
		opt(s)
	}

	s.bindOps()

	for _, op := range bmirpc.Ops {
		if s.handlers[op] == nil {
			return nil, fmt.Errorf("server: op %q has no handler", op)
		}
	}

	return s, nil
}

// Invoke executes one model operation under the model lock.
func (s *Service) Invoke(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := bmirpc.DecodeRequest(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	handler, ok := s.handlers[req.Op]
	if !ok {
		return nil, status.Errorf(codes.Unimplemented, "server: unknown op %q", req.Op)
	}

	start := time.Now()

	s.mu.Lock()
	fields, err := handler(ctx, req)
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.observe(req.Op, status.Code(err), time.Since(start))
	}
	if err != nil {
		return nil, toStatus(err)
	}

	out, err := bmirpc.EncodeResult(fields)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// Run steps the model until it reaches the requested stop time or the end
// of its time horizon, streaming a progress envelope every interval steps.
// The model lock is taken per step so unary requests interleave with a
// running batch.
func (s *Service) Run(in *structpb.Struct, stream grpc.ServerStreamingServer[structpb.Struct]) error {
	params := bmirpc.DecodeParams(in)

	s.mu.Lock()
	if !s.initialized || s.finalized {
		s.mu.Unlock()
		return toStatus(bmi.ErrNotInitialized)
	}
	end := s.model.EndTime()
	s.mu.Unlock()

	until := mapsafe.Get(params, "until", end)
	interval := mapsafe.Get(params, "interval", 1)
	if interval < 1 {
		return status.Error(codes.InvalidArgument, "server: interval must be positive")
	}

	ctx := stream.Context()
	steps := 0
	for {
		if err := ctx.Err(); err != nil {
			return status.FromContextError(err).Err()
		}

		s.mu.Lock()
		if !s.initialized || s.finalized {
			s.mu.Unlock()
			return toStatus(bmi.ErrNotInitialized)
		}
		err := s.model.Update()
		now := s.model.CurrentTime()
		s.mu.Unlock()

		if errors.Is(err, bmi.ErrEndOfModelTime) {
			return s.sendProgress(stream, now, true)
		}
		if err != nil {
			return toStatus(err)
		}
		if s.metrics != nil {
			s.metrics.setModelTime(now)
		}

		if now >= until {
			return s.sendProgress(stream, now, now >= end)
		}

		steps++
		if steps%interval == 0 {
			if err := s.sendProgress(stream, now, false); err != nil {
				return err
			}
		}
	}
}

func (s *Service) sendProgress(stream grpc.ServerStreamingServer[structpb.Struct], now float64, atEnd bool) error {
	out, err := bmirpc.EncodeResult(map[string]any{
		"time":   now,
		"at_end": atEnd,
	})
	if err != nil {
		return status.Error(codes.Internal, err.Error())
	}
	return stream.Send(out)
}

// ApplyForcing overrides input variables by name, as SetValue would. Calls
// arriving before the model is initialized are held and applied right
// after the first successful initialize.
func (s *Service) ApplyForcing(values map[string][]float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finalized {
		return bmi.ErrFinalized
	}
	if !s.initialized {
		for name, vals := range values {
			s.pendingForcing[name] = vals
		}
		s.log.Info("Forcing held until the model is initialized", "vars", len(values))
		return nil
	}

	return s.setForcing(values)
}

// CellCount reports the size of the model's cell grid, or zero before the
// model is initialized.
func (s *Service) CellCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized || s.finalized {
		return 0
	}
	size, err := s.model.GridSize(0)
	if err != nil {
		return 0
	}
	return size
}

// setForcing writes the overrides; the caller holds the lock.
func (s *Service) setForcing(values map[string][]float64) error {
	for name, vals := range values {
		if err := s.model.SetValue(name, vals); err != nil {
			return fmt.Errorf("server: failed to apply forcing for %q: %w", name, err)
		}
		s.log.Info("Applied forcing", "var", name)
	}
	return nil
}

// toStatus maps model sentinel errors onto gRPC status codes.
func toStatus(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bmi.ErrNotInitialized),
		errors.Is(err, bmi.ErrAlreadyInitialized),
		errors.Is(err, bmi.ErrFinalized):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, bmi.ErrEndOfModelTime):
		return status.Error(codes.OutOfRange, err.Error())
	case errors.Is(err, bmi.ErrUnknownVar), errors.Is(err, bmi.ErrUnknownGrid):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, bmi.ErrReadOnlyVar),
		errors.Is(err, bmi.ErrSizeMismatch),
		errors.Is(err, bmi.ErrIndexOutOfRange):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, bmi.ErrNotSupported):
		return status.Error(codes.Unimplemented, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
