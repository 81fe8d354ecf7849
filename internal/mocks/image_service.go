package mocks

import (
	"context"
	"sync"

	"github.com/nathfavour/plantainbanana/internal/gate"
	"github.com/nathfavour/plantainbanana/internal/generation"
	"github.com/nathfavour/plantainbanana/internal/service"
)

// MockImageService implements service.ImageService for testing
type MockImageService struct {
	GenerateFn     func(ctx context.Context, req generation.EditRequest, opts ...gate.Option) (*generation.Image, error)
	TryGenerateFn  func(ctx context.Context, req generation.EditRequest, opts ...gate.Option) (*generation.Image, error)
	AutoSmileFn    func(ctx context.Context, upload service.Upload, opts ...gate.Option) (*service.EditResult, error)
	CancelQueuedFn func(reason string) int
	StatusFn       func() gate.Status

	// Default response values
	Image       *generation.Image
	SmileResult *service.EditResult
	Cancelled   int
	GateStatus  gate.Status
	Err         error

	mu sync.Mutex

	// Call tracking for verification
	GenerateRequests    []generation.EditRequest
	TryGenerateRequests []generation.EditRequest
	SmileUploads        []service.Upload
	CancelReasons       []string

	// Options records the resolved gate options of every Generate,
	// TryGenerate and AutoSmile call.
	Options []gate.Options
}

// Generate implements the service.ImageService interface
func (m *MockImageService) Generate(
	ctx context.Context,
	req generation.EditRequest,
	opts ...gate.Option,
) (*generation.Image, error) {
	m.mu.Lock()
	m.GenerateRequests = append(m.GenerateRequests, req)
	m.Options = append(m.Options, resolve(opts))
	m.mu.Unlock()

	if m.GenerateFn != nil {
		return m.GenerateFn(ctx, req, opts...)
	}
	return m.Image, m.Err
}

// TryGenerate implements the service.ImageService interface
func (m *MockImageService) TryGenerate(
	ctx context.Context,
	req generation.EditRequest,
	opts ...gate.Option,
) (*generation.Image, error) {
	m.mu.Lock()
	m.TryGenerateRequests = append(m.TryGenerateRequests, req)
	m.Options = append(m.Options, resolve(opts))
	m.mu.Unlock()

	if m.TryGenerateFn != nil {
		return m.TryGenerateFn(ctx, req, opts...)
	}
	return m.Image, m.Err
}

// AutoSmile implements the service.ImageService interface
func (m *MockImageService) AutoSmile(
	ctx context.Context,
	upload service.Upload,
	opts ...gate.Option,
) (*service.EditResult, error) {
	m.mu.Lock()
	m.SmileUploads = append(m.SmileUploads, upload)
	m.Options = append(m.Options, resolve(opts))
	m.mu.Unlock()

	if m.AutoSmileFn != nil {
		return m.AutoSmileFn(ctx, upload, opts...)
	}
	return m.SmileResult, m.Err
}

// CancelQueued implements the service.ImageService interface
func (m *MockImageService) CancelQueued(reason string) int {
	m.mu.Lock()
	m.CancelReasons = append(m.CancelReasons, reason)
	m.mu.Unlock()

	if m.CancelQueuedFn != nil {
		return m.CancelQueuedFn(reason)
	}
	return m.Cancelled
}

// Status implements the service.ImageService interface
func (m *MockImageService) Status() gate.Status {
	if m.StatusFn != nil {
		return m.StatusFn()
	}
	return m.GateStatus
}

// LastOptions returns the gate options of the most recent call.
func (m *MockImageService) LastOptions() gate.Options {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Options) == 0 {
		return gate.Options{}
	}
	return m.Options[len(m.Options)-1]
}

func resolve(opts []gate.Option) gate.Options {
	var o gate.Options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
