package mocks

import (
	"context"
	"sync"

	"github.com/nathfavour/plantainbanana/internal/generation"
)

// MockGenerator implements generation.Generator for testing
type MockGenerator struct {
	// EditImageFn allows test cases to mock the EditImage behavior
	EditImageFn func(ctx context.Context, req generation.EditRequest) (*generation.Image, error)

	// Default response values
	Image *generation.Image
	Err   error

	// Call tracking for verification
	EditImageCalls struct {
		// mu protects the call tracking state for concurrent test cases
		mu sync.Mutex

		// Count tracks how many times EditImage was called
		Count int

		// Requests contains all requests passed to EditImage calls
		Requests []generation.EditRequest

		// Contexts contains all contexts passed to EditImage calls
		Contexts []context.Context
	}
}

// EditImage implements the generation.Generator interface
func (m *MockGenerator) EditImage(ctx context.Context, req generation.EditRequest) (*generation.Image, error) {
	m.EditImageCalls.mu.Lock()
	m.EditImageCalls.Count++
	m.EditImageCalls.Requests = append(m.EditImageCalls.Requests, req)
	m.EditImageCalls.Contexts = append(m.EditImageCalls.Contexts, ctx)
	m.EditImageCalls.mu.Unlock()

	if m.EditImageFn != nil {
		return m.EditImageFn(ctx, req)
	}

	return m.Image, m.Err
}

// CallCount returns the number of EditImage calls so far.
func (m *MockGenerator) CallCount() int {
	m.EditImageCalls.mu.Lock()
	defer m.EditImageCalls.mu.Unlock()
	return m.EditImageCalls.Count
}

// LastRequest returns the most recent request, or the zero value if
// EditImage has not been called.
func (m *MockGenerator) LastRequest() generation.EditRequest {
	m.EditImageCalls.mu.Lock()
	defer m.EditImageCalls.mu.Unlock()
	if len(m.EditImageCalls.Requests) == 0 {
		return generation.EditRequest{}
	}
	return m.EditImageCalls.Requests[len(m.EditImageCalls.Requests)-1]
}

// Reset clears all call tracking data
func (m *MockGenerator) Reset() {
	m.EditImageCalls.mu.Lock()
	defer m.EditImageCalls.mu.Unlock()
	m.EditImageCalls.Count = 0
	m.EditImageCalls.Requests = nil
	m.EditImageCalls.Contexts = nil
}
