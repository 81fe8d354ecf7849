// Package mocks provides centralized mock implementations for testing.
//
// Each mock is a struct with a function field per interface method, default
// return values used when the function field is nil, and call tracking
// guarded by a mutex so mocks can be shared across goroutines.
//
// Usage:
//
//	import "github.com/nathfavour/plantainbanana/internal/mocks"
//
//	func TestSomething(t *testing.T) {
//	    gen := &mocks.MockGenerator{
//	        EditImageFn: func(ctx context.Context, req generation.EditRequest) (*generation.Image, error) {
//	            return &generation.Image{Data: []byte("edited"), MIMEType: "image/png"}, nil
//	        },
//	    }
//
//	    // Use the mock in your test...
//	}
package mocks
