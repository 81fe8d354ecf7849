// Package generation defines the boundary between the application and the
// generative image model. Generator is the port; the Gemini adapter in
// internal/platform/gemini implements it, and tests substitute mocks.
package generation
