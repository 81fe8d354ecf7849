// Package gemini provides an implementation of the generation.Generator interface
// that uses Google's Gemini API to edit images.
//
// This package is an infrastructure adapter: it translates an EditRequest into a
// single GenerateContent call carrying the image as inline data and the prompt as
// text, and turns the first inline image of the response back into a
// generation.Image.
//
// Error handling:
//   - Transient API failures (429, 5xx, transport errors) are retried with
//     exponential backoff up to LLMConfig.MaxRetries times.
//   - Safety blocks map to generation.ErrContentBlocked and a response without an
//     image maps to generation.ErrNoImage; neither is retried.
//   - Context cancellation stops both the in-flight request and any pending
//     retry, and the returned error wraps the context's cancellation cause.
package gemini
