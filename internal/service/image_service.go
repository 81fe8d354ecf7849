package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nathfavour/plantainbanana/internal/gate"
	"github.com/nathfavour/plantainbanana/internal/generation"
	"github.com/nathfavour/plantainbanana/internal/imaging"
)

// SmilePrompt is the instruction sent for the auto-smile action.
const SmilePrompt = "Make the subject smile naturally, preserving identity."

// Upload is an image file received from a client.
type Upload struct {
	Name     string
	Data     []byte
	MIMEType string
}

// EditResult is an edited image in the forms the client consumes.
type EditResult struct {
	Image    generation.Image
	DataURL  string
	Filename string
}

// ImageService provides image editing operations serialized through the task gate.
type ImageService interface {
	// Generate waits for the gate and edits the image. The gate's default
	// deadline applies unless opts override it.
	Generate(ctx context.Context, req generation.EditRequest, opts ...gate.Option) (*generation.Image, error)

	// TryGenerate edits the image only if no other generation is running;
	// otherwise it returns gate.ErrGateBusy without queueing.
	TryGenerate(ctx context.Context, req generation.EditRequest, opts ...gate.Option) (*generation.Image, error)

	// AutoSmile applies SmilePrompt to the upload.
	AutoSmile(ctx context.Context, upload Upload, opts ...gate.Option) (*EditResult, error)

	// CancelQueued drops every queued generation and returns how many were
	// dropped. The running generation is not affected.
	CancelQueued(reason string) int

	// Status reports whether a generation is running and how many are queued.
	Status() gate.Status
}

// imageServiceImpl implements the ImageService interface
type imageServiceImpl struct {
	gate      *gate.Gate
	generator generation.Generator
	logger    *slog.Logger
}

// NewImageService creates a new ImageService.
// It returns an error if any of the required dependencies are nil.
func NewImageService(g *gate.Gate, generator generation.Generator, logger *slog.Logger) (ImageService, error) {
	if g == nil {
		return nil, errors.New("gate cannot be nil")
	}
	if generator == nil {
		return nil, errors.New("generator cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &imageServiceImpl{
		gate:      g,
		generator: generator,
		logger:    logger.With("component", "image_service"),
	}, nil
}

// Generate implements ImageService.
func (s *imageServiceImpl) Generate(
	ctx context.Context,
	req generation.EditRequest,
	opts ...gate.Option,
) (*generation.Image, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "generation requested",
		"queued", s.gate.QueueLen(),
		"busy", s.gate.Busy())

	img, err := gate.RunExclusive(ctx, s.gate, s.editWork(req), opts...)
	if err != nil {
		return nil, NewImageServiceError("generate", "image generation failed", err)
	}
	return img, nil
}

// TryGenerate implements ImageService.
func (s *imageServiceImpl) TryGenerate(
	ctx context.Context,
	req generation.EditRequest,
	opts ...gate.Option,
) (*generation.Image, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	img, ran, err := gate.TryRunExclusive(ctx, s.gate, s.editWork(req), opts...)
	if !ran {
		s.logger.DebugContext(ctx, "generation skipped, gate busy")
		return nil, gate.ErrGateBusy
	}
	if err != nil {
		return nil, NewImageServiceError("try_generate", "image generation failed", err)
	}
	return img, nil
}

// AutoSmile implements ImageService.
func (s *imageServiceImpl) AutoSmile(ctx context.Context, upload Upload, opts ...gate.Option) (*EditResult, error) {
	req := generation.EditRequest{
		Image:    upload.Data,
		MIMEType: imaging.DetectMIME(upload.Data, upload.MIMEType),
		Prompt:   SmilePrompt,
	}

	opts = append([]gate.Option{gate.WithLabel("auto-smile")}, opts...)
	img, err := s.Generate(ctx, req, opts...)
	if err != nil {
		return nil, err
	}

	return &EditResult{
		Image:    *img,
		DataURL:  imaging.EncodeDataURL(*img),
		Filename: imaging.DerivedFilename("smile", upload.Name),
	}, nil
}

// CancelQueued implements ImageService.
func (s *imageServiceImpl) CancelQueued(reason string) int {
	var cause error
	if reason != "" {
		cause = errors.New(reason)
	}
	dropped := s.gate.CancelAll(cause)
	s.logger.Info("queued generations cancelled", "dropped", dropped, "reason", reason)
	return dropped
}

// Status implements ImageService.
func (s *imageServiceImpl) Status() gate.Status {
	return s.gate.Snapshot()
}

// editWork adapts the generator to gate work. A failure after the run
// deadline fired is reported as gate.ErrTimeout.
func (s *imageServiceImpl) editWork(req generation.EditRequest) func(ctx context.Context) (*generation.Image, error) {
	return func(ctx context.Context) (*generation.Image, error) {
		img, err := s.generator.EditImage(ctx, req)
		if err != nil {
			if gate.IsTimeout(ctx) && !errors.Is(err, gate.ErrTimeout) {
				return nil, fmt.Errorf("%w: %w", gate.ErrTimeout, err)
			}
			return nil, err
		}
		return img, nil
	}
}
