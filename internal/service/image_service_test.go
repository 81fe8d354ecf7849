package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/nathfavour/plantainbanana/internal/gate"
	"github.com/nathfavour/plantainbanana/internal/generation"
	"github.com/nathfavour/plantainbanana/internal/imaging"
	"github.com/nathfavour/plantainbanana/internal/mocks"
	"github.com/nathfavour/plantainbanana/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newService(t *testing.T, g *gate.Gate, gen *mocks.MockGenerator) service.ImageService {
	t.Helper()
	svc, err := service.NewImageService(g, gen, testLogger())
	require.NoError(t, err)
	return svc
}

func editRequest(prompt string) generation.EditRequest {
	return generation.EditRequest{Image: pngHeader, MIMEType: "image/png", Prompt: prompt}
}

// blockingGenerator parks every EditImage call until its context ends or
// release is closed, and reports each start on started.
func blockingGenerator() (gen *mocks.MockGenerator, started chan string, release chan struct{}) {
	started = make(chan string, 8)
	release = make(chan struct{})
	gen = &mocks.MockGenerator{
		EditImageFn: func(ctx context.Context, req generation.EditRequest) (*generation.Image, error) {
			started <- req.Prompt
			select {
			case <-release:
				return &generation.Image{Data: []byte(req.Prompt), MIMEType: "image/png"}, nil
			case <-ctx.Done():
				return nil, context.Cause(ctx)
			}
		},
	}
	return gen, started, release
}

func TestNewImageService(t *testing.T) {
	g := gate.New(gate.DefaultConfig(), testLogger())
	gen := &mocks.MockGenerator{}

	tests := []struct {
		name     string
		gate     *gate.Gate
		gen      generation.Generator
		logger   *slog.Logger
		errorMsg string
	}{
		{name: "nil_gate", gate: nil, gen: gen, logger: testLogger(), errorMsg: "gate cannot be nil"},
		{name: "nil_generator", gate: g, gen: nil, logger: testLogger(), errorMsg: "generator cannot be nil"},
		{name: "nil_logger", gate: g, gen: gen, logger: nil, errorMsg: "logger cannot be nil"},
		{name: "valid", gate: g, gen: gen, logger: testLogger()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := service.NewImageService(tt.gate, tt.gen, tt.logger)
			if tt.errorMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
				assert.Nil(t, svc)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, svc)
		})
	}
}

func TestGenerate(t *testing.T) {
	t.Run("returns_generated_image", func(t *testing.T) {
		gen := &mocks.MockGenerator{Image: &generation.Image{Data: []byte("edited"), MIMEType: "image/png"}}
		svc := newService(t, gate.New(gate.DefaultConfig(), testLogger()), gen)

		img, err := svc.Generate(context.Background(), editRequest("add a hat"))

		require.NoError(t, err)
		assert.Equal(t, []byte("edited"), img.Data)
		assert.Equal(t, "add a hat", gen.LastRequest().Prompt)
		assert.Equal(t, gate.Status{}, svc.Status())
	})

	t.Run("invalid_request_skips_gate_and_generator", func(t *testing.T) {
		gen := &mocks.MockGenerator{}
		svc := newService(t, gate.New(gate.DefaultConfig(), testLogger()), gen)

		_, err := svc.Generate(context.Background(), editRequest(""))

		assert.ErrorIs(t, err, generation.ErrEmptyPrompt)
		assert.Equal(t, 0, gen.CallCount())
	})

	t.Run("generator_failure_is_wrapped", func(t *testing.T) {
		gen := &mocks.MockGenerator{Err: generation.ErrNoImage}
		svc := newService(t, gate.New(gate.DefaultConfig(), testLogger()), gen)

		_, err := svc.Generate(context.Background(), editRequest("add a hat"))

		require.Error(t, err)
		assert.ErrorIs(t, err, generation.ErrNoImage)
		var svcErr *service.ImageServiceError
		require.True(t, errors.As(err, &svcErr))
		assert.Equal(t, "generate", svcErr.Operation)
	})

	t.Run("deadline_reports_timeout", func(t *testing.T) {
		mock := clock.NewMock()
		g := gate.New(gate.Config{DefaultTimeout: time.Second, Clock: mock}, testLogger())
		gen, started, _ := blockingGenerator()
		svc := newService(t, g, gen)

		errCh := make(chan error, 1)
		go func() {
			_, err := svc.Generate(context.Background(), editRequest("slow"))
			errCh <- err
		}()
		<-started
		mock.Add(time.Second)

		select {
		case err := <-errCh:
			assert.ErrorIs(t, err, gate.ErrTimeout)
		case <-time.After(5 * time.Second):
			t.Fatal("generation did not observe the deadline")
		}
		assert.False(t, g.Busy())
	})

	t.Run("generator_error_after_deadline_is_timeout", func(t *testing.T) {
		mock := clock.NewMock()
		g := gate.New(gate.Config{DefaultTimeout: time.Second, Clock: mock}, testLogger())
		started := make(chan struct{})
		gen := &mocks.MockGenerator{
			EditImageFn: func(ctx context.Context, req generation.EditRequest) (*generation.Image, error) {
				close(started)
				<-ctx.Done()
				return nil, generation.ErrGenerationFailed
			},
		}
		svc := newService(t, g, gen)

		errCh := make(chan error, 1)
		go func() {
			_, err := svc.Generate(context.Background(), editRequest("slow"))
			errCh <- err
		}()
		<-started
		mock.Add(time.Second)

		err := <-errCh
		assert.ErrorIs(t, err, gate.ErrTimeout)
		assert.ErrorIs(t, err, generation.ErrGenerationFailed)
	})

	t.Run("runs_one_at_a_time_in_order", func(t *testing.T) {
		g := gate.New(gate.DefaultConfig(), testLogger())
		gen, started, release := blockingGenerator()
		svc := newService(t, g, gen)

		errCh := make(chan error, 3)
		generate := func(prompt string) {
			_, err := svc.Generate(context.Background(), editRequest(prompt))
			errCh <- err
		}
		go generate("first")
		assert.Equal(t, "first", <-started)
		go generate("second")
		require.Eventually(t, func() bool { return svc.Status().Queued == 1 }, time.Second, time.Millisecond)
		go generate("third")
		require.Eventually(t, func() bool { return svc.Status().Queued == 2 }, time.Second, time.Millisecond)

		assert.Equal(t, gate.Status{Busy: true, Queued: 2}, svc.Status())
		close(release)

		assert.Equal(t, "second", <-started)
		assert.Equal(t, "third", <-started)
		for range 3 {
			require.NoError(t, <-errCh)
		}
		assert.Equal(t, 3, gen.CallCount())
		assert.Equal(t, gate.Status{}, svc.Status())
	})
}

func TestTryGenerate(t *testing.T) {
	t.Run("busy_gate_returns_ErrGateBusy", func(t *testing.T) {
		g := gate.New(gate.DefaultConfig(), testLogger())
		gen, started, release := blockingGenerator()
		svc := newService(t, g, gen)

		errCh := make(chan error, 1)
		go func() {
			_, err := svc.Generate(context.Background(), editRequest("holder"))
			errCh <- err
		}()
		<-started

		img, err := svc.TryGenerate(context.Background(), editRequest("impatient"))

		assert.Nil(t, img)
		assert.ErrorIs(t, err, gate.ErrGateBusy)
		assert.Equal(t, 0, svc.Status().Queued)

		close(release)
		require.NoError(t, <-errCh)
		assert.Equal(t, 1, gen.CallCount())
	})

	t.Run("idle_gate_runs", func(t *testing.T) {
		gen := &mocks.MockGenerator{Image: &generation.Image{Data: []byte("ok"), MIMEType: "image/png"}}
		svc := newService(t, gate.New(gate.DefaultConfig(), testLogger()), gen)

		img, err := svc.TryGenerate(context.Background(), editRequest("now"))

		require.NoError(t, err)
		assert.Equal(t, []byte("ok"), img.Data)
	})
}

func TestAutoSmile(t *testing.T) {
	gen := &mocks.MockGenerator{Image: &generation.Image{Data: []byte("smiling"), MIMEType: "image/png"}}
	svc := newService(t, gate.New(gate.DefaultConfig(), testLogger()), gen)

	result, err := svc.AutoSmile(context.Background(), service.Upload{Name: "portrait.png", Data: pngHeader})

	require.NoError(t, err)
	assert.Equal(t, "smile-portrait.png", result.Filename)
	assert.True(t, strings.HasPrefix(result.DataURL, "data:image/png;base64,"))
	assert.Equal(t, []byte("smiling"), result.Image.Data)

	decoded, err := imaging.ParseDataURL(result.DataURL)
	require.NoError(t, err)
	assert.Equal(t, result.Image, decoded)

	req := gen.LastRequest()
	assert.Equal(t, service.SmilePrompt, req.Prompt)
	assert.Equal(t, "image/png", req.MIMEType, "type is sniffed when the upload does not declare one")
}

func TestAutoSmile_EmptyUpload(t *testing.T) {
	gen := &mocks.MockGenerator{}
	svc := newService(t, gate.New(gate.DefaultConfig(), testLogger()), gen)

	_, err := svc.AutoSmile(context.Background(), service.Upload{Name: "empty.png"})

	assert.ErrorIs(t, err, generation.ErrEmptyImage)
	assert.Equal(t, 0, gen.CallCount())
}

func TestCancelQueued(t *testing.T) {
	g := gate.New(gate.DefaultConfig(), testLogger())
	gen, started, release := blockingGenerator()
	svc := newService(t, g, gen)

	activeErr := make(chan error, 1)
	go func() {
		_, err := svc.Generate(context.Background(), editRequest("active"))
		activeErr <- err
	}()
	<-started

	queuedErr := make(chan error, 1)
	go func() {
		_, err := svc.Generate(context.Background(), editRequest("queued"))
		queuedErr <- err
	}()
	require.Eventually(t, func() bool { return svc.Status().Queued == 1 }, time.Second, time.Millisecond)

	assert.Equal(t, 1, svc.CancelQueued("user cancelled"))

	err := <-queuedErr
	assert.ErrorIs(t, err, gate.ErrCancelledWhileQueued)
	assert.Contains(t, err.Error(), "user cancelled")
	assert.Equal(t, gate.Status{Busy: true, Queued: 0}, svc.Status())

	close(release)
	require.NoError(t, <-activeErr)
	assert.Equal(t, 1, gen.CallCount(), "the dropped request never reached the generator")
	assert.Equal(t, 0, svc.CancelQueued(""))
}
