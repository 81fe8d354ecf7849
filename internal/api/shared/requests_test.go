package shared

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cancelBody struct {
	Reason string `json:"reason" validate:"max=10"`
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name        string
		requestBody string
		wantErr     bool
		errContains string
	}{
		{name: "valid json", requestBody: `{"reason": "shutdown"}`},
		{name: "invalid json", requestBody: `{"reason": "x",}`, wantErr: true, errContains: "invalid character"},
		{name: "empty body", requestBody: "", wantErr: true, errContains: "EOF"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/test", bytes.NewBufferString(tc.requestBody))

			var body cancelBody
			err := DecodeJSON(req, &body)

			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.errContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "shutdown", body.Reason)
		})
	}
}

func TestDecodeOptionalJSON(t *testing.T) {
	t.Run("empty body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/test", nil)
		body := cancelBody{Reason: "unchanged"}

		require.NoError(t, DecodeOptionalJSON(req, &body))
		assert.Equal(t, "unchanged", body.Reason)
	})

	t.Run("body present", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/test", bytes.NewBufferString(`{"reason":"x"}`))
		var body cancelBody

		require.NoError(t, DecodeOptionalJSON(req, &body))
		assert.Equal(t, "x", body.Reason)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/test", bytes.NewBufferString(`{`))
		var body cancelBody

		assert.Error(t, DecodeOptionalJSON(req, &body))
	})
}

type selfValidating struct{ ok bool }

func (s selfValidating) Validate() error {
	if !s.ok {
		return errors.New("not ok")
	}
	return nil
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(cancelBody{Reason: "short"}))

	err := ValidateRequest(cancelBody{Reason: "far too long a reason"})
	var validationErrs validator.ValidationErrors
	require.True(t, errors.As(err, &validationErrs))
	assert.Equal(t, "Reason", validationErrs[0].Field())

	assert.NoError(t, ValidateRequest(selfValidating{ok: true}))
	assert.EqualError(t, ValidateRequest(selfValidating{}), "not ok")
}
