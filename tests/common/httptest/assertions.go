//go:build unit || e2e

package httptest

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func AssertSuccessResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, targetStruct any) {
	t.Helper()

	if !assert.Equal(t, expectedStatus, w.Code,
		fmt.Sprintf("expected status %d, got %d. Response: %s", expectedStatus, w.Code, w.Body.String())) {
		return
	}

	if expectedStatus >= 200 && expectedStatus < 300 && targetStruct != nil {
		err := json.Unmarshal(w.Body.Bytes(), targetStruct)
		assert.NoError(t, err, fmt.Sprintf("failed to decode response JSON: %s", w.Body.String()))
	}
}

// AssertErrorResponse checks the status and the error envelope message. Pass
// an empty expectedErrorMsg to only check the status and envelope shape.
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedErrorMsg string) {
	t.Helper()

	assert.Equal(t, expectedStatus, w.Code,
		fmt.Sprintf("expected status %d, got %d", expectedStatus, w.Code))

	var errorResponse struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	err := json.Unmarshal(w.Body.Bytes(), &errorResponse)
	assert.NoError(t, err, fmt.Sprintf("failed to decode error response JSON: %s", w.Body.String()))

	if expectedErrorMsg != "" {
		assert.Contains(t, errorResponse.Error.Message, expectedErrorMsg,
			"response error message does not contain expected text")
	}
}

// AssertErrorDetail decodes the detail attached to an error envelope, like the
// fresh candidate list returned alongside a slot conflict.
func AssertErrorDetail(t *testing.T, w *httptest.ResponseRecorder, target any) {
	t.Helper()

	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	err := json.Unmarshal(w.Body.Bytes(), &envelope)
	assert.NoError(t, err, fmt.Sprintf("failed to decode error envelope: %s", w.Body.String()))
	if len(envelope.Detail) == 0 {
		t.Fatalf("error response carries no detail: %s", w.Body.String())
	}
	assert.NoError(t, json.Unmarshal(envelope.Detail, target), "failed to decode error detail")
}

func AssertHeaders(t *testing.T, w *httptest.ResponseRecorder, expected map[string]string) {
	t.Helper()
	for k, v := range expected {
		assert.Equal(t, v, w.Header().Get(k), "header %s mismatch", k)
	}
}
