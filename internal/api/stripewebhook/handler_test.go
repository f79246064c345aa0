package stripewebhooks

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"tutoring-app/internal/billing"
)

type stubProcessor struct {
	err     error
	payload []byte
	sig     string
}

func (s *stubProcessor) HandleEvent(_ context.Context, payload []byte, signature string) error {
	s.payload = payload
	s.sig = signature
	return s.err
}

func deliver(t *testing.T, processor EventProcessor) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/webhook", NewHandler(processor).HandleWebhook)

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{"id":"evt_1"}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandleWebhookAcknowledged(t *testing.T) {
	stub := &stubProcessor{}
	w := deliver(t, stub)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"received": true}`, w.Body.String())
	assert.Equal(t, `{"id":"evt_1"}`, string(stub.payload), "raw body reaches the processor untouched")
	assert.Equal(t, "t=1,v1=abc", stub.sig)
}

func TestHandleWebhookBadSignature(t *testing.T) {
	stub := &stubProcessor{err: billing.SignatureErr(errors.New("signature mismatch"))}
	w := deliver(t, stub)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Signature verification failed")
}

func TestHandleWebhookProcessingFailure(t *testing.T) {
	// A 500 tells Stripe to redeliver.
	stub := &stubProcessor{err: errors.New("db unavailable")}
	w := deliver(t, stub)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Event processing failed")
}
