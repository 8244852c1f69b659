package email

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendDisabledWithoutAPIKey(t *testing.T) {
	m := NewMailer("", "Test <test@example.com>", "http://api.test", "http://front.test")
	assert.NoError(t, m.Send("to@example.com", "subject", "<p>hi</p>", "hi"))
}

func TestSend(t *testing.T) {
	var got sendRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := NewMailer("re_key", "Test <test@example.com>", "http://api.test", "http://front.test")
	m.Endpoint = srv.URL

	require.NoError(t, m.Send("to@example.com", "Hello", "<p>hi</p>", "hi"))
	assert.Equal(t, "Bearer re_key", auth)
	assert.Equal(t, "Test <test@example.com>", got.From)
	assert.Equal(t, []string{"to@example.com"}, got.To)
	assert.Equal(t, "Hello", got.Subject)
}

func TestSendAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"invalid from"}`))
	}))
	defer srv.Close()

	m := NewMailer("re_key", "bad-from", "http://api.test", "http://front.test")
	m.Endpoint = srv.URL

	err := m.Send("to@example.com", "Hello", "", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 422")
}

func TestEmailChangeVerificationLink(t *testing.T) {
	var got sendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := NewMailer("re_key", "Test <test@example.com>", "http://api.test", "http://front.test")
	m.Endpoint = srv.URL

	require.NoError(t, m.SendEmailChangeVerification("new@example.com", "tok123", "Ada"))
	assert.Contains(t, got.Text, "http://api.test/me/email/verify?token=tok123")
	assert.Contains(t, got.Text, "Hi Ada")
}
