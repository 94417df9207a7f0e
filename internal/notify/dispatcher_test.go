package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmspivey7/PlateSync-sub002/internal/domain"
)

type recordingSender struct {
	keys []string
	err  error
}

func (s *recordingSender) Send(_ context.Context, apiKey string, _ domain.OutboxMessage) error {
	s.keys = append(s.keys, apiKey)
	return s.err
}

func staticKey(key string) KeySource {
	return func(context.Context) (string, error) { return key, nil }
}

func TestDispatcherWithoutKeyMarksSent(t *testing.T) {
	outbox := &memOutbox{claim: []domain.OutboxMessage{{ID: "m-1", Kind: domain.TemplateWelcome}}}
	sender := &recordingSender{}
	d := &Dispatcher{Outbox: outbox, Sender: sender, Key: staticKey(""), Logger: zerolog.New(io.Discard), BatchSize: 10}

	n, err := d.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"m-1"}, outbox.sent)
	assert.Empty(t, sender.keys)
}

func TestDispatcherKeyErrorRequeuesClaimed(t *testing.T) {
	outbox := &memOutbox{claim: []domain.OutboxMessage{{ID: "m-1", Kind: domain.TemplateCountReport}}}
	sender := &recordingSender{}
	failingKey := func(context.Context) (string, error) { return "", errors.New("store unavailable") }
	d := &Dispatcher{Outbox: outbox, Sender: sender, Key: failingKey, Logger: zerolog.New(io.Discard), BatchSize: 10}

	n, err := d.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Empty(t, sender.keys)
	assert.Empty(t, outbox.sent)
	assert.Contains(t, outbox.failed["m-1"], "store unavailable")
}

func TestDispatcherFailureSchedulesRetry(t *testing.T) {
	outbox := &memOutbox{permanentAt: 5}
	outbox.queued = []domain.OutboxMessage{{ID: "m-1", Attempts: 2}, {ID: "m-2", Attempts: 5}}
	outbox.claim = outbox.queued
	sender := &recordingSender{err: errors.New("boom")}
	d := &Dispatcher{Outbox: outbox, Sender: sender, Key: staticKey("SG.key"), Logger: zerolog.New(io.Discard), BatchSize: 10}

	_, err := d.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"SG.key", "SG.key"}, sender.keys)
	assert.Empty(t, outbox.sent)
	assert.Equal(t, "boom", outbox.failed["m-1"])
	assert.Equal(t, "boom", outbox.failed["m-2"])
}

func TestSendGridClientSend(t *testing.T) {
	var got sgMessage
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/mail/send", r.URL.Path)
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := NewSendGridClient(srv.URL+"/", "no-reply@platesync.app", "PlateSync")
	err := c.Send(context.Background(), "SG.key", domain.OutboxMessage{
		ID: "m-1", Kind: domain.TemplateCountReport, Recipient: "a@example.com", Subject: "Hi",
		BodyHTML: "<p>Hi</p>", BodyText: "Hi",
	})
	require.NoError(t, err)
	assert.Equal(t, "Bearer SG.key", auth)
	require.Len(t, got.Content, 2)
	assert.Equal(t, "text/plain", got.Content[0].Type)
	assert.Equal(t, "text/html", got.Content[1].Type)
	assert.Equal(t, "a@example.com", got.Personalizations[0].To[0].Email)
	assert.Equal(t, "m-1", got.CustomArgs["outbox_id"])
}

func TestSendGridClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":[{"message":"bad key"}]}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewSendGridClient(srv.URL, "no-reply@platesync.app", "")
	err := c.Send(context.Background(), "bad", domain.OutboxMessage{Recipient: "a@example.com", BodyHTML: "x"})
	var sendErr *SendError
	require.ErrorAs(t, err, &sendErr)
	assert.Equal(t, http.StatusUnauthorized, sendErr.Status)
	assert.Contains(t, sendErr.Body, "bad key")
}
