package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	to, subject, body string
	err               error
}

func (s *fakeSender) Send(to, subject, body string) error {
	s.to, s.subject, s.body = to, subject, body
	return s.err
}

func TestEmailWorker_Sends(t *testing.T) {
	sender := &fakeSender{}
	raw, err := json.Marshal(EmailJobPayload{ToEmail: "a@plant.io", Subject: "Hi", Body: "text"})
	require.NoError(t, err)

	require.NoError(t, NewEmailWorker(sender).Process(context.Background(), raw))
	assert.Equal(t, "a@plant.io", sender.to)
	assert.Equal(t, "Hi", sender.subject)
	assert.Equal(t, "text", sender.body)
}

func TestEmailWorker_PermanentFailures(t *testing.T) {
	w := NewEmailWorker(&fakeSender{})

	err := w.Process(context.Background(), json.RawMessage(`{bad`))
	assert.ErrorIs(t, err, ErrPermanent)

	err = w.Process(context.Background(), json.RawMessage(`{"subject":"no recipient"}`))
	assert.ErrorIs(t, err, ErrPermanent)
}

func TestEmailWorker_SendFailureIsRetryable(t *testing.T) {
	w := NewEmailWorker(&fakeSender{err: errors.New("421 try later")})

	err := w.Process(context.Background(), json.RawMessage(`{"to_email":"a@plant.io"}`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPermanent)
}

func TestEmailWorker_RedactDropsBody(t *testing.T) {
	raw, err := json.Marshal(EmailJobPayload{ToEmail: "a@plant.io", Subject: "Password reset", Body: "new password: 0123abcd"})
	require.NoError(t, err)

	out := NewEmailWorker(&fakeSender{}).Redact(raw)
	assert.JSONEq(t, `{"to_email":"a@plant.io","subject":"Password reset"}`, string(out))
	assert.NotContains(t, string(out), "0123abcd")

	assert.Nil(t, NewEmailWorker(&fakeSender{}).Redact(json.RawMessage(`{bad`)))
}
