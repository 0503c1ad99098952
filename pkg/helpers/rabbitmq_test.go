package helpers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	key    string
	msg    amqp.Publishing
	err    error
	closed bool
}

func (f *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	f.key = key
	f.msg = msg
	return f.err
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestRabbitPublisher_PublishJSON(t *testing.T) {
	ch := &fakeChannel{}
	p := &RabbitPublisher{ch: ch, Queue: "emails"}

	require.NoError(t, p.PublishJSON(context.Background(), map[string]string{"to": "a@x.com"}))

	assert.Equal(t, "emails", ch.key)
	assert.Equal(t, "application/json", ch.msg.ContentType)
	assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)
	var body map[string]string
	require.NoError(t, json.Unmarshal(ch.msg.Body, &body))
	assert.Equal(t, "a@x.com", body["to"])

	p.Close()
	assert.True(t, ch.closed)
}

func TestRabbitPublisher_PublishError(t *testing.T) {
	p := &RabbitPublisher{ch: &fakeChannel{err: errors.New("channel closed")}, Queue: "emails"}
	assert.Error(t, p.PublishJSON(context.Background(), "x"))
	assert.Error(t, p.PublishJSON(context.Background(), make(chan int)))
}

func TestRabbitPublisher_CloseNil(t *testing.T) {
	var p *RabbitPublisher
	assert.NotPanics(t, p.Close)
}
