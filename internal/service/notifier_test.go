package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePublisher struct {
	topic   string
	qos     byte
	payload []byte
	err     error
}

func (f *fakePublisher) Publish(topic string, qos byte, _ bool, payload []byte) error {
	f.topic, f.qos, f.payload = topic, qos, payload
	return f.err
}

func (f *fakePublisher) QoS() byte { return 1 }

func TestMQTTNotifier_Notify(t *testing.T) {
	pub := &fakePublisher{}
	n := NewMQTTNotifier(pub, "submarine/sys/dept", zap.NewNop())
	ts := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	require.NoError(t, n.Notify(context.Background(), DeptEvent{Action: DeptActionAdd, ID: "42", Time: ts}))

	assert.Equal(t, "submarine/sys/dept", pub.topic)
	assert.Equal(t, byte(1), pub.qos)
	var got map[string]any
	require.NoError(t, json.Unmarshal(pub.payload, &got))
	assert.Equal(t, "add", got["action"])
	assert.Equal(t, "42", got["id"])
	assert.Equal(t, "2024-05-01T08:00:00Z", got["time"])
}

func TestMQTTNotifier_PublishError(t *testing.T) {
	pub := &fakePublisher{err: errors.New("not connected")}
	n := NewMQTTNotifier(pub, "t", zap.NewNop())

	err := n.Notify(context.Background(), DeptEvent{Action: DeptActionRemove})

	assert.ErrorContains(t, err, "not connected")
}
