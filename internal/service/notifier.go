package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Department change actions published to subscribers.
const (
	DeptActionAdd     = "add"
	DeptActionEdit    = "edit"
	DeptActionDelete  = "delete"
	DeptActionRestore = "restore"
	DeptActionRemove  = "remove"
	DeptActionReset   = "resetParentDept"
)

// DeptEvent describes one department mutation.
type DeptEvent struct {
	Action string    `json:"action"`
	ID     string    `json:"id,omitempty"`
	Time   time.Time `json:"time"`
}

// Notifier fans department changes out to other services.
type Notifier interface {
	Notify(ctx context.Context, ev DeptEvent) error
}

// NopNotifier drops every event; used when MQTT is disabled.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, DeptEvent) error { return nil }

// Publisher is the part of the MQTT client the notifier needs.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
	QoS() byte
}

// MQTTNotifier publishes DeptEvent as JSON on a single topic.
type MQTTNotifier struct {
	pub    Publisher
	topic  string
	logger *zap.Logger
}

func NewMQTTNotifier(pub Publisher, topic string, logger *zap.Logger) *MQTTNotifier {
	return &MQTTNotifier{pub: pub, topic: topic, logger: logger}
}

func (n *MQTTNotifier) Notify(_ context.Context, ev DeptEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal dept event: %w", err)
	}
	if err := n.pub.Publish(n.topic, n.pub.QoS(), false, payload); err != nil {
		return fmt.Errorf("failed to publish dept event: %w", err)
	}
	n.logger.Debug("Published dept event",
		zap.String("topic", n.topic),
		zap.String("action", ev.Action),
		zap.String("id", ev.ID),
	)
	return nil
}
