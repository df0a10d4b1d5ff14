package notifier

import (
	"context"
	"fmt"
	"sync"

	"fleet-tracker/internal/config"
	"fleet-tracker/internal/logger"
	apperrors "fleet-tracker/pkg/errors"
	pkgmqtt "fleet-tracker/pkg/mqtt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RefreshFunc is invoked with force=true on every change signal.
type RefreshFunc func(ctx context.Context, orgID uuid.UUID) error

// ChangeNotifier subscribes, per organization, to the three change streams
// (live state, fleet sets, dispatch orders) and triggers one full
// reconciliation pass on any event. The payload carries no delta and none is
// relied upon; overlapping events simply cause independent full passes that
// the store resolves by completion order. No debouncing on purpose: the
// source systems guarantee neither order nor completeness of pushed events.
type ChangeNotifier struct {
	cfg     *config.MQTTConfig
	client  *pkgmqtt.Client
	refresh RefreshFunc

	mu      sync.Mutex
	started bool
	topics  map[uuid.UUID][]string
}

func NewChangeNotifier(cfg *config.MQTTConfig, refresh RefreshFunc) *ChangeNotifier {
	client := pkgmqtt.NewClient(&pkgmqtt.Config{
		Broker:               cfg.Broker,
		ClientID:             cfg.ClientID,
		Username:             cfg.Username,
		Password:             cfg.Password,
		CleanSession:         true,
		KeepAlive:            cfg.KeepAlive,
		ConnectTimeout:       cfg.ConnectTimeout,
		AutoReconnect:        true,
		MaxReconnectInterval: cfg.MaxReconnectInterval,
	})

	return &ChangeNotifier{
		cfg:     cfg,
		client:  client,
		refresh: refresh,
		topics:  make(map[uuid.UUID][]string),
	}
}

// Start connects to the broker. Reconnection beyond the configured paho
// auto-reconnect is not this component's concern; an arbitrarily long gap
// between pushes is tolerated because the next forced refresh catches up.
func (n *ChangeNotifier) Start() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.started {
		return nil
	}

	if err := n.client.Connect(); err != nil {
		return err
	}

	n.started = true
	return nil
}

// Watch subscribes the organization to its three change topics.
func (n *ChangeNotifier) Watch(orgID uuid.UUID) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.started {
		return apperrors.ErrNotifierNotConnected
	}
	if _, watching := n.topics[orgID]; watching {
		return nil
	}

	topics := []string{
		fmt.Sprintf("%s/%s/livestate/changed", n.cfg.TopicPrefix, orgID),
		fmt.Sprintf("%s/%s/fleetsets/changed", n.cfg.TopicPrefix, orgID),
		fmt.Sprintf("%s/%s/dispatch/changed", n.cfg.TopicPrefix, orgID),
	}

	for _, topic := range topics {
		if err := n.client.Subscribe(topic, byte(n.cfg.QoS), n.handleChange(orgID)); err != nil {
			return err
		}
	}

	n.topics[orgID] = topics
	return nil
}

// Unwatch drops the organization's subscriptions.
func (n *ChangeNotifier) Unwatch(orgID uuid.UUID) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	topics, watching := n.topics[orgID]
	if !watching {
		return nil
	}
	delete(n.topics, orgID)

	return n.client.Unsubscribe(topics...)
}

func (n *ChangeNotifier) handleChange(orgID uuid.UUID) pkgmqtt.MessageHandler {
	return func(topic string, payload []byte) {
		log := logger.WithOrg(orgID.String())
		log.Debug("change signal received", zap.String("topic", topic))

		// Each signal triggers an independent full pass; run it off the
		// paho callback goroutine so a slow pass never blocks delivery.
		go func() {
			if err := n.refresh(context.Background(), orgID); err != nil {
				log.Error("push-triggered reconciliation failed",
					zap.String("topic", topic),
					zap.Error(err),
				)
			}
		}()
	}
}

func (n *ChangeNotifier) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.started {
		return
	}

	n.client.Disconnect()
	n.started = false
}
