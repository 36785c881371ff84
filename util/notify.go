package util

import (
	"errors"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
)

// Notifier publishes notifications on mqtt topics. Without a host it only
// logs them.
type Notifier struct {
	host     string
	clientID string
	client   mqtt.Client
}

// NewNotifier returns a Notifier for host eg tcp://example.com:1883
func NewNotifier(host string, clientID string) *Notifier {
	n := &Notifier{}
	n.host = host
	n.clientID = clientID

	return n
}

// Connect connects to the mqtt server
func (n *Notifier) Connect() error {
	if n.host == "" {
		return nil
	}
	opts := mqtt.NewClientOptions()
	opts.AddBroker(n.host)
	opts.SetClientID(n.clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(10 * time.Second)
	n.client = mqtt.NewClient(opts)
	token := n.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return errors.New("timeout connecting to " + n.host)
	}

	return token.Error()
}

// Publish sends payload on topic
func (n *Notifier) Publish(topic string, retained bool, payload string) error {
	if n.client == nil {
		return nil
	}
	token := n.client.Publish(topic, 1, retained, payload)
	if !token.WaitTimeout(10 * time.Second) {
		return errors.New("timeout publishing " + topic)
	}

	return token.Error()
}

// Notify logs text and publishes it on topic
func (n *Notifier) Notify(topic string, text string) {
	log.WithField("topic", topic).Info(text)
	err := n.Publish(topic, false, text)
	if err != nil {
		log.WithFields(log.Fields{"error": err,
			"topic": topic}).Error("Error publishing notification")
	}
}

// Disconnect closes the mqtt connection
func (n *Notifier) Disconnect() {
	if n.client != nil {
		n.client.Disconnect(250)
	}
}
