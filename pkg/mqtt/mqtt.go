// Package mqtt provides MQTT communication capabilities for the bot.
// It publishes moderation events and answers request/response queries from
// other services. Every topic lives under a configurable prefix:
//
//	{prefix}/request/{name}                  incoming queries
//	{prefix}/response/{name}/{correlationId} answers
//	{prefix}/{anything else}                 events
package mqtt

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PancyStudios/GuardBotGo/pkg/errors"
	"github.com/PancyStudios/GuardBotGo/pkg/logger"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// MqttRequest represents an MQTT request message
type MqttRequest struct {
	CorrelationID string      `json:"correlationId"`
	Payload       interface{} `json:"payload,omitempty"`
}

// MqttResponse represents an MQTT response message
type MqttResponse struct {
	CorrelationID string      `json:"correlationId"`
	Data          interface{} `json:"data"`
	Error         string      `json:"error,omitempty"`
}

// RequestHandler answers a request. The payload carries the request name
// under "_topic".
type RequestHandler func(payload map[string]interface{}) (interface{}, error)

// MqttCommunicator handles MQTT communication
type MqttCommunicator struct {
	client mqtt.Client
	prefix string

	mu       sync.Mutex
	handlers map[string]RequestHandler
}

var (
	communicator *MqttCommunicator
	once         sync.Once
)

// Init initializes the global MQTT communicator
func Init(host, port, username, password, clientID, prefix string) *MqttCommunicator {
	once.Do(func() {
		communicator = NewMqttCommunicator(host, port, username, password, clientID, prefix)
	})
	return communicator
}

// Get returns the global MQTT communicator
func Get() *MqttCommunicator {
	return communicator
}

// NewMqttCommunicator connects to the broker. Connection failures are logged
// and retried in the background.
func NewMqttCommunicator(host, port, username, password, clientID, prefix string) *MqttCommunicator {
	mc := newCommunicator(nil, prefix)

	uniqueID := fmt.Sprintf("%s_%s", clientID, uuid.New().String())

	opts := mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%s", host, port)).
		SetClientID(uniqueID).
		SetUsername(username).
		SetPassword(password).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(func(c mqtt.Client) {
			logger.Success(fmt.Sprintf("Conectado al broker MQTT como %s", clientID), "MQTT")
			mc.resubscribe()
		}).
		SetConnectionLostHandler(func(c mqtt.Client, err error) {
			logger.Error(fmt.Sprintf("Conexión MQTT perdida: %v", err), "MQTT")
		})

	mc.client = mqtt.NewClient(opts)

	token := mc.client.Connect()
	if token.WaitTimeout(10*time.Second) && token.Error() != nil {
		logger.Error(fmt.Sprintf("Error de conexión MQTT: %v", token.Error()), "MQTT")
	}

	return mc
}

func newCommunicator(client mqtt.Client, prefix string) *MqttCommunicator {
	return &MqttCommunicator{
		client:   client,
		prefix:   strings.TrimSuffix(prefix, "/"),
		handlers: make(map[string]RequestHandler),
	}
}

// Topic joins parts under the configured prefix
func (mc *MqttCommunicator) Topic(parts ...string) string {
	return strings.Join(append([]string{mc.prefix}, parts...), "/")
}

// Destroy closes the MQTT connection
func (mc *MqttCommunicator) Destroy() {
	if mc.client != nil && mc.client.IsConnected() {
		mc.client.Disconnect(250)
		logger.System("Conexión MQTT cerrada exitosamente.", "MQTT")
	} else {
		logger.Warn("El cliente MQTT no estaba conectado, no se necesita cerrar.", "MQTT")
	}
}

// IsConnected returns true if connected to the broker
func (mc *MqttCommunicator) IsConnected() bool {
	return mc.client != nil && mc.client.IsConnected()
}

// Publish sends a JSON encoded message to a topic
func (mc *MqttCommunicator) Publish(topic string, payload interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	token := mc.client.Publish(topic, 0, false, jsonData)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish to %s timed out", topic)
	}
	return token.Error()
}

// On registers a handler for {prefix}/request/{name}. Handlers survive
// reconnections.
func (mc *MqttCommunicator) On(name string, callback RequestHandler) {
	mc.mu.Lock()
	mc.handlers[name] = callback
	mc.mu.Unlock()

	mc.subscribe(name, callback)
}

func (mc *MqttCommunicator) resubscribe() {
	mc.mu.Lock()
	handlers := make(map[string]RequestHandler, len(mc.handlers))
	for name, h := range mc.handlers {
		handlers[name] = h
	}
	mc.mu.Unlock()

	for name, h := range handlers {
		mc.subscribe(name, h)
	}
}

func (mc *MqttCommunicator) subscribe(name string, callback RequestHandler) {
	topic := mc.Topic("request", name)

	token := mc.client.Subscribe(topic, 0, func(c mqtt.Client, msg mqtt.Message) {
		errors.Go(func() { mc.answer(name, msg.Payload(), callback) })
	})

	if token.WaitTimeout(5*time.Second) && token.Error() != nil {
		logger.Error(fmt.Sprintf("Error subscribing to topic %s: %v", topic, token.Error()), "MQTT")
	}
}

// answer runs callback on a raw request and publishes its response
func (mc *MqttCommunicator) answer(name string, raw []byte, callback RequestHandler) {
	var request MqttRequest
	if err := json.Unmarshal(raw, &request); err != nil {
		logger.Error(fmt.Sprintf("Error parsing MQTT request: %v", err), "MQTT")
		return
	}
	if request.CorrelationID == "" {
		logger.Warn(fmt.Sprintf("Petición MQTT sin correlationId en '%s'", name), "MQTT")
		return
	}

	payloadMap := make(map[string]interface{})
	if pm, ok := request.Payload.(map[string]interface{}); ok {
		payloadMap = pm
	}
	payloadMap["_topic"] = name

	response := MqttResponse{CorrelationID: request.CorrelationID}
	if data, err := callback(payloadMap); err != nil {
		response.Error = err.Error()
	} else {
		response.Data = data
	}

	if err := mc.Publish(mc.Topic("response", name, request.CorrelationID), response); err != nil {
		logger.Error(fmt.Sprintf("Error respondiendo a '%s': %v", name, err), "MQTT")
	}
}
