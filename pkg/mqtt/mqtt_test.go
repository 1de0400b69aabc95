package mqtt

import (
	"errors"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doneToken struct{ err error }

func (t doneToken) Wait() bool                     { return true }
func (t doneToken) WaitTimeout(time.Duration) bool { return true }
func (t doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t doneToken) Error() error { return t.err }

type fakeMessage struct {
	mqtt.Message
	topic   string
	payload []byte
}

func (m fakeMessage) Topic() string   { return m.topic }
func (m fakeMessage) Payload() []byte { return m.payload }

type fakeClient struct {
	mqtt.Client

	mu        sync.Mutex
	published map[string][]byte
	subs      map[string]mqtt.MessageHandler
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		published: make(map[string][]byte),
		subs:      make(map[string]mqtt.MessageHandler),
	}
}

func (f *fakeClient) IsConnected() bool { return true }

func (f *fakeClient) Publish(topic string, _ byte, _ bool, payload interface{}) mqtt.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published[topic] = payload.([]byte)
	return doneToken{}
}

func (f *fakeClient) Subscribe(topic string, _ byte, cb mqtt.MessageHandler) mqtt.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs[topic] = cb
	return doneToken{}
}

func (f *fakeClient) message(topic string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.published[topic]
	return b, ok
}

func TestTopic(t *testing.T) {
	mc := newCommunicator(newFakeClient(), "guardbot/")
	assert.Equal(t, "guardbot/moderation/unwarn", mc.Topic("moderation", "unwarn"))
	assert.Equal(t, "guardbot/response/warns/abc", mc.Topic("response", "warns", "abc"))
}

func TestPublishEncodesJSON(t *testing.T) {
	fc := newFakeClient()
	mc := newCommunicator(fc, "guardbot")

	require.NoError(t, mc.Publish("guardbot/x", map[string]int{"n": 1}))

	raw, ok := fc.message("guardbot/x")
	require.True(t, ok)
	assert.JSONEq(t, `{"n":1}`, string(raw))
}

func TestOnAnswersRequests(t *testing.T) {
	fc := newFakeClient()
	mc := newCommunicator(fc, "guardbot")

	mc.On("warns", func(p map[string]interface{}) (interface{}, error) {
		if p["userId"] == "missing" {
			return nil, errors.New("user unknown")
		}
		return map[string]interface{}{"user": p["userId"], "topic": p["_topic"]}, nil
	})

	cb, ok := fc.subs["guardbot/request/warns"]
	require.True(t, ok)

	cb(fc, fakeMessage{topic: "guardbot/request/warns", payload: []byte(`{"correlationId":"c1","payload":{"userId":"42"}}`)})
	cb(fc, fakeMessage{topic: "guardbot/request/warns", payload: []byte(`{"correlationId":"c2","payload":{"userId":"missing"}}`)})

	var ok1, ok2 []byte
	require.Eventually(t, func() bool {
		var found1, found2 bool
		ok1, found1 = fc.message("guardbot/response/warns/c1")
		ok2, found2 = fc.message("guardbot/response/warns/c2")
		return found1 && found2
	}, time.Second, 5*time.Millisecond)

	var resp MqttResponse
	require.NoError(t, json.Unmarshal(ok1, &resp))
	assert.Equal(t, "c1", resp.CorrelationID)
	assert.Equal(t, map[string]interface{}{"user": "42", "topic": "warns"}, resp.Data)
	assert.Empty(t, resp.Error)

	require.NoError(t, json.Unmarshal(ok2, &resp))
	assert.Equal(t, "user unknown", resp.Error)
}

func TestAnswerDropsMalformedRequests(t *testing.T) {
	fc := newFakeClient()
	mc := newCommunicator(fc, "guardbot")
	called := false
	handler := func(map[string]interface{}) (interface{}, error) {
		called = true
		return nil, nil
	}

	mc.answer("warns", []byte("not json"), handler)
	mc.answer("warns", []byte(`{"payload":{}}`), handler)

	assert.False(t, called)
	assert.Empty(t, fc.published)
}

func TestResubscribeRestoresHandlers(t *testing.T) {
	fc := newFakeClient()
	mc := newCommunicator(fc, "guardbot")
	mc.On("warns", func(map[string]interface{}) (interface{}, error) { return nil, nil })

	fc.subs = make(map[string]mqtt.MessageHandler)
	mc.resubscribe()

	assert.Contains(t, fc.subs, "guardbot/request/warns")
}
