package gupshup

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventInboundMessage(t *testing.T) {
	raw := `{
		"app": "DemoApp",
		"timestamp": 1709294400000,
		"version": 2,
		"type": "message",
		"payload": {
			"id": "ABEGkYaYVSEEAhAL3SLAWwHKeKrt",
			"source": "919999999999",
			"type": "text",
			"payload": {"text": "Hi there"},
			"sender": {"phone": "919999999999", "name": "Asha", "country_code": "91", "dial_code": "9999999999"}
		}
	}`

	var event Event
	require.NoError(t, json.Unmarshal([]byte(raw), &event))
	assert.Equal(t, EventMessage, event.Type)

	msg, err := event.InboundMessage()
	require.NoError(t, err)
	assert.Equal(t, "ABEGkYaYVSEEAhAL3SLAWwHKeKrt", msg.ID)
	assert.Equal(t, "Asha", msg.Sender.Name)
	assert.Equal(t, "Hi there", msg.Text())

	_, err = event.MessageEvent()
	assert.Error(t, err)
}

func TestInboundMessageTextOnlyForText(t *testing.T) {
	msg := InboundMessage{Type: "image", Payload: json.RawMessage(`{"url":"https://a/b.jpg"}`)}
	assert.Empty(t, msg.Text())
}

func TestEventMessageEvent(t *testing.T) {
	raw := `{
		"app": "DemoApp",
		"timestamp": 1709294401000,
		"version": 2,
		"type": "message-event",
		"payload": {
			"id": "gBEGkYaYVSEEAgnPFrOLcjkFjL8",
			"gsId": "ee4a68a0-1203",
			"type": "delivered",
			"destination": "919999999999",
			"payload": {"ts": 1709294401}
		}
	}`

	var event Event
	require.NoError(t, json.Unmarshal([]byte(raw), &event))

	ev, err := event.MessageEvent()
	require.NoError(t, err)
	assert.Equal(t, StatusDelivered, ev.Type)
	assert.Equal(t, "ee4a68a0-1203", ev.MessageID())

	ev.GsID = ""
	assert.Equal(t, "gBEGkYaYVSEEAgnPFrOLcjkFjL8", ev.MessageID())

	_, err = event.InboundMessage()
	assert.Error(t, err)
}
