package sink

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/teleopkit/go-vive/pkg/pose"
	"github.com/teleopkit/go-vive/pkg/relpose"
)

// Topic layout on the broker.
const (
	topicPrefix    = "vive/"
	TopicTelemetry = topicPrefix + "controller_data"
)

// transformPayload is the JSON published per transform frame.
type transformPayload struct {
	Translation struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
		Z float64 `json:"z"`
	} `json:"translation"`
	Rotation struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
		Z float64 `json:"z"`
		W float64 `json:"w"`
	} `json:"rotation"`
	Time string `json:"time"`
}

// telemetryPayload mirrors the controller-data message: inputs plus
// both transforms.
type telemetryPayload struct {
	GripButton     bool    `json:"grip_button"`
	TriggerButton  bool    `json:"trigger_button"`
	TrackpadButton bool    `json:"trackpad_button"`
	TrackpadTouch  bool    `json:"trackpad_touch"`
	MenuButton     bool    `json:"menu_button"`
	TrackpadX      float64 `json:"trackpad_x"`
	TrackpadY      float64 `json:"trackpad_y"`
	Trigger        float64 `json:"trigger"`
	Role           int     `json:"role"`
	Time           string  `json:"time"`

	AbsPose transformPayload  `json:"abs_pose"`
	RelPose *transformPayload `json:"rel_pose,omitempty"`
}

// MQTT publishes transforms and telemetry to a broker, one retained
// message per topic so late subscribers see the latest state.
type MQTT struct {
	client mqtt.Client
}

// NewMQTT connects to the broker. The connection is required: a failure
// here is returned for the caller to treat as fatal.
func NewMQTT(broker, clientID string) (*MQTT, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", broker, token.Error())
	}
	return &MQTT{client: client}, nil
}

func toPayload(t relpose.Transform, stamp time.Time) transformPayload {
	var p transformPayload
	p.Translation.X = t.Position[0]
	p.Translation.Y = t.Position[1]
	p.Translation.Z = t.Position[2]
	p.Rotation.X = t.Orientation.X
	p.Rotation.Y = t.Orientation.Y
	p.Rotation.Z = t.Orientation.Z
	p.Rotation.W = t.Orientation.W
	p.Time = stamp.Format(pose.TimeLayout)
	return p
}

// PublishTransform publishes one named transform frame.
func (m *MQTT) PublishTransform(frame string, t relpose.Transform, stamp time.Time) error {
	payload, err := json.Marshal(toPayload(t, stamp))
	if err != nil {
		return fmt.Errorf("marshal %s: %w", frame, err)
	}
	if token := m.client.Publish(topicPrefix+frame, 0, true, payload); token.Wait() && token.Error() != nil {
		return fmt.Errorf("publish %s: %w", frame, token.Error())
	}
	return nil
}

// PublishTelemetry publishes the full controller-data message.
func (m *MQTT) PublishTelemetry(tel Telemetry) error {
	now := time.Now()
	p := telemetryPayload{
		GripButton:     tel.Sample.Buttons.Grip,
		TriggerButton:  tel.Sample.Buttons.Trigger,
		TrackpadButton: tel.Sample.Buttons.TrackpadButton,
		TrackpadTouch:  tel.Sample.Buttons.TrackpadTouch,
		MenuButton:     tel.Sample.Buttons.Menu,
		TrackpadX:      tel.Sample.TrackpadX,
		TrackpadY:      tel.Sample.TrackpadY,
		Trigger:        tel.Sample.Trigger,
		Role:           tel.Sample.Role,
		Time:           tel.Sample.Time,
		AbsPose:        toPayload(tel.Absolute, now),
	}
	if tel.Relative != nil {
		rel := toPayload(*tel.Relative, now)
		p.RelPose = &rel
	}

	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal telemetry: %w", err)
	}
	if token := m.client.Publish(TopicTelemetry, 0, true, payload); token.Wait() && token.Error() != nil {
		return fmt.Errorf("publish telemetry: %w", token.Error())
	}
	return nil
}

// Close disconnects from the broker.
func (m *MQTT) Close() error {
	m.client.Disconnect(250)
	return nil
}
