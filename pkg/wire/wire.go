// Package wire implements the newline-delimited JSON protocol spoken
// between the broadcast server and stream clients. One encoded object
// per line; a reader accumulates bytes until a full line is available,
// so TCP segmentation never splits a message from the parser's point
// of view.
package wire

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/teleopkit/go-vive/pkg/pose"
)

// ErrMalformed marks a line that arrived intact but failed to parse.
// Callers should log and keep reading; the connection is still good.
var ErrMalformed = errors.New("wire: malformed message")

// Pose carries position and orientation.
type Pose struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	Z  float64 `json:"z"`
	QX float64 `json:"qx"`
	QY float64 `json:"qy"`
	QZ float64 `json:"qz"`
	QW float64 `json:"qw"`
}

// Buttons carries the digital inputs.
type Buttons struct {
	Menu           bool `json:"menu"`
	Trigger        bool `json:"trigger"`
	TrackpadTouch  bool `json:"trackpad_touch"`
	TrackpadButton bool `json:"trackpad_button"`
	Grip           bool `json:"grip"`
}

// Trackpad carries the touch position.
type Trackpad struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Message is one complete sample on the wire.
type Message struct {
	Pose     Pose     `json:"pose"`
	Buttons  Buttons  `json:"buttons"`
	Trackpad Trackpad `json:"trackpad"`
	Trigger  float64  `json:"trigger"`
	Role     int      `json:"role"`
	Time     string   `json:"time"`
}

// FromSample converts a pose sample to its wire form.
func FromSample(s pose.Sample) Message {
	return Message{
		Pose: Pose{
			X: s.Position[0], Y: s.Position[1], Z: s.Position[2],
			QX: s.Orientation.X, QY: s.Orientation.Y,
			QZ: s.Orientation.Z, QW: s.Orientation.W,
		},
		Buttons: Buttons{
			Menu:           s.Buttons.Menu,
			Trigger:        s.Buttons.Trigger,
			TrackpadTouch:  s.Buttons.TrackpadTouch,
			TrackpadButton: s.Buttons.TrackpadButton,
			Grip:           s.Buttons.Grip,
		},
		Trackpad: Trackpad{X: s.TrackpadX, Y: s.TrackpadY},
		Trigger:  s.Trigger,
		Role:     s.Role,
		Time:     s.Time,
	}
}

// Sample converts the wire form back to a pose sample. The orientation
// is normalized so downstream math can rely on a unit quaternion.
func (m Message) Sample() pose.Sample {
	return pose.Sample{
		Time: m.Time,
		Role: m.Role,
		Position: [3]float64{
			m.Pose.X, m.Pose.Y, m.Pose.Z,
		},
		Orientation: pose.Quaternion{
			X: m.Pose.QX, Y: m.Pose.QY, Z: m.Pose.QZ, W: m.Pose.QW,
		}.Normalized(),
		Buttons: pose.Buttons{
			Grip:           m.Buttons.Grip,
			Trigger:        m.Buttons.Trigger,
			TrackpadButton: m.Buttons.TrackpadButton,
			TrackpadTouch:  m.Buttons.TrackpadTouch,
			Menu:           m.Buttons.Menu,
		},
		TrackpadX: m.Trackpad.X,
		TrackpadY: m.Trackpad.Y,
		Trigger:   m.Trigger,
	}
}

// Marshal encodes the message as a single newline-terminated frame.
func (m Message) Marshal() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("wire: marshal: %w", err)
	}
	return append(data, '\n'), nil
}

// Decoder reads newline-framed messages from a stream.
type Decoder struct {
	r *bufio.Reader
}

// NewDecoder wraps r with the buffering the framing needs.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// Decode blocks until one full line is available and parses it.
// A parse failure returns an error wrapping ErrMalformed and leaves the
// stream positioned at the next line. Transport errors (including
// io.EOF) are returned as-is.
func (d *Decoder) Decode() (Message, error) {
	line, err := d.r.ReadBytes('\n')
	if err != nil {
		if err == io.EOF && len(line) > 0 {
			// Final unterminated line: parse what we have.
			var m Message
			if jerr := json.Unmarshal(line, &m); jerr == nil {
				return m, nil
			}
		}
		return Message{}, err
	}

	var m Message
	if err := json.Unmarshal(line, &m); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return m, nil
}
