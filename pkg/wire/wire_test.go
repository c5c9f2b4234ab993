package wire

import (
	"bytes"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/teleopkit/go-vive/pkg/pose"
)

func sampleFixture() pose.Sample {
	return pose.Sample{
		Time:     "2026-08-26 10:15:30.123",
		Role:     2,
		Position: [3]float64{0.125, -1.5, 0.75},
		Orientation: pose.Quaternion{
			X: 0.1, Y: 0.2, Z: 0.3, W: 0.9,
		}.Normalized(),
		Buttons: pose.Buttons{
			Grip:    true,
			Trigger: true,
		},
		TrackpadX: -0.5,
		TrackpadY: 0.25,
		Trigger:   0.875,
	}
}

func TestRoundTrip(t *testing.T) {
	in := sampleFixture()

	data, err := FromSample(in).Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	msg, err := NewDecoder(bytes.NewReader(data)).Decode()
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	out := msg.Sample()

	if out.Time != in.Time || out.Role != in.Role {
		t.Errorf("time/role mismatch: got %q/%d", out.Time, out.Role)
	}
	for i := range in.Position {
		if math.Abs(out.Position[i]-in.Position[i]) > 1e-12 {
			t.Errorf("position[%d] = %v, want %v", i, out.Position[i], in.Position[i])
		}
	}
	if math.Abs(out.Orientation.W-in.Orientation.W) > 1e-12 {
		t.Errorf("orientation.W = %v, want %v", out.Orientation.W, in.Orientation.W)
	}
	if out.Buttons != in.Buttons {
		t.Errorf("buttons = %+v, want %+v", out.Buttons, in.Buttons)
	}
	if out.TrackpadX != in.TrackpadX || out.TrackpadY != in.TrackpadY || out.Trigger != in.Trigger {
		t.Errorf("analogs = %v/%v/%v", out.TrackpadX, out.TrackpadY, out.Trigger)
	}
}

func TestRoundTripAllButtonCombinations(t *testing.T) {
	for mask := 0; mask < 32; mask++ {
		in := sampleFixture()
		in.Buttons = pose.Buttons{
			Grip:           mask&1 != 0,
			Trigger:        mask&2 != 0,
			TrackpadButton: mask&4 != 0,
			TrackpadTouch:  mask&8 != 0,
			Menu:           mask&16 != 0,
		}

		data, err := FromSample(in).Marshal()
		if err != nil {
			t.Fatalf("mask %d: Marshal: %v", mask, err)
		}
		msg, err := NewDecoder(bytes.NewReader(data)).Decode()
		if err != nil {
			t.Fatalf("mask %d: Decode: %v", mask, err)
		}
		if got := msg.Sample().Buttons; got != in.Buttons {
			t.Errorf("mask %d: buttons = %+v, want %+v", mask, got, in.Buttons)
		}
	}
}

// slowReader delivers the underlying stream a few bytes at a time, the
// way a congested TCP connection would.
type slowReader struct {
	data  []byte
	chunk int
}

func (r *slowReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, io.EOF
	}
	n := r.chunk
	if n > len(r.data) {
		n = len(r.data)
	}
	if n > len(p) {
		n = len(p)
	}
	copy(p, r.data[:n])
	r.data = r.data[n:]
	return n, nil
}

func TestDecodeAcrossPartialReads(t *testing.T) {
	var buf bytes.Buffer
	want := []int{1, 2, 3}
	for _, role := range want {
		s := sampleFixture()
		s.Role = role
		data, err := FromSample(s).Marshal()
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		buf.Write(data)
	}

	dec := NewDecoder(&slowReader{data: buf.Bytes(), chunk: 7})
	for _, role := range want {
		msg, err := dec.Decode()
		if err != nil {
			t.Fatalf("Decode role %d: %v", role, err)
		}
		if msg.Role != role {
			t.Errorf("Role = %d, want %d", msg.Role, role)
		}
	}
	if _, err := dec.Decode(); err != io.EOF {
		t.Errorf("trailing Decode err = %v, want io.EOF", err)
	}
}

func TestDecodeMalformedLineKeepsStream(t *testing.T) {
	good, err := FromSample(sampleFixture()).Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	stream := append([]byte("{not json}\n"), good...)

	dec := NewDecoder(bytes.NewReader(stream))

	if _, err := dec.Decode(); !errors.Is(err, ErrMalformed) {
		t.Fatalf("first Decode err = %v, want ErrMalformed", err)
	}
	msg, err := dec.Decode()
	if err != nil {
		t.Fatalf("second Decode: %v", err)
	}
	if msg.Role != 2 {
		t.Errorf("Role = %d, want 2", msg.Role)
	}
}

func TestDecodeUnterminatedFinalLine(t *testing.T) {
	data, err := FromSample(sampleFixture()).Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	// Strip the trailing newline: a peer that died mid-write.
	msg, err := NewDecoder(bytes.NewReader(data[:len(data)-1])).Decode()
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if msg.Role != 2 {
		t.Errorf("Role = %d, want 2", msg.Role)
	}
}
