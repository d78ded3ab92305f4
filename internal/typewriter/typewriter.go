// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package typewriter turns a complete response into a timed sequence of
// display frames.
package typewriter

import (
	"context"
	"strings"
	"time"
)

// Defaults match the original front-end: one character every 20ms with a
// block cursor trailing the text while generation is "typing".
const (
	DefaultInterval = 20 * time.Millisecond
	DefaultMarker   = "▌"
)

// =============================================================================
// FRAME SEQUENCE
// =============================================================================

// Frame is one display write. Intermediate frames carry the accumulated
// text with the cursor marker appended; the single final frame carries the
// bare accumulated text.
type Frame struct {
	Text  string `json:"text"`
	Final bool   `json:"final"`
}

// Sequence lazily yields the frames for one response: N intermediate
// frames for N runes, then exactly one final frame. A Sequence is cheap to
// construct, so an abandoned playback is simply dropped and a fresh one
// started.
type Sequence struct {
	runes  []rune
	marker string
	pos    int
	done   bool
	acc    strings.Builder
}

// NewSequence creates the frame sequence for text. The marker is appended
// to every intermediate frame; pass "" to type without a cursor.
func NewSequence(text, marker string) *Sequence {
	return &Sequence{
		runes:  []rune(text),
		marker: marker,
	}
}

// Next returns the next frame. The second return is false once the
// sequence is exhausted (after the final frame has been yielded).
func (s *Sequence) Next() (Frame, bool) {
	if s.done {
		return Frame{}, false
	}
	if s.pos < len(s.runes) {
		s.acc.WriteRune(s.runes[s.pos])
		s.pos++
		return Frame{Text: s.acc.String() + s.marker, Final: false}, true
	}
	s.done = true
	return Frame{Text: s.acc.String(), Final: true}, true
}

// Len returns the total number of frames the sequence yields: one per rune
// plus the final frame.
func (s *Sequence) Len() int {
	return len(s.runes) + 1
}

// Frames materializes the whole sequence. Intended for short texts and
// tests; playback paths should drive a Sequence instead.
func Frames(text, marker string) []Frame {
	seq := NewSequence(text, marker)
	frames := make([]Frame, 0, seq.Len())
	for {
		frame, ok := seq.Next()
		if !ok {
			return frames
		}
		frames = append(frames, frame)
	}
}

// =============================================================================
// PLAYBACK
// =============================================================================

// Sink receives frames in order. Returning an error stops playback; the
// streaming handlers use this to notice a disconnected client.
type Sink func(Frame) error

// Writer plays frame sequences with a fixed delay between frames. The
// delay is purely a typing visual; it is not a throughput mechanism.
type Writer struct {
	interval time.Duration
	marker   string
}

// New creates a Writer. A zero or negative interval disables the delay
// (frames are delivered as fast as the sink accepts them); an empty marker
// falls back to the default cursor.
func New(interval time.Duration, marker string) *Writer {
	if marker == "" {
		marker = DefaultMarker
	}
	return &Writer{interval: interval, marker: marker}
}

// Interval returns the configured inter-frame delay.
func (w *Writer) Interval() time.Duration {
	return w.interval
}

// Marker returns the configured cursor marker.
func (w *Writer) Marker() string {
	return w.marker
}

// Play delivers the frame sequence for text to sink, waiting the
// configured interval between frames. The first frame is delivered
// immediately. Playback is cooperative: cancellation of ctx stops it
// between frames and returns ctx.Err() without delivering the final
// frame. A sink error stops playback and is returned as-is.
//
// For a text of N runes a completed playback makes exactly N+1 sink
// calls: N intermediate frames suffixed with the marker, then one final
// frame equal to the full text.
func (w *Writer) Play(ctx context.Context, text string, sink Sink) error {
	seq := NewSequence(text, w.marker)

	var ticker *time.Ticker
	if w.interval > 0 {
		ticker = time.NewTicker(w.interval)
		defer ticker.Stop()
	}

	first := true
	for {
		frame, ok := seq.Next()
		if !ok {
			return nil
		}

		if !first && ticker != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
		first = false

		if err := sink(frame); err != nil {
			return err
		}
	}
}
