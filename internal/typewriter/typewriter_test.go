// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package typewriter turns a complete response into a timed sequence of
// display frames.
package typewriter

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// =============================================================================
// FRAME SEQUENCE TESTS
// =============================================================================

// N runes must yield exactly N+1 frames: N intermediate frames with the
// marker, one final frame without it.
func TestFrames_CountAndShape(t *testing.T) {
	testCases := []struct {
		name string
		text string
	}{
		{"ascii", "hi there"},
		{"single rune", "x"},
		{"unicode", "héllo 👋"},
		{"with newline", "a\nb"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			frames := Frames(tc.text, "▌")
			n := len([]rune(tc.text))

			if len(frames) != n+1 {
				t.Fatalf("len(frames) = %d, want %d", len(frames), n+1)
			}

			for i, frame := range frames[:n] {
				if frame.Final {
					t.Errorf("frames[%d].Final = true, want false", i)
				}
				if !strings.HasSuffix(frame.Text, "▌") {
					t.Errorf("frames[%d].Text = %q, want marker suffix", i, frame.Text)
				}
			}

			final := frames[n]
			if !final.Final {
				t.Error("last frame should be final")
			}
			if final.Text != tc.text {
				t.Errorf("final.Text = %q, want %q", final.Text, tc.text)
			}
			if strings.Contains(final.Text, "▌") {
				t.Errorf("final.Text = %q, marker must not appear", final.Text)
			}
		})
	}
}

func TestFrames_EmptyText(t *testing.T) {
	frames := Frames("", "▌")
	if len(frames) != 1 {
		t.Fatalf("len(frames) = %d, want 1", len(frames))
	}
	if !frames[0].Final || frames[0].Text != "" {
		t.Errorf("frames[0] = %+v, want empty final frame", frames[0])
	}
}

func TestFrames_AccumulatorGrows(t *testing.T) {
	frames := Frames("abc", "|")
	want := []string{"a|", "ab|", "abc|", "abc"}
	for i, frame := range frames {
		if frame.Text != want[i] {
			t.Errorf("frames[%d].Text = %q, want %q", i, frame.Text, want[i])
		}
	}
}

func TestSequence_ExhaustionIsSticky(t *testing.T) {
	seq := NewSequence("a", "▌")
	for {
		if _, ok := seq.Next(); !ok {
			break
		}
	}
	if _, ok := seq.Next(); ok {
		t.Error("Next after exhaustion should report done")
	}
}

func TestSequence_Len(t *testing.T) {
	if got := NewSequence("hello", "▌").Len(); got != 6 {
		t.Errorf("Len = %d, want 6", got)
	}
	if got := NewSequence("", "▌").Len(); got != 1 {
		t.Errorf("Len on empty = %d, want 1", got)
	}
}

// =============================================================================
// PLAYBACK TESTS
// =============================================================================

func TestPlay_DeliversAllFrames(t *testing.T) {
	w := New(time.Millisecond, "▌")

	var got []Frame
	err := w.Play(context.Background(), "hi there", func(f Frame) error {
		got = append(got, f)
		return nil
	})
	if err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	if len(got) != len([]rune("hi there"))+1 {
		t.Fatalf("frames delivered = %d, want %d", len(got), len([]rune("hi there"))+1)
	}
	if final := got[len(got)-1]; !final.Final || final.Text != "hi there" {
		t.Errorf("final frame = %+v, want full text without marker", final)
	}
}

func TestPlay_ZeroIntervalSkipsDelay(t *testing.T) {
	w := New(0, "▌")

	start := time.Now()
	count := 0
	err := w.Play(context.Background(), strings.Repeat("a", 500), func(f Frame) error {
		count++
		return nil
	})
	if err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if count != 501 {
		t.Errorf("frames delivered = %d, want 501", count)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("zero-interval playback took %v, want fast path", elapsed)
	}
}

func TestPlay_CancellationStopsPlayback(t *testing.T) {
	w := New(5*time.Millisecond, "▌")
	ctx, cancel := context.WithCancel(context.Background())

	var got []Frame
	err := w.Play(ctx, "a long response that will be interrupted", func(f Frame) error {
		got = append(got, f)
		if len(got) == 3 {
			cancel()
		}
		return nil
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Play error = %v, want context.Canceled", err)
	}
	for _, frame := range got {
		if frame.Final {
			t.Error("canceled playback must not deliver a final frame")
		}
	}
}

func TestPlay_SinkErrorStopsPlayback(t *testing.T) {
	w := New(time.Millisecond, "▌")
	sinkErr := errors.New("client went away")

	count := 0
	err := w.Play(context.Background(), "hello", func(f Frame) error {
		count++
		if count == 2 {
			return sinkErr
		}
		return nil
	})

	if !errors.Is(err, sinkErr) {
		t.Fatalf("Play error = %v, want sink error", err)
	}
	if count != 2 {
		t.Errorf("sink calls = %d, want 2", count)
	}
}

func TestPlay_AlreadyCanceledContext(t *testing.T) {
	w := New(time.Millisecond, "▌")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	count := 0
	err := w.Play(ctx, "hello", func(f Frame) error {
		count++
		return nil
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Play error = %v, want context.Canceled", err)
	}
	if count != 0 {
		t.Errorf("sink calls = %d, want 0", count)
	}
}

func TestNew_Defaults(t *testing.T) {
	w := New(0, "")
	if w.Marker() != DefaultMarker {
		t.Errorf("Marker = %q, want default %q", w.Marker(), DefaultMarker)
	}
	if w.Interval() != 0 {
		t.Errorf("Interval = %v, want 0", w.Interval())
	}
}
