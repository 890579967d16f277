package chunking

import (
	"strings"
	"testing"
)

func TestSplitShortTextIsSingleChunk(t *testing.T) {
	s := NewSplitter(100, 10)
	out := s.Split("короткий текст")
	if len(out) != 1 || out[0] != "короткий текст" {
		t.Fatalf("unexpected chunks: %v", out)
	}
}

func TestSplitPrefersWordBoundaries(t *testing.T) {
	s := NewSplitter(20, 5)
	out := s.Split("альфа бета гамма дельта эпсилон дзета")
	for _, chunk := range out {
		if strings.HasPrefix(chunk, " ") || strings.HasSuffix(chunk, " ") {
			t.Fatalf("chunk not trimmed: %q", chunk)
		}
	}
	// No chunk should cut the middle of a word when a nearby space exists.
	for _, chunk := range out[:len(out)-1] {
		words := strings.Fields(chunk)
		if len(words) == 0 {
			t.Fatalf("empty chunk produced")
		}
	}
}

func TestSplitWindowsOverlap(t *testing.T) {
	s := NewSplitter(10, 4)
	text := strings.Repeat("абвгд ", 10)
	out := s.Split(text)
	if len(out) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(out))
	}
	for _, chunk := range out {
		if len([]rune(chunk)) > 10 {
			t.Fatalf("chunk exceeds window: %q", chunk)
		}
	}
}

func TestSplitKeepsEveryRuneAfterBoundaryBacktrack(t *testing.T) {
	// A long unbroken run right before a space makes the boundary backtrack
	// larger than the overlap; the next window must still start at the cut.
	s := NewSplitter(20, 2)
	text := strings.Repeat("a", 16) + " bcdefghijklmnopqrstuvwxyz"

	joined := strings.Join(s.Split(text), "")
	for _, r := range text {
		if r == ' ' {
			continue
		}
		if !strings.ContainsRune(joined, r) {
			t.Fatalf("rune %q lost during splitting", r)
		}
	}
}

func TestSplitEmptyText(t *testing.T) {
	s := NewSplitter(100, 10)
	if out := s.Split("   "); len(out) != 0 {
		t.Fatalf("expected no chunks for blank text, got %v", out)
	}
}
