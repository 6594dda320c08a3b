package scan

import (
	"sync"
	"testing"
	"time"
)

type burstRecorder struct {
	mu    sync.Mutex
	codes []string
}

func (r *burstRecorder) emit(code string, _ int64) {
	r.mu.Lock()
	r.codes = append(r.codes, code)
	r.mu.Unlock()
}

func (r *burstRecorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.codes))
	copy(out, r.codes)
	return out
}

func feed(b *BurstAssembler, code string, startMs int64, gapMs int64) {
	ts := startMs
	for _, ch := range code {
		b.Key(ch, ts)
		ts += gapMs
	}
}

func TestBurstFlushesAfterTimeout(t *testing.T) {
	rec := &burstRecorder{}
	b := NewBurstAssembler(BurstConfig{
		InterKeyGap:    50 * time.Millisecond,
		FlushTimeout:   20 * time.Millisecond,
		MinBurstLength: 4,
	}, rec.emit)
	defer b.Close()

	feed(b, "0123", 1000, 10)

	time.Sleep(80 * time.Millisecond)
	got := rec.snapshot()
	if len(got) != 1 || got[0] != "0123" {
		t.Fatalf("codes = %v, want [0123]", got)
	}
}

func TestBurstEnterFlushesImmediately(t *testing.T) {
	rec := &burstRecorder{}
	b := NewBurstAssembler(BurstConfig{FlushTimeout: time.Minute}, rec.emit)
	defer b.Close()

	feed(b, "8991002101234", 1000, 5)
	b.Key('\n', 1100)

	got := rec.snapshot()
	if len(got) != 1 || got[0] != "8991002101234" {
		t.Fatalf("codes = %v", got)
	}
}

func TestBurstDiscardsSlowTyping(t *testing.T) {
	rec := &burstRecorder{}
	b := NewBurstAssembler(BurstConfig{
		InterKeyGap:    50 * time.Millisecond,
		FlushTimeout:   time.Minute,
		MinBurstLength: 4,
	}, rec.emit)
	defer b.Close()

	// 300ms between keys is human typing; each slow key restarts the buffer,
	// so Enter finds only the last character.
	feed(b, "abcd", 1000, 300)
	b.Key('\n', 2500)

	if got := rec.snapshot(); len(got) != 0 {
		t.Fatalf("slow typing must not emit, got %v", got)
	}
}

func TestBurstShorterThanMinimumSuppressed(t *testing.T) {
	rec := &burstRecorder{}
	b := NewBurstAssembler(BurstConfig{MinBurstLength: 4, FlushTimeout: time.Minute}, rec.emit)
	defer b.Close()

	feed(b, "ab", 1000, 5)
	b.Key('\n', 1020)

	if got := rec.snapshot(); len(got) != 0 {
		t.Fatalf("short burst must be suppressed, got %v", got)
	}
}

func TestCloseCancelsPendingFlush(t *testing.T) {
	rec := &burstRecorder{}
	b := NewBurstAssembler(BurstConfig{FlushTimeout: 20 * time.Millisecond}, rec.emit)

	feed(b, "0123", 1000, 5)
	b.Close()

	time.Sleep(60 * time.Millisecond)
	if got := rec.snapshot(); len(got) != 0 {
		t.Fatalf("closed assembler must not emit, got %v", got)
	}

	// Keys after close are ignored.
	b.Key('9', 2000)
	b.Key('\n', 2001)
	if got := rec.snapshot(); len(got) != 0 {
		t.Fatalf("keys after close must be ignored, got %v", got)
	}
}

func TestBurstBackToBackCodes(t *testing.T) {
	rec := &burstRecorder{}
	b := NewBurstAssembler(BurstConfig{FlushTimeout: time.Minute}, rec.emit)
	defer b.Close()

	feed(b, "1111222", 1000, 5)
	b.Key('\r', 1040)
	feed(b, "3333444", 2000, 5)
	b.Key('\n', 2040)

	got := rec.snapshot()
	if len(got) != 2 || got[0] != "1111222" || got[1] != "3333444" {
		t.Fatalf("codes = %v", got)
	}
}
