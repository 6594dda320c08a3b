package scan

import (
	"strings"
	"sync"
	"time"
)

// Keystroke-burst detection defaults. A hardware keyboard-wedge scanner
// injects characters far faster than a human types; an inter-key gap above
// InterKeyGap means the buffered characters were not part of a scanner burst.
const (
	DefaultInterKeyGap  = 50 * time.Millisecond
	DefaultFlushTimeout = 100 * time.Millisecond
	// DefaultMinBurstLength suppresses stray single keystrokes that would
	// otherwise flush as bogus one-character scans.
	DefaultMinBurstLength = 4
)

type BurstConfig struct {
	InterKeyGap    time.Duration
	FlushTimeout   time.Duration
	MinBurstLength int
}

func (c BurstConfig) withDefaults() BurstConfig {
	if c.InterKeyGap <= 0 {
		c.InterKeyGap = DefaultInterKeyGap
	}
	if c.FlushTimeout <= 0 {
		c.FlushTimeout = DefaultFlushTimeout
	}
	if c.MinBurstLength < 1 {
		c.MinBurstLength = DefaultMinBurstLength
	}
	return c
}

// BurstAssembler buffers keyboard-wedge character events and emits each
// completed burst as a single logical scan. A burst terminates on Enter or
// when FlushTimeout elapses after the last character. Close discards any
// partial buffer and cancels the outstanding timer, so a truncated code can
// never fire into a dead session.
type BurstAssembler struct {
	mu        sync.Mutex
	cfg       BurstConfig
	buf       strings.Builder
	lastKeyMs int64
	timer     *time.Timer
	closed    bool
	emit      func(code string, timestampMs int64)
}

func NewBurstAssembler(cfg BurstConfig, emit func(code string, timestampMs int64)) *BurstAssembler {
	return &BurstAssembler{cfg: cfg.withDefaults(), emit: emit}
}

// Key feeds one character event. Enter ('\r' or '\n') finalizes the burst
// immediately; any other rune is buffered and the flush timer re-armed.
func (b *BurstAssembler) Key(ch rune, timestampMs int64) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}

	if ch == '\r' || ch == '\n' {
		code, ts := b.takeLocked(timestampMs)
		b.mu.Unlock()
		b.dispatch(code, ts)
		return
	}

	// A slow key means the buffered characters were human typing, not a
	// scanner burst; start over with the current character.
	if b.buf.Len() > 0 && timestampMs-b.lastKeyMs > b.cfg.InterKeyGap.Milliseconds() {
		b.buf.Reset()
	}
	b.buf.WriteRune(ch)
	b.lastKeyMs = timestampMs

	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.cfg.FlushTimeout, b.flush)
	b.mu.Unlock()
}

// flush fires when FlushTimeout elapses with no further keys: the buffered
// burst is complete and dispatched as one scan.
func (b *BurstAssembler) flush() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	code, ts := b.takeLocked(b.lastKeyMs)
	b.mu.Unlock()
	b.dispatch(code, ts)
}

// takeLocked drains the buffer and stops the timer. Caller holds b.mu.
func (b *BurstAssembler) takeLocked(timestampMs int64) (string, int64) {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	code := b.buf.String()
	b.buf.Reset()
	return code, timestampMs
}

func (b *BurstAssembler) dispatch(code string, timestampMs int64) {
	if len(code) < b.cfg.MinBurstLength {
		return
	}
	b.emit(code, timestampMs)
}

// Close discards any partial burst. Safe to call more than once.
func (b *BurstAssembler) Close() {
	b.mu.Lock()
	b.closed = true
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.buf.Reset()
	b.mu.Unlock()
}
