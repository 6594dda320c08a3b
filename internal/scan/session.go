package scan

import (
	"sync"
	"time"

	"scanbridge/internal/domain"
)

// DefaultRepeatWindow is the human re-scan detection window: two scans of the
// same code closer together than this are a deliberate quantity signal, not
// two separate items.
const DefaultRepeatWindow = 2 * time.Second

// DecisionKind is what the session decided about an incoming scan.
type DecisionKind int

const (
	// DecisionEmit: fresh scan, pass downstream with Decision.Multiplier.
	DecisionEmit DecisionKind = iota
	// DecisionMultiplierPrompt: matching repeat inside the window. Nothing is
	// emitted; the caller surfaces a quantity-selection interaction.
	DecisionMultiplierPrompt
)

type Decision struct {
	Kind       DecisionKind
	Multiplier int
	Result     domain.ScanResult
}

// Session is the per-scan-surface deduplication and multiplier state machine.
// It tracks only the last scan; closing the surface must call Reset so state
// never leaks into the next session.
type Session struct {
	mu              sync.Mutex
	repeatWindow    time.Duration
	lastCode        string
	lastTimestampMs int64
	lastResult      domain.ScanResult
	promptPending   bool
	armedMultiplier int
}

func NewSession(repeatWindow time.Duration) *Session {
	if repeatWindow <= 0 {
		repeatWindow = DefaultRepeatWindow
	}
	return &Session{repeatWindow: repeatWindow}
}

// Submit runs the transition rules for one incoming scan result.
func (s *Session) Submit(res domain.ScanResult) Decision {
	s.mu.Lock()
	defer s.mu.Unlock()

	code := res.Code()
	t := res.TimestampMs
	elapsed := t - s.lastTimestampMs

	if s.lastCode != "" && code == s.lastCode && elapsed >= 0 && elapsed <= s.repeatWindow.Milliseconds() {
		s.lastTimestampMs = t
		s.lastResult = res
		s.promptPending = true
		return Decision{Kind: DecisionMultiplierPrompt, Result: res}
	}

	multiplier := 1
	if s.armedMultiplier > 0 {
		multiplier = s.armedMultiplier
		s.armedMultiplier = 0
	}
	s.lastCode = code
	s.lastTimestampMs = t
	s.lastResult = res
	s.promptPending = false
	return Decision{Kind: DecisionEmit, Multiplier: multiplier, Result: res}
}

// Arm sets a quick-quantity multiplier applied to the next emitted scan.
func (s *Session) Arm(multiplier int) {
	if multiplier < 1 {
		multiplier = 1
	}
	s.mu.Lock()
	s.armedMultiplier = multiplier
	s.mu.Unlock()
}

// ConsumePrompt returns the scan that triggered an outstanding multiplier
// prompt, if any, and clears the prompt so a quantity answer applies once.
func (s *Session) ConsumePrompt() (domain.ScanResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.promptPending {
		return domain.ScanResult{}, false
	}
	s.promptPending = false
	return s.lastResult, true
}

// Reset clears all dedup state. Called when the scan surface closes.
func (s *Session) Reset() {
	s.mu.Lock()
	s.lastCode = ""
	s.lastTimestampMs = 0
	s.lastResult = domain.ScanResult{}
	s.promptPending = false
	s.armedMultiplier = 0
	s.mu.Unlock()
}
