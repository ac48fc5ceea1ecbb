package editor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultDebounce is the pause after the last keystroke before an
	// automatic commit fires.
	DefaultDebounce = 500 * time.Millisecond

	maxValueLength = 250
)

var (
	// ErrTooLong rejects values above the storage limit.
	ErrTooLong = errors.New("value must be at most 250 characters")
	// ErrNewline rejects multi-line values.
	ErrNewline = errors.New("value must not contain line breaks")
)

// Phase is the lifecycle position of the single edit slot.
type Phase int

const (
	// PhaseIdle means no cell is being edited.
	PhaseIdle Phase = iota
	// PhaseEditing means a cell holds unsaved input.
	PhaseEditing
	// PhaseSaving means a commit is in flight.
	PhaseSaving
)

// Target identifies the cell being edited plus the credentials needed to
// persist it.
type Target struct {
	ProjectID string
	KeyID     string
	Locale    string
	Token     string
}

// CommitFunc persists a normalized value for the target cell. A nil value
// clears the stored translation. The returned error message is surfaced
// inline.
type CommitFunc func(ctx context.Context, target Target, value *string) error

// Snapshot is a render-ready copy of the editor state.
type Snapshot struct {
	Phase         Phase
	Target        Target
	Value         string
	Err           string
	LastCommitted *string
}

// Editor drives one inline-edit slot. At most one cell is being edited at a
// time; starting a new edit replaces the previous slot wholesale. Input is
// committed automatically after a debounce pause, immediately on blur, and
// discarded on cancel.
type Editor struct {
	mu       sync.Mutex
	commit   CommitFunc
	debounce time.Duration

	phase         Phase
	target        Target
	value         string
	errMsg        string
	lastCommitted *string

	// epoch fences async completions: responses belonging to a superseded
	// edit session must not touch newer state.
	epoch uint64
	timer *time.Timer
}

// Option customises Editor construction.
type Option func(*Editor)

// WithDebounce overrides the autosave pause. Intended for tests.
func WithDebounce(d time.Duration) Option {
	return func(e *Editor) {
		if d > 0 {
			e.debounce = d
		}
	}
}

// New constructs an idle Editor committing through fn.
func New(fn CommitFunc, opts ...Option) *Editor {
	e := &Editor{
		commit:   fn,
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Snapshot returns a copy of the current state for rendering.
func (e *Editor) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		Phase:         e.phase,
		Target:        e.target,
		Value:         e.value,
		Err:           e.errMsg,
		LastCommitted: e.lastCommitted,
	}
}

// StartEditing opens the slot for the target cell, replacing any previous
// edit. The current stored value becomes both the visible input and the
// revert point.
func (e *Editor) StartEditing(target Target, currentValue *string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stopTimerLocked()
	e.epoch++
	e.phase = PhaseEditing
	e.target = target
	e.errMsg = ""
	e.lastCommitted = copyValue(currentValue)
	if currentValue != nil {
		e.value = *currentValue
	} else {
		e.value = ""
	}
}

// Input records a keystroke and reschedules the debounced autosave. Calls
// while the slot is idle are ignored.
func (e *Editor) Input(value string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase == PhaseIdle {
		return
	}
	e.value = value
	e.stopTimerLocked()

	epoch := e.epoch
	e.timer = time.AfterFunc(e.debounce, func() {
		e.commitAsync(epoch)
	})
}

// Blur commits the current input synchronously. On success (or when the value
// is unchanged) the slot closes; validation and save failures keep it open
// with an inline error.
func (e *Editor) Blur(ctx context.Context) {
	e.mu.Lock()
	if e.phase == PhaseIdle {
		e.mu.Unlock()
		return
	}
	e.stopTimerLocked()

	value := e.value
	target := e.target
	epoch := e.epoch

	normalized, err := normalize(value)
	if err != nil {
		e.errMsg = err.Error()
		e.mu.Unlock()
		return
	}
	if equalValues(normalized, e.lastCommitted) {
		e.resetLocked()
		e.mu.Unlock()
		return
	}

	e.phase = PhaseSaving
	e.errMsg = ""
	e.mu.Unlock()

	commitErr := e.commit(ctx, target, normalized)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.epoch != epoch {
		return
	}
	if commitErr != nil {
		e.phase = PhaseEditing
		e.errMsg = commitErr.Error()
		return
	}
	e.resetLocked()
}

// Cancel reverts to the last external value and closes the slot without
// saving anything.
func (e *Editor) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase == PhaseIdle {
		return
	}
	e.stopTimerLocked()
	e.epoch++
	e.resetLocked()
}

// commitAsync is the debounce timer body. The slot stays open afterwards so
// typing can continue.
func (e *Editor) commitAsync(epoch uint64) {
	e.mu.Lock()
	if e.epoch != epoch || e.phase == PhaseIdle {
		e.mu.Unlock()
		return
	}

	value := e.value
	target := e.target

	normalized, err := normalize(value)
	if err != nil {
		e.errMsg = err.Error()
		e.mu.Unlock()
		return
	}
	if equalValues(normalized, e.lastCommitted) {
		e.mu.Unlock()
		return
	}

	e.phase = PhaseSaving
	e.errMsg = ""
	e.mu.Unlock()

	commitErr := e.commit(context.Background(), target, normalized)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.epoch != epoch {
		// A newer edit session owns the slot; drop this result.
		return
	}
	e.phase = PhaseEditing
	if commitErr != nil {
		e.errMsg = commitErr.Error()
		return
	}
	e.errMsg = ""
	e.lastCommitted = normalized
}

func (e *Editor) resetLocked() {
	e.phase = PhaseIdle
	e.target = Target{}
	e.value = ""
	e.errMsg = ""
	e.lastCommitted = nil
}

func (e *Editor) stopTimerLocked() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

// normalize trims the input and maps empty input to nil, the "clear this
// translation" representation. Over-long and multi-line values are rejected.
func normalize(value string) (*string, error) {
	trimmed := strings.TrimSpace(value)
	if strings.ContainsAny(trimmed, "\n\r") {
		return nil, ErrNewline
	}
	if len([]rune(trimmed)) > maxValueLength {
		return nil, ErrTooLong
	}
	if trimmed == "" {
		return nil, nil
	}
	return &trimmed, nil
}

func equalValues(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func copyValue(v *string) *string {
	if v == nil {
		return nil
	}
	copied := *v
	return &copied
}
