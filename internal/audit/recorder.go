// Package audit records a decision entry for every state-changing action.
package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fentz26/todo/internal/models"
)

// Outcomes used by the service layer.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
)

// Entry is one recorded decision.
type Entry struct {
	Action     string    `json:"action"`
	InputsHash string    `json:"inputs_hash"`
	Outcome    string    `json:"outcome"`
	TaskID     string    `json:"task_id,omitempty"`
	Details    string    `json:"details,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Recorder emits entries to the debug log and keeps them for the
// lifetime of the process.
type Recorder struct {
	logger *log.Logger
	now    func() time.Time

	mu      sync.Mutex
	entries []Entry
}

// NewRecorder creates a recorder logging through logger.
func NewRecorder(logger *log.Logger) *Recorder {
	return &Recorder{logger: logger, now: time.Now}
}

// Record writes an entry for a state-mutating action.
func (r *Recorder) Record(action string, inputs interface{}, outcome, taskID, details string) Entry {
	e := Entry{
		Action:     action,
		InputsHash: hashInputs(inputs),
		Outcome:    outcome,
		TaskID:     taskID,
		Details:    details,
		Timestamp:  r.now(),
	}

	r.mu.Lock()
	r.entries = append(r.entries, e)
	r.mu.Unlock()

	kv := []interface{}{"action", action, "outcome", outcome, "inputs", e.InputsHash[:12]}
	if taskID != "" {
		kv = append(kv, "task", models.Ref(taskID))
	}
	if details != "" {
		kv = append(kv, "details", details)
	}
	r.logger.Debug("audit", kv...)
	return e
}

// Entries returns a copy of everything recorded so far.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

// hashInputs creates a SHA256 hash of the inputs for reproducibility.
func hashInputs(inputs interface{}) string {
	data, err := json.Marshal(inputs)
	if err != nil {
		return "hash_error_000"
	}
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
