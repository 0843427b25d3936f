package sync

import "fmt"

// ActionKind classifies what the reconciler decided to do for one task.
type ActionKind string

const (
	CreateLocal    ActionKind = "create-local"
	UpdateLocal    ActionKind = "update-local"
	CompleteLocal  ActionKind = "complete-local"
	CompleteRemote ActionKind = "complete-remote"
	Skip           ActionKind = "skip"
)

// Action is one reconciliation decision, recorded whether or not it was
// applied (dry runs record without applying).
type Action struct {
	Kind      ActionKind
	RemoteID  string
	LocalUUID string
	Reason    string
}

// Summary is the outcome of one sync pass. Task-level failures are collected
// in Errors; they never abort the pass.
type Summary struct {
	Actions []Action

	Created         int
	Updated         int
	CompletedLocal  int
	CompletedRemote int
	Skipped         int

	Errors []error
}

func (s *Summary) record(a Action) {
	s.Actions = append(s.Actions, a)
	switch a.Kind {
	case CreateLocal:
		s.Created++
	case UpdateLocal:
		s.Updated++
	case CompleteLocal:
		s.CompletedLocal++
	case CompleteRemote:
		s.CompletedRemote++
	case Skip:
		s.Skipped++
	}
}

func (s *Summary) fail(remoteID string, err error) {
	s.Errors = append(s.Errors, fmt.Errorf("task %s: %w", remoteID, err))
}

// HasErrors reports whether any task-level error occurred during the pass.
func (s *Summary) HasErrors() bool {
	return len(s.Errors) > 0
}

func (s *Summary) String() string {
	return fmt.Sprintf("%d created, %d updated, %d completed locally, %d completed remotely, %d skipped, %d errors",
		s.Created, s.Updated, s.CompletedLocal, s.CompletedRemote, s.Skipped, len(s.Errors))
}
