package resource

import "roster-tracker/internal/domain"

type Status string

const (
	StatusIdle    Status = "Idle"
	StatusLoading Status = "Loading"
	StatusReady   Status = "Ready"
	StatusFailed  Status = "Failed"
)

// State is an immutable snapshot of one fetch target.
//
// Status Ready implies Value is set and Err is nil; Status Failed implies Err is set.
// Value is the zero V in every other status.
type State[V any] struct {
	Status     Status
	Value      V
	Err        error
	Generation uint64
}

func (s State[V]) Ready() bool   { return s.Status == StatusReady }
func (s State[V]) Loading() bool { return s.Status == StatusLoading }
func (s State[V]) Failed() bool  { return s.Status == StatusFailed }

func (s State[V]) ErrorKind() domain.ErrorKind {
	return domain.Kind(s.Err)
}
