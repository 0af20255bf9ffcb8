package workflow

import (
	"errors"
	"fmt"

	"service-portal/internal/model"
)

var ErrInvalidTransition = errors.New("invalid status transition")

type Action string

const (
	ActionAssign   Action = "assign"
	ActionDepart   Action = "depart"
	ActionArrive   Action = "arrive"
	ActionStart    Action = "start"
	ActionResolve  Action = "resolve"
	ActionRelease  Action = "release"
	ActionCancel   Action = "cancel"
	ActionEscalate Action = "escalate"
	ActionReject   Action = "reject"
)

// Lifecycle is a closed status vocabulary plus the (state, action) table
// that moves a request between those states.
type Lifecycle struct {
	kind     model.RequestKind
	table    map[model.RequestStatus]map[Action]model.RequestStatus
	terminal map[model.RequestStatus]struct{}
}

func newLifecycle(kind model.RequestKind, table map[model.RequestStatus]map[Action]model.RequestStatus, terminal ...model.RequestStatus) *Lifecycle {
	l := &Lifecycle{
		kind:     kind,
		table:    table,
		terminal: make(map[model.RequestStatus]struct{}, len(terminal)),
	}
	for _, s := range terminal {
		l.terminal[s] = struct{}{}
	}
	return l
}

// Emergency: pending -> assigned -> en_route -> on_scene -> resolved.
// Release sends a dispatched request back to the queue for reassignment.
var Emergency = newLifecycle(model.RequestKindEmergency,
	map[model.RequestStatus]map[Action]model.RequestStatus{
		model.RequestStatusPending: {
			ActionAssign: model.RequestStatusAssigned,
			ActionCancel: model.RequestStatusCancelled,
		},
		model.RequestStatusAssigned: {
			ActionDepart:  model.RequestStatusEnRoute,
			ActionArrive:  model.RequestStatusOnScene,
			ActionResolve: model.RequestStatusResolved,
			ActionRelease: model.RequestStatusPending,
			ActionCancel:  model.RequestStatusCancelled,
		},
		model.RequestStatusEnRoute: {
			ActionArrive:  model.RequestStatusOnScene,
			ActionResolve: model.RequestStatusResolved,
			ActionRelease: model.RequestStatusPending,
			ActionCancel:  model.RequestStatusCancelled,
		},
		model.RequestStatusOnScene: {
			ActionResolve: model.RequestStatusResolved,
			ActionRelease: model.RequestStatusPending,
			ActionCancel:  model.RequestStatusCancelled,
		},
	},
	model.RequestStatusResolved, model.RequestStatusCancelled,
)

// Complaint: pending -> assigned -> in_progress -> resolved, with escalated
// and rejected branching off the early states.
var Complaint = newLifecycle(model.RequestKindComplaint,
	map[model.RequestStatus]map[Action]model.RequestStatus{
		model.RequestStatusPending: {
			ActionAssign:   model.RequestStatusAssigned,
			ActionEscalate: model.RequestStatusEscalated,
			ActionReject:   model.RequestStatusRejected,
		},
		model.RequestStatusAssigned: {
			ActionStart:    model.RequestStatusInProgress,
			ActionResolve:  model.RequestStatusResolved,
			ActionEscalate: model.RequestStatusEscalated,
			ActionReject:   model.RequestStatusRejected,
		},
		model.RequestStatusInProgress: {
			ActionResolve: model.RequestStatusResolved,
		},
		model.RequestStatusEscalated: {
			ActionAssign:  model.RequestStatusAssigned,
			ActionResolve: model.RequestStatusResolved,
			ActionReject:  model.RequestStatusRejected,
		},
	},
	model.RequestStatusResolved, model.RequestStatusRejected,
)

func (l *Lifecycle) Kind() model.RequestKind {
	return l.kind
}

// Knows reports whether status belongs to this lifecycle's vocabulary.
func (l *Lifecycle) Knows(status model.RequestStatus) bool {
	if _, ok := l.table[status]; ok {
		return true
	}
	_, ok := l.terminal[status]
	return ok
}

func (l *Lifecycle) IsTerminal(status model.RequestStatus) bool {
	_, ok := l.terminal[status]
	return ok
}

// Next returns the state reached by applying action to from.
func (l *Lifecycle) Next(from model.RequestStatus, action Action) (model.RequestStatus, error) {
	if !l.Knows(from) {
		return "", fmt.Errorf("%w: unknown %s status %q", ErrInvalidTransition, l.kind, from)
	}
	next, ok := l.table[from][action]
	if !ok {
		return "", fmt.Errorf("%w: cannot %s a %s %s request", ErrInvalidTransition, action, from, l.kind)
	}
	return next, nil
}

// ActionFor finds the action that moves from to target, for callers that
// speak in target statuses rather than actions.
func (l *Lifecycle) ActionFor(from, target model.RequestStatus) (Action, error) {
	if !l.Knows(target) {
		return "", fmt.Errorf("%w: unknown %s status %q", ErrInvalidTransition, l.kind, target)
	}
	for action, next := range l.table[from] {
		if next == target {
			return action, nil
		}
	}
	return "", fmt.Errorf("%w: %s request cannot move from %s to %s", ErrInvalidTransition, l.kind, from, target)
}
