package workflow

import (
	"fmt"

	"service-portal/internal/model"
)

var dispatchFlow = map[model.DispatchStatus][]model.DispatchStatus{
	model.DispatchStatusAssigned: {model.DispatchStatusEnRoute, model.DispatchStatusOnScene, model.DispatchStatusCompleted, model.DispatchStatusCancelled},
	model.DispatchStatusEnRoute:  {model.DispatchStatusOnScene, model.DispatchStatusCompleted, model.DispatchStatusCancelled},
	model.DispatchStatusOnScene:  {model.DispatchStatusCompleted, model.DispatchStatusCancelled},
}

// dispatchMirror maps a dispatch status onto the action applied to the
// parent emergency. A completed dispatch resolves the emergency.
var dispatchMirror = map[model.DispatchStatus]Action{
	model.DispatchStatusEnRoute:   ActionDepart,
	model.DispatchStatusOnScene:   ActionArrive,
	model.DispatchStatusCompleted: ActionResolve,
	model.DispatchStatusCancelled: ActionRelease,
}

func KnownDispatchStatus(s model.DispatchStatus) bool {
	switch s {
	case model.DispatchStatusAssigned, model.DispatchStatusEnRoute, model.DispatchStatusOnScene,
		model.DispatchStatusCompleted, model.DispatchStatusCancelled:
		return true
	default:
		return false
	}
}

func CanAdvanceDispatch(from, to model.DispatchStatus) bool {
	for _, next := range dispatchFlow[from] {
		if next == to {
			return true
		}
	}
	return false
}

// DispatchStep is the combined effect of moving a dispatch to a new status.
type DispatchStep struct {
	Dispatch       model.DispatchStatus
	Request        model.RequestStatus
	ReleaseVehicle bool
}

// AdvanceDispatch validates the dispatch move and derives the mirrored
// emergency status from the emergency's current one.
func AdvanceDispatch(from, to model.DispatchStatus, request model.RequestStatus) (DispatchStep, error) {
	if !KnownDispatchStatus(to) {
		return DispatchStep{}, fmt.Errorf("%w: unknown dispatch status %q", ErrInvalidTransition, to)
	}
	if !CanAdvanceDispatch(from, to) {
		return DispatchStep{}, fmt.Errorf("%w: dispatch cannot move from %s to %s", ErrInvalidTransition, from, to)
	}
	next, err := Emergency.Next(request, dispatchMirror[to])
	if err != nil {
		return DispatchStep{}, err
	}
	return DispatchStep{
		Dispatch:       to,
		Request:        next,
		ReleaseVehicle: to.Finished(),
	}, nil
}
