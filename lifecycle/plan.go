package lifecycle

import "Gin_postgres_redis_asset_tool/apperr"

// Mutation is one conditional write: move row ID of Entity from From to To,
// or soft-delete it when Remove is set. It only applies if the row is still
// in From.
type Mutation struct {
	Entity Entity
	ID     uint
	Event  Event
	From   string
	To     string
	Remove bool
}

// Plan is the ordered set of mutations of one operation. All of them are
// applied or none.
type Plan []Mutation

// Find returns the mutation targeting entity+id, if any.
func (p Plan) Find(entity Entity, id uint) (Mutation, bool) {
	for _, m := range p {
		if m.Entity == entity && m.ID == id {
			return m, true
		}
	}
	return Mutation{}, false
}

type AssetRef struct {
	ID    uint
	Code  string
	State AssetState
}

type AssignmentRef struct {
	ID         uint
	AssetID    uint
	AssignedTo uint
	State      AssignmentState
}

type ReturningRef struct {
	ID           uint
	AssignmentID uint
	State        ReturningState
}

func mutate[S ~string](t Table[S], id uint, from S, ev Event) (Mutation, error) {
	tr, err := t.Next(from, ev)
	if err != nil {
		return Mutation{}, err
	}
	return Mutation{
		Entity: t.Entity,
		ID:     id,
		Event:  ev,
		From:   string(tr.From),
		To:     string(tr.To),
		Remove: tr.Removes,
	}, nil
}

// PlanAssign holds an asset for a new assignment.
func PlanAssign(asset AssetRef) (Plan, error) {
	if asset.State != AssetAvailable {
		return nil, apperr.Conflict("asset %s is not available", asset.Code)
	}
	m, err := mutate(AssetTable, asset.ID, asset.State, EvAssign)
	if err != nil {
		return nil, err
	}
	return Plan{m}, nil
}

// PlanAssignmentEdit validates an edit of a waiting assignment. When next
// is a different asset the hold moves from current to next.
func PlanAssignmentEdit(a AssignmentRef, current, next AssetRef) (Plan, error) {
	if a.State != AssignmentWaitingForAcceptance {
		return nil, apperr.Conflict("assignment %d is not in WaitingForAcceptance state", a.ID)
	}
	edit, err := mutate(AssignmentTable, a.ID, a.State, EvEdit)
	if err != nil {
		return nil, err
	}
	plan := Plan{edit}
	if next.ID == current.ID {
		return plan, nil
	}
	hold, err := PlanAssign(next)
	if err != nil {
		return nil, err
	}
	release, err := mutate(AssetTable, current.ID, current.State, EvRelease)
	if err != nil {
		return nil, err
	}
	return append(append(plan, release), hold...), nil
}

// PlanAccept is the assignee accepting.
func PlanAccept(a AssignmentRef) (Plan, error) {
	m, err := mutate(AssignmentTable, a.ID, a.State, EvAccept)
	if err != nil {
		return nil, err
	}
	return Plan{m}, nil
}

// PlanDecline is the assignee declining; the asset becomes available again.
func PlanDecline(a AssignmentRef, asset AssetRef) (Plan, error) {
	m, err := mutate(AssignmentTable, a.ID, a.State, EvDecline)
	if err != nil {
		return nil, err
	}
	release, err := mutate(AssetTable, asset.ID, asset.State, EvRelease)
	if err != nil {
		return nil, err
	}
	return Plan{m, release}, nil
}

// PlanAssignmentDelete removes a waiting or declined assignment. Removing a
// waiting one releases its asset.
func PlanAssignmentDelete(a AssignmentRef, asset AssetRef) (Plan, error) {
	if a.State != AssignmentWaitingForAcceptance && a.State != AssignmentDeclined {
		return nil, apperr.Conflict("assignment %d in %s state cannot be deleted", a.ID, a.State)
	}
	m, err := mutate(AssignmentTable, a.ID, a.State, EvDelete)
	if err != nil {
		return nil, err
	}
	if a.State.Terminal() {
		return Plan{m}, nil
	}
	release, err := mutate(AssetTable, asset.ID, asset.State, EvRelease)
	if err != nil {
		return nil, err
	}
	return Plan{m, release}, nil
}

// CheckReturnRequest validates opening a returning request on a by caller.
// Admins may open one on behalf of the assignee.
func CheckReturnRequest(a AssignmentRef, caller uint, onBehalf bool) error {
	if _, err := AssignmentTable.Next(a.State, EvRequestReturn); err != nil {
		return apperr.Conflict("assignment %d is not in Accepted state", a.ID)
	}
	if !onBehalf && a.AssignedTo != caller {
		return apperr.Conflict("user %d is not the assignee of assignment %d", caller, a.ID)
	}
	return nil
}

// PlanReturnComplete completes a returning request: the request is
// completed, the assignment returned and the asset released.
func PlanReturnComplete(r ReturningRef, a AssignmentRef, asset AssetRef) (Plan, error) {
	done, err := mutate(ReturningTable, r.ID, r.State, EvComplete)
	if err != nil {
		return nil, err
	}
	ret, err := mutate(AssignmentTable, a.ID, a.State, EvReturn)
	if err != nil {
		return nil, err
	}
	release, err := mutate(AssetTable, asset.ID, asset.State, EvRelease)
	if err != nil {
		return nil, err
	}
	return Plan{done, ret, release}, nil
}

func PlanReturnCancel(r ReturningRef) (Plan, error) {
	m, err := mutate(ReturningTable, r.ID, r.State, EvCancel)
	if err != nil {
		return nil, err
	}
	return Plan{m}, nil
}

// PlanAssetEdit changes an asset's state through an admin edit. hasHistory
// reports whether any assignment ever referenced the asset.
func PlanAssetEdit(asset AssetRef, to AssetState, hasHistory bool) (Plan, error) {
	if to == asset.State {
		return nil, nil
	}
	if asset.State == AssetAssigned {
		return nil, apperr.Conflict("cannot change state of asset %s while it is assigned", asset.Code)
	}
	ev, ok := MarkEvent(to)
	if !ok {
		return nil, apperr.Conflict("state %s can only be set by an assignment", to)
	}
	if (to == AssetWaitingForRecycling || to == AssetRecycled) && hasHistory {
		return nil, apperr.Conflict("asset %s belongs to one or more historical assignments and cannot be recycled", asset.Code)
	}
	m, err := mutate(AssetTable, asset.ID, asset.State, ev)
	if err != nil {
		return nil, err
	}
	return Plan{m}, nil
}

// PlanAssetDelete soft-deletes an asset that is not assigned and never was.
func PlanAssetDelete(asset AssetRef, hasHistory bool) (Plan, error) {
	if asset.State == AssetAssigned {
		return nil, apperr.Conflict("Cannot delete asset that is currently assigned")
	}
	if hasHistory {
		return nil, apperr.Conflict("Cannot delete asset %s because it belongs to one or more historical assignments", asset.Code)
	}
	m, err := mutate(AssetTable, asset.ID, asset.State, EvRemove)
	if err != nil {
		return nil, err
	}
	return Plan{m}, nil
}
