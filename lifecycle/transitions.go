package lifecycle

import "Gin_postgres_redis_asset_tool/apperr"

type Entity string

const (
	EntityAsset            Entity = "asset"
	EntityAssignment       Entity = "assignment"
	EntityReturningRequest Entity = "returning_request"
)

type Event string

const (
	// asset
	EvAssign                  Event = "assign"
	EvRelease                 Event = "release"
	EvMarkAvailable           Event = "mark_available"
	EvMarkNotAvailable        Event = "mark_not_available"
	EvMarkWaitingForRecycling Event = "mark_waiting_for_recycling"
	EvMarkRecycled            Event = "mark_recycled"
	EvRemove                  Event = "remove"

	// assignment
	EvEdit          Event = "edit"
	EvAccept        Event = "accept"
	EvDecline       Event = "decline"
	EvRequestReturn Event = "request_return"
	EvReturn        Event = "return"
	EvDelete        Event = "delete"

	// returning request
	EvComplete Event = "complete"
	EvCancel   Event = "cancel"
)

// Transition is a single allowed edge. Removes marks edges that take the
// row out of consideration (soft delete) instead of changing its state.
type Transition[S ~string] struct {
	From    S
	Event   Event
	To      S
	Removes bool
}

type Table[S ~string] struct {
	Entity Entity
	Rows   []Transition[S]
}

// Next returns the transition for from+ev, or a Conflict error when the
// pair is not in the table.
func (t Table[S]) Next(from S, ev Event) (Transition[S], error) {
	for _, tr := range t.Rows {
		if tr.From == from && tr.Event == ev {
			return tr, nil
		}
	}
	return Transition[S]{}, apperr.Conflict("cannot %s %s in %s state", ev, t.Entity, from)
}

// Events lists the events accepted from a state.
func (t Table[S]) Events(from S) []Event {
	var out []Event
	for _, tr := range t.Rows {
		if tr.From == from {
			out = append(out, tr.Event)
		}
	}
	return out
}

var editable = []AssetState{AssetAvailable, AssetNotAvailable, AssetWaitingForRecycling, AssetRecycled}

var markEvents = map[AssetState]Event{
	AssetAvailable:           EvMarkAvailable,
	AssetNotAvailable:        EvMarkNotAvailable,
	AssetWaitingForRecycling: EvMarkWaitingForRecycling,
	AssetRecycled:            EvMarkRecycled,
}

// MarkEvent maps a requested asset state to the admin edit event.
func MarkEvent(to AssetState) (Event, bool) {
	ev, ok := markEvents[to]
	return ev, ok
}

func assetRows() []Transition[AssetState] {
	rows := []Transition[AssetState]{
		{From: AssetAvailable, Event: EvAssign, To: AssetAssigned},
		{From: AssetAssigned, Event: EvRelease, To: AssetAvailable},
	}
	for _, from := range editable {
		for _, to := range editable {
			rows = append(rows, Transition[AssetState]{From: from, Event: markEvents[to], To: to})
		}
		rows = append(rows, Transition[AssetState]{From: from, Event: EvRemove, To: from, Removes: true})
	}
	return rows
}

var AssetTable = Table[AssetState]{Entity: EntityAsset, Rows: assetRows()}

var AssignmentTable = Table[AssignmentState]{
	Entity: EntityAssignment,
	Rows: []Transition[AssignmentState]{
		{From: AssignmentWaitingForAcceptance, Event: EvEdit, To: AssignmentWaitingForAcceptance},
		{From: AssignmentWaitingForAcceptance, Event: EvAccept, To: AssignmentAccepted},
		{From: AssignmentWaitingForAcceptance, Event: EvDecline, To: AssignmentDeclined},
		{From: AssignmentWaitingForAcceptance, Event: EvDelete, To: AssignmentWaitingForAcceptance, Removes: true},
		{From: AssignmentDeclined, Event: EvDelete, To: AssignmentDeclined, Removes: true},
		{From: AssignmentAccepted, Event: EvRequestReturn, To: AssignmentAccepted},
		{From: AssignmentAccepted, Event: EvReturn, To: AssignmentReturned},
	},
}

var ReturningTable = Table[ReturningState]{
	Entity: EntityReturningRequest,
	Rows: []Transition[ReturningState]{
		{From: ReturningWaiting, Event: EvComplete, To: ReturningCompleted},
		{From: ReturningWaiting, Event: EvCancel, To: ReturningWaiting, Removes: true},
	},
}
