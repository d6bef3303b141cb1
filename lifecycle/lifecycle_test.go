package lifecycle

import (
	"testing"

	"Gin_postgres_redis_asset_tool/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allEvents = []Event{
	EvAssign, EvRelease, EvMarkAvailable, EvMarkNotAvailable, EvMarkWaitingForRecycling, EvMarkRecycled, EvRemove,
	EvEdit, EvAccept, EvDecline, EvRequestReturn, EvReturn, EvDelete,
	EvComplete, EvCancel,
}

func TestAssignmentTableEveryPair(t *testing.T) {
	type edge struct {
		to      AssignmentState
		removes bool
	}
	allowed := map[AssignmentState]map[Event]edge{
		AssignmentWaitingForAcceptance: {
			EvEdit:    {AssignmentWaitingForAcceptance, false},
			EvAccept:  {AssignmentAccepted, false},
			EvDecline: {AssignmentDeclined, false},
			EvDelete:  {AssignmentWaitingForAcceptance, true},
		},
		AssignmentAccepted: {
			EvRequestReturn: {AssignmentAccepted, false},
			EvReturn:        {AssignmentReturned, false},
		},
		AssignmentDeclined: {
			EvDelete: {AssignmentDeclined, true},
		},
		AssignmentReturned: {},
	}

	for _, from := range AssignmentStates {
		for _, ev := range allEvents {
			tr, err := AssignmentTable.Next(from, ev)
			want, ok := allowed[from][ev]
			if !ok {
				assert.Truef(t, apperr.Is(err, apperr.KindConflict), "%s --%s--> should be refused", from, ev)
				continue
			}
			require.NoErrorf(t, err, "%s --%s-->", from, ev)
			assert.Equal(t, want.to, tr.To)
			assert.Equal(t, want.removes, tr.Removes)
		}
	}
}

func TestReturningTableEveryPair(t *testing.T) {
	for _, from := range ReturningStates {
		for _, ev := range allEvents {
			tr, err := ReturningTable.Next(from, ev)
			switch {
			case from == ReturningWaiting && ev == EvComplete:
				require.NoError(t, err)
				assert.Equal(t, ReturningCompleted, tr.To)
			case from == ReturningWaiting && ev == EvCancel:
				require.NoError(t, err)
				assert.True(t, tr.Removes)
			default:
				assert.Truef(t, apperr.Is(err, apperr.KindConflict), "%s --%s--> should be refused", from, ev)
			}
		}
	}
}

func TestAssetTableEveryPair(t *testing.T) {
	for _, from := range AssetStates {
		for _, ev := range allEvents {
			tr, err := AssetTable.Next(from, ev)
			var ok bool
			switch ev {
			case EvAssign:
				ok = from == AssetAvailable
			case EvRelease:
				ok = from == AssetAssigned
			case EvMarkAvailable, EvMarkNotAvailable, EvMarkWaitingForRecycling, EvMarkRecycled, EvRemove:
				ok = from != AssetAssigned
			}
			if !ok {
				assert.Truef(t, apperr.Is(err, apperr.KindConflict), "%s --%s--> should be refused", from, ev)
				continue
			}
			require.NoErrorf(t, err, "%s --%s-->", from, ev)
			if ev == EvRemove {
				assert.True(t, tr.Removes)
			}
		}
	}
	assert.ElementsMatch(t, []Event{EvRelease}, AssetTable.Events(AssetAssigned))
}

func TestPlanAssign(t *testing.T) {
	plan, err := PlanAssign(AssetRef{ID: 1, Code: "LA000001", State: AssetAvailable})
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.Equal(t, Mutation{Entity: EntityAsset, ID: 1, Event: EvAssign, From: "Available", To: "Assigned"}, plan[0])

	for _, st := range []AssetState{AssetNotAvailable, AssetAssigned, AssetWaitingForRecycling, AssetRecycled} {
		_, err := PlanAssign(AssetRef{ID: 1, State: st})
		assert.True(t, apperr.Is(err, apperr.KindConflict), st)
	}
}

func TestPlanDeclineReleasesAsset(t *testing.T) {
	plan, err := PlanDecline(
		AssignmentRef{ID: 3, AssetID: 1, State: AssignmentWaitingForAcceptance},
		AssetRef{ID: 1, State: AssetAssigned},
	)
	require.NoError(t, err)
	a, ok := plan.Find(EntityAssignment, 3)
	require.True(t, ok)
	assert.Equal(t, string(AssignmentDeclined), a.To)
	asset, ok := plan.Find(EntityAsset, 1)
	require.True(t, ok)
	assert.Equal(t, string(AssetAvailable), asset.To)

	for _, st := range []AssignmentState{AssignmentAccepted, AssignmentDeclined, AssignmentReturned} {
		_, err := PlanDecline(AssignmentRef{ID: 3, State: st}, AssetRef{ID: 1, State: AssetAssigned})
		assert.True(t, apperr.Is(err, apperr.KindConflict), st)
		_, err = PlanAccept(AssignmentRef{ID: 3, State: st})
		assert.True(t, apperr.Is(err, apperr.KindConflict), st)
	}
}

func TestPlanAssignmentDelete(t *testing.T) {
	asset := AssetRef{ID: 1, State: AssetAssigned}

	plan, err := PlanAssignmentDelete(AssignmentRef{ID: 2, State: AssignmentWaitingForAcceptance}, asset)
	require.NoError(t, err)
	require.Len(t, plan, 2)
	assert.True(t, plan[0].Remove)
	assert.Equal(t, string(AssetAvailable), plan[1].To)

	plan, err = PlanAssignmentDelete(AssignmentRef{ID: 2, State: AssignmentDeclined}, AssetRef{ID: 1, State: AssetAvailable})
	require.NoError(t, err)
	require.Len(t, plan, 1)

	for _, st := range []AssignmentState{AssignmentAccepted, AssignmentReturned} {
		_, err := PlanAssignmentDelete(AssignmentRef{ID: 2, State: st}, asset)
		assert.True(t, apperr.Is(err, apperr.KindConflict), st)
	}
}

func TestPlanAssignmentEdit(t *testing.T) {
	a := AssignmentRef{ID: 5, AssetID: 1, State: AssignmentWaitingForAcceptance}
	current := AssetRef{ID: 1, State: AssetAssigned}

	plan, err := PlanAssignmentEdit(a, current, current)
	require.NoError(t, err)
	assert.Len(t, plan, 1)

	plan, err = PlanAssignmentEdit(a, current, AssetRef{ID: 2, State: AssetAvailable})
	require.NoError(t, err)
	released, ok := plan.Find(EntityAsset, 1)
	require.True(t, ok)
	assert.Equal(t, string(AssetAvailable), released.To)
	held, ok := plan.Find(EntityAsset, 2)
	require.True(t, ok)
	assert.Equal(t, string(AssetAssigned), held.To)

	_, err = PlanAssignmentEdit(a, current, AssetRef{ID: 2, State: AssetNotAvailable})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	a.State = AssignmentAccepted
	_, err = PlanAssignmentEdit(a, current, current)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestCheckReturnRequest(t *testing.T) {
	a := AssignmentRef{ID: 9, AssignedTo: 4, State: AssignmentAccepted}
	assert.NoError(t, CheckReturnRequest(a, 4, false))
	assert.True(t, apperr.Is(CheckReturnRequest(a, 5, false), apperr.KindConflict))
	assert.NoError(t, CheckReturnRequest(a, 1, true))

	a.State = AssignmentWaitingForAcceptance
	assert.True(t, apperr.Is(CheckReturnRequest(a, 4, false), apperr.KindConflict))
}

func TestPlanReturnComplete(t *testing.T) {
	r := ReturningRef{ID: 1, AssignmentID: 2, State: ReturningWaiting}
	a := AssignmentRef{ID: 2, AssetID: 3, State: AssignmentAccepted}
	asset := AssetRef{ID: 3, State: AssetAssigned}

	plan, err := PlanReturnComplete(r, a, asset)
	require.NoError(t, err)
	require.Len(t, plan, 3)
	assert.Equal(t, string(ReturningCompleted), plan[0].To)
	assert.Equal(t, string(AssignmentReturned), plan[1].To)
	assert.Equal(t, string(AssetAvailable), plan[2].To)

	r.State = ReturningCompleted
	_, err = PlanReturnComplete(r, a, asset)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestPlanAssetEditAndDelete(t *testing.T) {
	avail := AssetRef{ID: 1, Code: "LA000001", State: AssetAvailable}

	plan, err := PlanAssetEdit(avail, AssetAvailable, true)
	require.NoError(t, err)
	assert.Empty(t, plan)

	plan, err = PlanAssetEdit(avail, AssetNotAvailable, true)
	require.NoError(t, err)
	assert.Len(t, plan, 1)

	_, err = PlanAssetEdit(avail, AssetRecycled, true)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	_, err = PlanAssetEdit(avail, AssetRecycled, false)
	assert.NoError(t, err)
	_, err = PlanAssetEdit(avail, AssetAssigned, false)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	_, err = PlanAssetEdit(AssetRef{ID: 1, State: AssetAssigned}, AssetAvailable, false)
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	_, err = PlanAssetDelete(AssetRef{ID: 1, State: AssetAssigned}, false)
	require.Error(t, err)
	assert.Equal(t, "Cannot delete asset that is currently assigned", err.Error())
	_, err = PlanAssetDelete(avail, true)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	plan, err = PlanAssetDelete(avail, false)
	require.NoError(t, err)
	assert.True(t, plan[0].Remove)
}

func TestParseStates(t *testing.T) {
	st, err := ParseAssetState(" notavailable ")
	require.NoError(t, err)
	assert.Equal(t, AssetNotAvailable, st)

	_, err = ParseAssetState("Lost")
	assert.True(t, apperr.Is(err, apperr.KindInvalid))

	as, err := ParseAssignmentState("accepted")
	require.NoError(t, err)
	assert.Equal(t, AssignmentAccepted, as)

	rs, err := ParseReturningState("Completed")
	require.NoError(t, err)
	assert.Equal(t, ReturningCompleted, rs)
}
