// Package lifecycle holds the state machines of assets, assignments and
// returning requests. It performs no I/O: decisions are returned as plans
// that the persistence layer applies in one transaction.
package lifecycle

import (
	"strings"

	"Gin_postgres_redis_asset_tool/apperr"
)

type AssetState string

const (
	AssetAvailable           AssetState = "Available"
	AssetNotAvailable        AssetState = "NotAvailable"
	AssetAssigned            AssetState = "Assigned"
	AssetWaitingForRecycling AssetState = "WaitingForRecycling"
	AssetRecycled            AssetState = "Recycled"
)

var AssetStates = []AssetState{
	AssetAvailable, AssetNotAvailable, AssetAssigned, AssetWaitingForRecycling, AssetRecycled,
}

type AssignmentState string

const (
	AssignmentWaitingForAcceptance AssignmentState = "WaitingForAcceptance"
	AssignmentAccepted             AssignmentState = "Accepted"
	AssignmentDeclined             AssignmentState = "Declined"
	AssignmentReturned             AssignmentState = "Returned"
)

var AssignmentStates = []AssignmentState{
	AssignmentWaitingForAcceptance, AssignmentAccepted, AssignmentDeclined, AssignmentReturned,
}

// Terminal reports whether the assignment no longer holds its asset.
func (s AssignmentState) Terminal() bool {
	return s == AssignmentDeclined || s == AssignmentReturned
}

type ReturningState string

const (
	ReturningWaiting   ReturningState = "WaitingForReturning"
	ReturningCompleted ReturningState = "Completed"
)

var ReturningStates = []ReturningState{ReturningWaiting, ReturningCompleted}

func ParseAssetState(s string) (AssetState, error) {
	for _, st := range AssetStates {
		if strings.EqualFold(string(st), strings.TrimSpace(s)) {
			return st, nil
		}
	}
	return "", apperr.Invalid("unknown asset state %q", s)
}

func ParseAssignmentState(s string) (AssignmentState, error) {
	for _, st := range AssignmentStates {
		if strings.EqualFold(string(st), strings.TrimSpace(s)) {
			return st, nil
		}
	}
	return "", apperr.Invalid("unknown assignment state %q", s)
}

func ParseReturningState(s string) (ReturningState, error) {
	for _, st := range ReturningStates {
		if strings.EqualFold(string(st), strings.TrimSpace(s)) {
			return st, nil
		}
	}
	return "", apperr.Invalid("unknown returning request state %q", s)
}
