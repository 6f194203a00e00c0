package rounds

import (
	"fmt"

	"github.com/dmitrijs2005/crowdbid/internal/common"
	"github.com/dmitrijs2005/crowdbid/internal/server/models"
)

// CheckClose decides whether the current round of st may be closed by hand
// under mode. It returns nil or an error wrapping common.ErrPreconditionFailed.
func CheckClose(mode models.RoundEndMode, st *State) error {
	if st.MaxRound == 0 {
		return fmt.Errorf("%w: no bids yet", common.ErrPreconditionFailed)
	}
	if st.RoundComplete {
		return fmt.Errorf("%w: round %d is already closed", common.ErrPreconditionFailed, st.MaxRound)
	}

	switch mode {
	case models.Auto:
		return fmt.Errorf("%w: rounds close automatically", common.ErrPreconditionFailed)
	case models.ManualAfterLast:
		if st.MissingCount > 0 {
			return fmt.Errorf("%w: %d bidders have not bid in round %d",
				common.ErrPreconditionFailed, st.MissingCount, st.CurrentRound)
		}
		return nil
	case models.ManualAfterFirst:
		if st.MissingCount >= st.BidderCount {
			return fmt.Errorf("%w: nobody has bid in round %d", common.ErrPreconditionFailed, st.CurrentRound)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown round end mode %d", common.ErrPreconditionFailed, int(mode))
	}
}

// CloseTarget is the last_round value a successful close persists.
func CloseTarget(st *State) int {
	return st.CurrentRound + 1
}
