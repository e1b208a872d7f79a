package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allStages = []Stage{
	StageAwaitingAgreements,
	StageSearching,
	StageUnderContract,
	StageClosed,
	StageMovedIn,
	StagePaused,
}

func legalPayload(target Stage) TransitionPayload {
	now := time.Now().UTC()
	price := decimal.NewFromInt(425000)
	switch target {
	case StageUnderContract:
		return TransitionPayload{ContractPrice: &price}
	case StageClosed:
		return TransitionPayload{ActualClosingDate: &now}
	case StageMovedIn:
		return TransitionPayload{MoveInDate: &now}
	}
	return TransitionPayload{}
}

func searchInStage(stage Stage) *HousingSearch {
	now := time.Now().UTC()
	hs := &HousingSearch{
		ApplicantID:      uuid.New(),
		Stage:            stage,
		StageChangedDate: now.Add(-24 * time.Hour),
		IsActive:         true,
	}
	url := "https://docs.example.org/agreement.pdf"
	hs.BrokerAgreementSignedAt = &now
	hs.BrokerAgreementURL = &url
	hs.CommunityRulesSignedAt = &now
	hs.CommunityRulesURL = &url
	return hs
}

func TestTransitionTableLegality(t *testing.T) {
	legal := map[Stage][]Stage{
		StageAwaitingAgreements: {StageSearching},
		StageSearching:          {StagePaused, StageUnderContract},
		StagePaused:             {StageSearching},
		StageUnderContract:      {StageSearching, StageClosed},
		StageClosed:             {StageSearching, StageMovedIn},
		StageMovedIn:            {},
	}

	isLegal := func(from, to Stage) bool {
		for _, target := range legal[from] {
			if target == to {
				return true
			}
		}
		return false
	}

	actor := uuid.New()
	now := time.Now().UTC()

	for _, from := range allStages {
		for _, to := range allStages {
			if from == to {
				continue
			}
			t.Run(string(from)+"_to_"+string(to), func(t *testing.T) {
				hs := searchInStage(from)
				before := *hs

				old, err := hs.ApplyTransition(to, legalPayload(to), actor, now)
				if isLegal(from, to) {
					require.NoError(t, err)
					assert.Equal(t, from, old)
					assert.Equal(t, to, hs.Stage)
					assert.Equal(t, now, hs.StageChangedDate)
					require.NotNil(t, hs.StageChangedBy)
					assert.Equal(t, actor, *hs.StageChangedBy)
				} else {
					require.ErrorIs(t, err, ErrValidation)
					assert.Contains(t, err.Error(), string(from))
					assert.Contains(t, err.Error(), string(to))
					// No partial mutation on a rejected guard
					assert.Equal(t, before.Stage, hs.Stage)
					assert.Equal(t, before.StageChangedDate, hs.StageChangedDate)
				}
			})
		}
	}
}

func TestAgreementGate(t *testing.T) {
	actor := uuid.New()
	now := time.Now().UTC()
	url := "https://docs.example.org/agreement.pdf"

	tests := []struct {
		name     string
		broker   bool
		rules    bool
		expectOK bool
	}{
		{"neither signed", false, false, false},
		{"broker only", true, false, false},
		{"rules only", false, true, false},
		{"both signed", true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hs := &HousingSearch{
				ApplicantID:      uuid.New(),
				Stage:            StageAwaitingAgreements,
				StageChangedDate: now.Add(-time.Hour),
			}
			if tt.broker {
				require.NoError(t, hs.RecordAgreementSigned(AgreementBroker, url, now))
			}
			if tt.rules {
				require.NoError(t, hs.RecordAgreementSigned(AgreementCommunityRules, url, now))
			}

			_, err := hs.ApplyTransition(StageSearching, TransitionPayload{}, actor, now)
			if tt.expectOK {
				require.NoError(t, err)
				assert.Equal(t, StageSearching, hs.Stage)
			} else {
				require.ErrorIs(t, err, ErrValidation)
				assert.Equal(t, StageAwaitingAgreements, hs.Stage)
			}
		})
	}
}

func TestRecordAgreementValidation(t *testing.T) {
	hs := searchInStage(StageAwaitingAgreements)
	now := time.Now().UTC()

	err := hs.RecordAgreementSigned(AgreementBroker, "", now)
	assert.ErrorIs(t, err, ErrValidation)

	err = hs.RecordAgreementSigned(AgreementType("Lease"), "https://x.example/doc", now)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestContractRequiresPositivePrice(t *testing.T) {
	actor := uuid.New()
	now := time.Now().UTC()

	hs := searchInStage(StageSearching)
	zero := decimal.Zero
	_, err := hs.ApplyTransition(
		StageUnderContract,
		TransitionPayload{ContractPrice: &zero},
		actor, now,
	)
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, StageSearching, hs.Stage)

	_, err = hs.ApplyTransition(StageUnderContract, TransitionPayload{}, actor, now)
	require.ErrorIs(t, err, ErrValidation)

	// Property reference may be a placeholder; only the price is mandatory
	price := decimal.NewFromInt(390000)
	_, err = hs.ApplyTransition(
		StageUnderContract,
		TransitionPayload{ContractPrice: &price},
		actor, now,
	)
	require.NoError(t, err)
	assert.Equal(t, StageUnderContract, hs.Stage)
	require.NotNil(t, hs.ContractPrice)
	assert.True(t, price.Equal(*hs.ContractPrice))
	assert.NotNil(t, hs.ContractDate)
}

func TestContractFellThrough(t *testing.T) {
	actor := uuid.New()
	now := time.Now().UTC()

	hs := searchInStage(StageSearching)
	price := decimal.NewFromInt(410000)
	_, err := hs.ApplyTransition(
		StageUnderContract,
		TransitionPayload{ContractPrice: &price},
		actor, now,
	)
	require.NoError(t, err)
	assert.Equal(t, 0, hs.FailedContractCount)

	_, err = hs.ApplyTransition(
		StageSearching,
		TransitionPayload{Reason: "financing fell through"},
		actor, now.Add(time.Hour),
	)
	require.NoError(t, err)

	assert.Equal(t, StageSearching, hs.Stage)
	assert.Equal(t, 1, hs.FailedContractCount)
	assert.Nil(t, hs.ContractPrice)
	assert.Nil(t, hs.ContractPropertyID)
	assert.Nil(t, hs.ContractDate)
	assert.Nil(t, hs.ExpectedClosingDate)
}

func TestClosedCanFallBackToSearchingBeforeMoveIn(t *testing.T) {
	actor := uuid.New()
	now := time.Now().UTC()

	hs := searchInStage(StageClosed)
	hs.FailedContractCount = 1

	_, err := hs.ApplyTransition(StageSearching, TransitionPayload{}, actor, now)
	require.NoError(t, err)
	assert.Equal(t, 2, hs.FailedContractCount)
	assert.Nil(t, hs.ActualClosingDate)
}

func TestMovedInDeactivatesSearch(t *testing.T) {
	actor := uuid.New()
	now := time.Now().UTC()

	hs := searchInStage(StageClosed)
	moveIn := now.AddDate(0, 0, 14)
	_, err := hs.ApplyTransition(
		StageMovedIn,
		TransitionPayload{MoveInDate: &moveIn},
		actor, now,
	)
	require.NoError(t, err)
	assert.Equal(t, StageMovedIn, hs.Stage)
	assert.False(t, hs.IsActive)
}

func TestParseStageIsCaseInsensitive(t *testing.T) {
	tests := []struct {
		raw      string
		expected Stage
	}{
		{"searching", StageSearching},
		{"SEARCHING", StageSearching},
		{"UnderContract", StageUnderContract},
		{"undercontract", StageUnderContract},
		{" movedin ", StageMovedIn},
		{"awaitingagreements", StageAwaitingAgreements},
	}
	for _, tt := range tests {
		stage, err := ParseStage(tt.raw)
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.expected, stage)
	}

	_, err := ParseStage("looking")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestBoardDecisionOpensSearchExactlyOnce(t *testing.T) {
	actor := uuid.New()
	now := time.Now().UTC()

	applicant := &Applicant{Email: "family@example.org"}
	applicant.ID = uuid.New()
	applicant.Status = ApplicantSubmitted
	applicant.BoardReview = BoardReviewPending

	search, err := applicant.SetBoardDecision(BoardReviewApproved, actor, now)
	require.NoError(t, err)
	require.NotNil(t, search)
	assert.Equal(t, StageAwaitingAgreements, search.Stage)
	assert.True(t, search.IsActive)
	assert.Equal(t, applicant.ID, search.ApplicantID)
	assert.Equal(t, ApplicantApproved, applicant.Status)

	// Second decision is rejected once the applicant left Submitted
	_, err = applicant.SetBoardDecision(BoardReviewRejected, actor, now)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestApplicantRejectionRequiresRejectedReview(t *testing.T) {
	applicant := &Applicant{Email: "family@example.org"}
	applicant.Status = ApplicantSubmitted
	applicant.BoardReview = BoardReviewPending

	err := applicant.Reject()
	assert.ErrorIs(t, err, ErrValidation)

	actor := uuid.New()
	_, err = applicant.SetBoardDecision(BoardReviewRejected, actor, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, ApplicantSubmitted, applicant.Status)

	require.NoError(t, applicant.Reject())
	assert.Equal(t, ApplicantRejected, applicant.Status)

	// Terminal
	assert.ErrorIs(t, applicant.Reject(), ErrValidation)
}

func TestDeferredDecisionAllowsLaterApproval(t *testing.T) {
	actor := uuid.New()
	now := time.Now().UTC()

	applicant := &Applicant{Email: "family@example.org"}
	applicant.Status = ApplicantSubmitted
	applicant.BoardReview = BoardReviewPending

	search, err := applicant.SetBoardDecision(BoardReviewDeferred, actor, now)
	require.NoError(t, err)
	assert.Nil(t, search)
	assert.Equal(t, ApplicantSubmitted, applicant.Status)

	search, err = applicant.SetBoardDecision(BoardReviewApproved, actor, now.Add(time.Hour))
	require.NoError(t, err)
	assert.NotNil(t, search)
}

func TestMatchStatusProgression(t *testing.T) {
	pm := &PropertyMatch{
		HousingSearchID: uuid.New(),
		PropertyID:      uuid.New(),
		MatchScore:      80,
		Status:          MatchIdentified,
	}

	require.NoError(t, pm.AdvanceStatus(MatchShowingRequested))
	require.NoError(t, pm.AdvanceStatus(MatchOfferMade))

	// OfferMade is terminal
	assert.ErrorIs(t, pm.AdvanceStatus(MatchApplicantRejected), ErrValidation)

	pm2 := &PropertyMatch{Status: MatchApplicantInterested}
	assert.ErrorIs(t, pm2.AdvanceStatus(MatchShowingRequested), ErrValidation)
	require.NoError(t, pm2.AdvanceStatus(MatchApplicantRejected))
	assert.ErrorIs(t, pm2.AdvanceStatus(MatchOfferMade), ErrValidation)
}
