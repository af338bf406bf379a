package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var submittedAt = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func newPending(t *testing.T) *CreditApplication {
	t.Helper()
	app, err := NewCreditApplication(NewApplicationParams{
		AffiliateID:     7,
		RequestedAmount: decimal.NewFromInt(5_000_000),
		TermMonths:      24,
		Purpose:         "Vehículo",
		SubmittedAt:     submittedAt,
	})
	require.NoError(t, err)
	app.ID = 11
	return app
}

func TestNewCreditApplication_Defaults(t *testing.T) {
	app := newPending(t)
	require.Equal(t, StatusPending, app.Status())
	require.True(t, DefaultInterestRate.Equal(app.InterestRate))
	require.Equal(t, submittedAt, app.CreatedAt)
	require.Equal(t, submittedAt, app.UpdatedAt)

	_, ok := app.RiskEvaluation()
	require.False(t, ok)
	_, ok = app.RejectionReason()
	require.False(t, ok)

	events := app.Events()
	require.Len(t, events, 1)
	require.Equal(t, "credit.application.submitted", events[0].EventName())
}

func TestNewCreditApplication_AmountBoundaries(t *testing.T) {
	cases := []struct {
		amount int64
		valid  bool
	}{
		{99_999, false},
		{100_000, true},
		{50_000_000, true},
		{50_000_001, false},
	}
	for _, tc := range cases {
		_, err := NewCreditApplication(NewApplicationParams{
			AffiliateID:     1,
			RequestedAmount: decimal.NewFromInt(tc.amount),
			TermMonths:      12,
			SubmittedAt:     submittedAt,
		})
		if tc.valid {
			require.NoError(t, err, "amount %d", tc.amount)
			continue
		}
		require.ErrorIs(t, err, ErrValidation, "amount %d", tc.amount)
		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		require.Contains(t, verr.Fields, "requestedAmount")
	}
}

func TestNewCreditApplication_TermBoundaries(t *testing.T) {
	for term, valid := range map[int]bool{5: false, 6: true, 60: true, 61: false, 0: false} {
		_, err := NewCreditApplication(NewApplicationParams{
			AffiliateID:     1,
			RequestedAmount: decimal.NewFromInt(1_000_000),
			TermMonths:      term,
			SubmittedAt:     submittedAt,
		})
		if valid {
			require.NoError(t, err, "term %d", term)
		} else {
			require.ErrorIs(t, err, ErrValidation, "term %d", term)
		}
	}
}

func TestNewCreditApplication_PurposeTooLong(t *testing.T) {
	long := make([]rune, MaxPurposeLength+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err := NewCreditApplication(NewApplicationParams{
		AffiliateID:     1,
		RequestedAmount: decimal.NewFromInt(1_000_000),
		TermMonths:      12,
		Purpose:         string(long),
		SubmittedAt:     submittedAt,
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields, "purpose")
}

func TestApprove_StampsEvaluator(t *testing.T) {
	app := newPending(t)
	at := submittedAt.Add(time.Hour)

	require.NoError(t, app.Approve("analyst-1", at))
	require.Equal(t, StatusApproved, app.Status())
	by, ok := app.EvaluatedBy()
	require.True(t, ok)
	require.Equal(t, "analyst-1", by)
	when, ok := app.EvaluatedAt()
	require.True(t, ok)
	require.Equal(t, at, when)
	require.Equal(t, at, app.UpdatedAt)
	_, ok = app.RejectionReason()
	require.False(t, ok)
}

func TestReject_RequiresReason(t *testing.T) {
	app := newPending(t)
	err := app.Reject("analyst-1", "   ", submittedAt)
	require.ErrorIs(t, err, ErrValidation)
	require.Equal(t, StatusPending, app.Status())

	require.NoError(t, app.Reject("analyst-1", "Ingresos insuficientes", submittedAt))
	reason, ok := app.RejectionReason()
	require.True(t, ok)
	require.Equal(t, "Ingresos insuficientes", reason)
}

func TestTerminalStates_RejectAllTransitions(t *testing.T) {
	terminal := map[Status]func(*CreditApplication) error{
		StatusApproved:  func(a *CreditApplication) error { return a.Approve("x", submittedAt) },
		StatusRejected:  func(a *CreditApplication) error { return a.Reject("x", "no", submittedAt) },
		StatusCancelled: func(a *CreditApplication) error { return a.Cancel(a.AffiliateID, submittedAt) },
	}
	for status, enter := range terminal {
		app := newPending(t)
		require.NoError(t, enter(app))
		require.Equal(t, status, app.Status())
		before := app.Snapshot()

		require.ErrorIs(t, app.Approve("y", submittedAt), ErrInvalidState, status)
		require.ErrorIs(t, app.Reject("y", "late", submittedAt), ErrInvalidState, status)
		require.ErrorIs(t, app.Cancel(app.AffiliateID, submittedAt), ErrInvalidState, status)
		require.ErrorIs(t, app.AttachRiskEvaluation(RiskEvaluation{Score: 700}), ErrInvalidState, status)
		require.Equal(t, before, app.Snapshot())
	}
}

func TestCancel_OwnershipMatrix(t *testing.T) {
	cases := []struct {
		name      string
		requester int64
		approved  bool
		wantErr   bool
	}{
		{name: "owner pending", requester: 7},
		{name: "stranger pending", requester: 8, wantErr: true},
		{name: "owner approved", requester: 7, approved: true, wantErr: true},
		{name: "stranger approved", requester: 8, approved: true, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newPending(t)
			if tc.approved {
				require.NoError(t, app.Approve("analyst", submittedAt))
			}
			err := app.Cancel(tc.requester, submittedAt.Add(time.Minute))
			if tc.wantErr {
				require.ErrorIs(t, err, ErrInvalidState)
				return
			}
			require.NoError(t, err)
			require.Equal(t, StatusCancelled, app.Status())
			d, ok := app.Disposition().(Cancelled)
			require.True(t, ok)
			require.Equal(t, submittedAt.Add(time.Minute), d.CancelledAt)
		})
	}
}

func TestDecideByScore_Threshold(t *testing.T) {
	for score, want := range map[int]Status{300: StatusRejected, 599: StatusRejected, 600: StatusApproved, 850: StatusApproved} {
		app := newPending(t)
		require.NoError(t, app.AttachRiskEvaluation(RiskEvaluation{Score: score, Level: RiskLevelMedium, EvaluatedAt: submittedAt}))
		require.NoError(t, app.DecideByScore("auto", submittedAt))
		require.Equal(t, want, app.Status(), "score %d", score)
		if want == StatusRejected {
			reason, ok := app.RejectionReason()
			require.True(t, ok)
			require.Equal(t, InsufficientScoreReason(score), reason)
		}
	}
}

func TestDecideByScore_RequiresEvaluation(t *testing.T) {
	app := newPending(t)
	require.ErrorIs(t, app.DecideByScore("auto", submittedAt), ErrNoRiskEvaluation)
	require.Equal(t, StatusPending, app.Status())
}

func TestSnapshotRestore_RoundTripsDisposition(t *testing.T) {
	app := newPending(t)
	require.NoError(t, app.AttachRiskEvaluation(RiskEvaluation{ID: 3, ApplicationID: app.ID, Score: 450, Level: RiskLevelHigh, EvaluatedAt: submittedAt}))
	require.NoError(t, app.DecideByScore("auto", submittedAt))

	restored, err := Restore(app.Snapshot())
	require.NoError(t, err)
	require.Equal(t, app.Snapshot(), restored.Snapshot())
	require.Empty(t, restored.Events())
}

func TestRestore_RejectsInconsistentState(t *testing.T) {
	reason := "stale"
	_, err := Restore(Snapshot{ID: 1, Status: StatusPending, RejectionReason: &reason})
	require.Error(t, err)

	_, err = Restore(Snapshot{ID: 1, Status: StatusRejected})
	require.Error(t, err)

	_, err = Restore(Snapshot{ID: 1, Status: "ARCHIVED"})
	require.Error(t, err)
}

func TestParseStatus(t *testing.T) {
	for _, raw := range []string{"PENDING", "APPROVED", "REJECTED", "CANCELLED"} {
		status, ok := ParseStatus(raw)
		require.True(t, ok, raw)
		require.Equal(t, Status(raw), status)
	}
	_, ok := ParseStatus("pending")
	require.False(t, ok)
	_, ok = ParseStatus("")
	require.False(t, ok)
}

func TestBindApplicationID_StampsOnlyUnboundSubmissions(t *testing.T) {
	app := newPending(t)
	events := append(app.Events(), ApplicationApproved{ApplicationID: 5, EvaluatedBy: "analyst"})

	bound := BindApplicationID(events, 42)
	require.Len(t, bound, 2)
	submitted, ok := bound[0].(ApplicationSubmitted)
	require.True(t, ok)
	require.Equal(t, int64(42), submitted.ApplicationID)
	require.Equal(t, ApplicationApproved{ApplicationID: 5, EvaluatedBy: "analyst"}, bound[1])

	original, ok := events[0].(ApplicationSubmitted)
	require.True(t, ok)
	require.Zero(t, original.ApplicationID)
}

func TestNewCreditApplication_RejectsUnstorablePrecision(t *testing.T) {
	params := NewApplicationParams{
		AffiliateID:     1,
		RequestedAmount: decimal.RequireFromString("100000.004"),
		TermMonths:      12,
		SubmittedAt:     submittedAt,
	}
	_, err := NewCreditApplication(params)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Contains(t, verr.Fields, "requestedAmount")

	params.RequestedAmount = decimal.RequireFromString("100000.50")
	params.InterestRate = decimal.RequireFromString("12.125")
	_, err = NewCreditApplication(params)
	require.True(t, errors.As(err, &verr))
	require.Contains(t, verr.Fields, "interestRate")
	require.NotContains(t, verr.Fields, "requestedAmount")

	params.InterestRate = decimal.RequireFromString("12.50")
	app, err := NewCreditApplication(params)
	require.NoError(t, err)
	require.Equal(t, "100000.5", app.RequestedAmount.String())
}

func TestValidateInterestRate(t *testing.T) {
	require.NoError(t, ValidateInterestRate(decimal.Zero))
	require.NoError(t, ValidateInterestRate(MaxInterestRate))
	require.Error(t, ValidateInterestRate(decimal.RequireFromString("-0.01")))
	require.Error(t, ValidateInterestRate(decimal.RequireFromString("1000")))
	require.Error(t, ValidateInterestRate(decimal.RequireFromString("9.999")))
}
