package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurchaseHappyPath(t *testing.T) {
	m := NewMachine(0)

	res := m.Apply(Session{Step: StepIdle}, SelectProduct{Service: "Fresh Gmail", Price: 9})
	assert.Equal(t, ActionRenderQuantity, res.Action)
	assert.Equal(t, StepQuantity, res.Session.Step)
	assert.Equal(t, int64(1), res.Session.Quantity)

	res = m.Apply(res.Session, AdjustQuantity{Delta: 1})
	res = m.Apply(res.Session, AdjustQuantity{Delta: 1})
	assert.Equal(t, int64(3), res.Session.Quantity)

	res = m.Apply(res.Session, ConfirmQuantity{})
	assert.Equal(t, ActionPromptFile, res.Action)
	assert.Equal(t, StepAwaitFile, res.Session.Step)
	assert.Equal(t, int64(27), res.Session.Total)

	res = m.Apply(res.Session, UploadFile{})
	assert.Equal(t, ActionCompletePurchase, res.Action)
	assert.Equal(t, StepIdle, res.Session.Step)
	require.NotNil(t, res.Order)
	assert.Equal(t, "Fresh Gmail", res.Order.Service)
	assert.Equal(t, int64(27), res.Order.Amount)
}

func TestQuantityNeverBelowOne(t *testing.T) {
	m := NewMachine(0)

	res := m.Apply(Session{}, SelectProduct{Service: "TextNow", Price: 25})
	for i := 0; i < 5; i++ {
		res = m.Apply(res.Session, AdjustQuantity{Delta: -1})
		assert.Equal(t, int64(1), res.Session.Quantity)
		assert.Equal(t, ActionRenderQuantity, res.Action)
	}

	res = m.Apply(res.Session, AdjustQuantity{Delta: 1})
	res = m.Apply(res.Session, AdjustQuantity{Delta: -1})
	res = m.Apply(res.Session, AdjustQuantity{Delta: -1})
	assert.Equal(t, int64(1), res.Session.Quantity)
}

func TestTotalComputedOnceAtConfirmation(t *testing.T) {
	m := NewMachine(0)

	res := m.Apply(Session{}, SelectProduct{Service: "Talkatone", Price: 28})
	res = m.Apply(res.Session, AdjustQuantity{Delta: 1})
	assert.Zero(t, res.Session.Total)

	res = m.Apply(res.Session, ConfirmQuantity{})
	assert.Equal(t, int64(56), res.Session.Total)
}

func TestWithdrawalFlow(t *testing.T) {
	m := NewMachine(100)

	res := m.Apply(Session{}, BeginWithdrawal{})
	assert.Equal(t, ActionPromptMethod, res.Action)
	assert.Equal(t, StepWithdrawMethod, res.Session.Step)

	res = m.Apply(res.Session, EnterText{Text: "Bkash"})
	assert.Equal(t, ActionPromptNumber, res.Action)
	assert.Equal(t, "Bkash", res.Session.Method)

	res = m.Apply(res.Session, EnterText{Text: "017XXXXXXXX"})
	assert.Equal(t, ActionPromptAmount, res.Action)
	assert.Equal(t, "017XXXXXXXX", res.Session.Number)

	// Malformed amount keeps the step.
	res = m.Apply(res.Session, EnterText{Text: "abc"})
	assert.Equal(t, ActionRejectAmountFormat, res.Action)
	assert.Equal(t, StepWithdrawAmount, res.Session.Step)

	// Below minimum keeps the step.
	res = m.Apply(res.Session, EnterText{Text: "50"})
	assert.Equal(t, ActionRejectAmountMinimum, res.Action)
	assert.Equal(t, StepWithdrawAmount, res.Session.Step)

	res = m.Apply(res.Session, EnterText{Text: "150"})
	assert.Equal(t, ActionCompleteWithdrawal, res.Action)
	assert.Equal(t, StepIdle, res.Session.Step)
	require.NotNil(t, res.Order)
	assert.Equal(t, "Withdraw Bkash", res.Order.Service)
	assert.Equal(t, int64(150), res.Order.Amount)
}

func TestWithdrawalExactMinimumAccepted(t *testing.T) {
	m := NewMachine(100)
	s := Session{Step: StepWithdrawAmount, Method: "Nagad", Number: "018"}

	res := m.Apply(s, EnterText{Text: "100"})
	assert.Equal(t, ActionCompleteWithdrawal, res.Action)
	require.NotNil(t, res.Order)
	assert.Equal(t, int64(100), res.Order.Amount)
}

func TestUndefinedEventsAreNoops(t *testing.T) {
	m := NewMachine(0)

	// Quantity callbacks outside the quantity step.
	res := m.Apply(Session{Step: StepIdle}, AdjustQuantity{Delta: 1})
	assert.Equal(t, ActionNone, res.Action)
	assert.Equal(t, StepIdle, res.Session.Step)

	res = m.Apply(Session{Step: StepWithdrawMethod}, ConfirmQuantity{})
	assert.Equal(t, ActionNone, res.Action)
	assert.Equal(t, StepWithdrawMethod, res.Session.Step)

	// Documents outside the upload step.
	res = m.Apply(Session{Step: StepQuantity, Quantity: 2}, UploadFile{})
	assert.Equal(t, ActionNone, res.Action)
	assert.Equal(t, int64(2), res.Session.Quantity)

	// Free text while idle.
	res = m.Apply(Session{Step: StepIdle}, EnterText{Text: "hello"})
	assert.Equal(t, ActionNone, res.Action)
}

func TestNewFlowDiscardsStaleOne(t *testing.T) {
	m := NewMachine(0)
	stale := Session{Step: StepWithdrawAmount, Method: "Bkash", Number: "017"}

	res := m.Apply(stale, SelectProduct{Service: "Fresh Gmail", Price: 9})
	assert.Equal(t, StepQuantity, res.Session.Step)
	assert.Empty(t, res.Session.Method)
	assert.Empty(t, res.Session.Number)
}

func TestCancelResetsAnyStep(t *testing.T) {
	m := NewMachine(0)
	for _, step := range []Step{StepQuantity, StepAwaitFile, StepWithdrawMethod, StepWithdrawNumber, StepWithdrawAmount} {
		res := m.Apply(Session{Step: step}, Cancel{})
		assert.Equal(t, StepIdle, res.Session.Step, "step %s", step)
		assert.Equal(t, ActionNone, res.Action)
	}
}

func TestStoreApplyAndReset(t *testing.T) {
	st := NewStore(NewMachine(0))

	assert.False(t, st.InProgress(7))
	assert.Equal(t, StepIdle, st.Step(7))

	res := st.Apply(7, SelectProduct{Service: "Fresh Gmail", Price: 9})
	assert.Equal(t, ActionRenderQuantity, res.Action)
	assert.True(t, st.InProgress(7))
	assert.Equal(t, StepQuantity, st.Step(7))

	// Another user is unaffected.
	assert.False(t, st.InProgress(8))

	st.Reset(7)
	assert.False(t, st.InProgress(7))
}

func TestStoreDropsCompletedSessions(t *testing.T) {
	st := NewStore(NewMachine(0))

	st.Apply(5, SelectProduct{Service: "TextNow", Price: 25})
	st.Apply(5, ConfirmQuantity{})
	res := st.Apply(5, UploadFile{})

	assert.Equal(t, ActionCompletePurchase, res.Action)
	assert.False(t, st.InProgress(5))
	assert.Len(t, st.sessions, 0)
}
