// Package flow models the guided purchase and withdrawal conversations as an
// explicit state machine. The transition function is pure and carries no
// Telegram dependency, so every rule is testable without a transport.
package flow

import "strconv"

// Step identifies the current position inside a multi-step conversation.
type Step string

const (
	// StepIdle indicates there is no active flow for the user.
	StepIdle Step = "idle"
	// StepQuantity is the purchase quantity selection step.
	StepQuantity Step = "purchase_quantity"
	// StepAwaitFile is the purchase proof-of-payment upload step.
	StepAwaitFile Step = "purchase_file"
	// StepWithdrawMethod awaits the payment method text.
	StepWithdrawMethod Step = "withdraw_method"
	// StepWithdrawNumber awaits the account number text.
	StepWithdrawNumber Step = "withdraw_number"
	// StepWithdrawAmount awaits the withdrawal amount text.
	StepWithdrawAmount Step = "withdraw_amount"
)

// DefaultMinWithdrawal is the minimum accepted withdrawal amount.
const DefaultMinWithdrawal = 100

// Session is the per-user conversation state accumulated across steps.
type Session struct {
	Step      Step
	Service   string
	UnitPrice int64
	Quantity  int64
	Total     int64
	Method    string
	Number    string
}

// Event is the closed set of inputs the state machine reacts to.
type Event interface{ event() }

// SelectProduct starts a purchase flow for the given product.
type SelectProduct struct {
	Service string
	Price   int64
}

// AdjustQuantity increments or decrements the pending quantity.
type AdjustQuantity struct {
	Delta int64
}

// ConfirmQuantity freezes the quantity and computes the total.
type ConfirmQuantity struct{}

// UploadFile reports that the user sent a document.
type UploadFile struct{}

// BeginWithdrawal starts a withdrawal flow.
type BeginWithdrawal struct{}

// EnterText carries free text typed during a flow step.
type EnterText struct {
	Text string
}

// Cancel discards any active flow; menu actions issue it unconditionally.
type Cancel struct{}

func (SelectProduct) event()   {}
func (AdjustQuantity) event()  {}
func (ConfirmQuantity) event() {}
func (UploadFile) event()      {}
func (BeginWithdrawal) event() {}
func (EnterText) event()       {}
func (Cancel) event()          {}

// Action tells the caller what user-visible effect the transition requires.
type Action int

const (
	// ActionNone means the event was not meaningful in the current step.
	ActionNone Action = iota
	// ActionRenderQuantity re-renders the quantity prompt with current values.
	ActionRenderQuantity
	// ActionPromptFile asks for the proof-of-payment upload.
	ActionPromptFile
	// ActionCompletePurchase finalizes the purchase; Result.Order is set.
	ActionCompletePurchase
	// ActionPromptMethod asks for the withdrawal payment method.
	ActionPromptMethod
	// ActionPromptNumber asks for the withdrawal account number.
	ActionPromptNumber
	// ActionPromptAmount asks for the withdrawal amount.
	ActionPromptAmount
	// ActionRejectAmountFormat reports a non-numeric amount; step unchanged.
	ActionRejectAmountFormat
	// ActionRejectAmountMinimum reports a below-minimum amount; step unchanged.
	ActionRejectAmountMinimum
	// ActionCompleteWithdrawal finalizes the withdrawal; Result.Order is set.
	ActionCompleteWithdrawal
)

// OrderIntent carries the ledger-facing outcome of a completed flow.
type OrderIntent struct {
	Service string
	Amount  int64
}

// Result is the outcome of one transition.
type Result struct {
	Session Session
	Action  Action
	Order   *OrderIntent
}

// Machine applies flow transition rules.
type Machine struct {
	MinWithdrawal int64
}

// NewMachine returns a Machine with the given withdrawal minimum,
// falling back to DefaultMinWithdrawal when min is not positive.
func NewMachine(min int64) Machine {
	if min <= 0 {
		min = DefaultMinWithdrawal
	}
	return Machine{MinWithdrawal: min}
}

// Apply computes the next session and required action for an event.
// Events that are not defined for the current step yield ActionNone with the
// session unchanged; routing stays total.
func (m Machine) Apply(s Session, ev Event) Result {
	if s.Step == "" {
		s.Step = StepIdle
	}

	switch e := ev.(type) {
	case Cancel:
		return Result{Session: Session{Step: StepIdle}}

	case SelectProduct:
		// A new flow implicitly discards a stale one.
		return Result{
			Session: Session{
				Step:      StepQuantity,
				Service:   e.Service,
				UnitPrice: e.Price,
				Quantity:  1,
			},
			Action: ActionRenderQuantity,
		}

	case AdjustQuantity:
		if s.Step != StepQuantity {
			return Result{Session: s}
		}
		qty := s.Quantity + e.Delta
		if qty < 1 {
			qty = 1
		}
		s.Quantity = qty
		return Result{Session: s, Action: ActionRenderQuantity}

	case ConfirmQuantity:
		if s.Step != StepQuantity {
			return Result{Session: s}
		}
		s.Total = s.UnitPrice * s.Quantity
		s.Step = StepAwaitFile
		return Result{Session: s, Action: ActionPromptFile}

	case UploadFile:
		if s.Step != StepAwaitFile {
			return Result{Session: s}
		}
		return Result{
			Session: Session{Step: StepIdle},
			Action:  ActionCompletePurchase,
			Order:   &OrderIntent{Service: s.Service, Amount: s.Total},
		}

	case BeginWithdrawal:
		return Result{
			Session: Session{Step: StepWithdrawMethod},
			Action:  ActionPromptMethod,
		}

	case EnterText:
		return m.applyText(s, e.Text)
	}

	return Result{Session: s}
}

func (m Machine) applyText(s Session, text string) Result {
	switch s.Step {
	case StepWithdrawMethod:
		s.Method = text
		s.Step = StepWithdrawNumber
		return Result{Session: s, Action: ActionPromptNumber}

	case StepWithdrawNumber:
		s.Number = text
		s.Step = StepWithdrawAmount
		return Result{Session: s, Action: ActionPromptAmount}

	case StepWithdrawAmount:
		amount, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return Result{Session: s, Action: ActionRejectAmountFormat}
		}
		if amount < m.MinWithdrawal {
			return Result{Session: s, Action: ActionRejectAmountMinimum}
		}
		return Result{
			Session: Session{Step: StepIdle},
			Action:  ActionCompleteWithdrawal,
			Order:   &OrderIntent{Service: "Withdraw " + s.Method, Amount: amount},
		}
	}
	return Result{Session: s}
}
