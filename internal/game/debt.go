package game

import (
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/user/guildmaster/internal/interfaces"
	"github.com/user/guildmaster/internal/types"
)

// DefaultQuarterDays is the billing cycle length of a debt obligation
const DefaultQuarterDays = 90

// Debt is a recurring financial obligation on a quarterly payment
// schedule. The balance never goes negative; Paid and Overdue are
// terminal.
type Debt struct {
	ID               string                `json:"id"`
	CurrentBalance   int                   `json:"current_balance"`
	QuarterlyPayment int                   `json:"quarterly_payment"`
	InterestRate     float64               `json:"interest_rate"`
	QuarterDays      int                   `json:"quarter_days"`
	DueDate          int                   `json:"due_date"`
	PaymentHistory   []types.PaymentRecord `json:"payment_history"`
	State            types.DebtState       `json:"state"`

	events interfaces.EventPublisher
	logger *zap.Logger
}

// NewDebt creates an active debt. interestRate is annual; a quarter of it
// accrues per billing cycle.
func NewDebt(balance, quarterlyPayment int, interestRate float64, events interfaces.EventPublisher, logger *zap.Logger) *Debt {
	return &Debt{
		ID:               uuid.New().String(),
		CurrentBalance:   balance,
		QuarterlyPayment: quarterlyPayment,
		InterestRate:     interestRate,
		QuarterDays:      DefaultQuarterDays,
		DueDate:          DefaultQuarterDays,
		PaymentHistory:   make([]types.PaymentRecord, 0),
		State:            types.DebtActive,
		events:           events,
		logger:           logger,
	}
}

// Attach wires the notification port and diagnostic logger
func (d *Debt) Attach(events interfaces.EventPublisher, logger *zap.Logger) {
	d.events = events
	d.logger = logger
	if d.QuarterDays == 0 {
		d.QuarterDays = DefaultQuarterDays
	}
	if d.DueDate == 0 {
		d.DueDate = d.QuarterDays
	}
}

// IsPaymentDue reports whether currentDay falls on the quarterly
// schedule. Day 0 counts.
func (d *Debt) IsPaymentDue(currentDay int) bool {
	quarter := d.QuarterDays
	if quarter <= 0 {
		quarter = DefaultQuarterDays
	}
	return currentDay%quarter == 0
}

// ProcessQuarterlyPayment runs the scheduled payment for currentDay.
// Not due: no-op success. Due with a balance that cannot cover the
// payment: the debt goes Overdue, a game-over event is published, and
// the balance is left unchanged. Otherwise the quarterly amount is paid
// and the due date moves one cycle forward.
func (d *Debt) ProcessQuarterlyPayment(currentDay int) bool {
	if !d.IsPaymentDue(currentDay) {
		return true
	}
	if d.State != types.DebtActive {
		return d.State == types.DebtPaid
	}

	// A non-positive scheduled payment is a configuration error, not a
	// missed payment; nothing is owed this cycle.
	if d.QuarterlyPayment <= 0 {
		diag(d.logger).Error("non-positive quarterly payment configured",
			zap.String("debt_id", d.ID),
			zap.Int("payment", d.QuarterlyPayment))
		return true
	}

	if d.CurrentBalance < d.QuarterlyPayment {
		d.State = types.DebtOverdue
		diag(d.logger).Error("quarterly payment missed",
			zap.String("debt_id", d.ID),
			zap.Int("day", currentDay),
			zap.Int("balance", d.CurrentBalance),
			zap.Int("payment", d.QuarterlyPayment))
		publish(d.events, types.GameOver{
			DebtID:  d.ID,
			Day:     currentDay,
			Balance: d.CurrentBalance,
			Reason:  "missed quarterly debt payment",
		})
		return false
	}

	if !d.MakePayment(d.QuarterlyPayment, currentDay) {
		return false
	}
	d.DueDate = currentDay + d.QuarterDays
	return true
}

// MakePayment pays amount against the balance, capped at the remaining
// balance, and appends an immutable record to the history. A balance of
// exactly 0 moves the debt to its Paid terminal state.
func (d *Debt) MakePayment(amount, currentDay int) bool {
	if amount <= 0 {
		diag(d.logger).Warn("debt payment rejected",
			zap.String("debt_id", d.ID),
			zap.String("field", "amount"),
			zap.Int("value", amount))
		return false
	}
	if d.State != types.DebtActive {
		diag(d.logger).Warn("payment on settled debt",
			zap.String("debt_id", d.ID),
			zap.String("state", string(d.State)))
		return false
	}

	if amount > d.CurrentBalance {
		amount = d.CurrentBalance
	}
	d.CurrentBalance -= amount

	d.PaymentHistory = append(d.PaymentHistory, types.PaymentRecord{
		Amount:           amount,
		Day:              currentDay,
		RemainingBalance: d.CurrentBalance,
	})

	if d.CurrentBalance == 0 {
		d.State = types.DebtPaid
	}

	publish(d.events, types.DebtPayment{
		DebtID:           d.ID,
		Amount:           amount,
		Day:              currentDay,
		RemainingBalance: d.CurrentBalance,
	})
	return true
}

// ApplyInterest accrues one quarter of the annual rate onto the balance,
// rounding half away from zero. The call order relative to the quarterly
// payment is fixed by the driver, not here.
func (d *Debt) ApplyInterest() {
	if d.State != types.DebtActive {
		return
	}
	d.CurrentBalance += int(math.Round(float64(d.CurrentBalance) * d.InterestRate / 4))
}

// IsValid reports whether the debt satisfies its invariants
func (d *Debt) IsValid() bool {
	if d.CurrentBalance < 0 {
		diag(d.logger).Warn("debt validation failed",
			zap.String("debt_id", d.ID),
			zap.String("field", "current_balance"),
			zap.Int("value", d.CurrentBalance))
		return false
	}
	if d.InterestRate <= 0 {
		diag(d.logger).Warn("debt validation failed",
			zap.String("debt_id", d.ID),
			zap.String("field", "interest_rate"),
			zap.Float64("value", d.InterestRate))
		return false
	}
	return true
}
