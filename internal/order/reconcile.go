package order

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/savannahsoft/shopfront/internal/payment"
)

// StatusFetcher is the slice of the gateway client the reconciler needs.
type StatusFetcher interface {
	GetTransactionStatus(ctx context.Context, trackingID string) (*payment.TransactionStatus, error)
}

// outcome pairs the order and payment state a gateway status maps to.
type outcome struct {
	OrderStatus   string
	PaymentStatus string
}

// statusTable is the full gateway vocabulary we act on. Everything else maps
// to the conservative pending/pending default, so an unknown status can never
// mark an order paid or failed.
var statusTable = map[string]outcome{
	"COMPLETED": {StatusPaid, PaymentCompleted},
	"FAILED":    {StatusPaymentFailed, PaymentFailed},
}

var defaultOutcome = outcome{StatusPending, PaymentPending}

func mapGatewayStatus(description string) outcome {
	if o, ok := statusTable[strings.ToUpper(strings.TrimSpace(description))]; ok {
		return o
	}
	return defaultOutcome
}

// Reconciliation is the result of one status check.
type Reconciliation struct {
	TrackingID    string
	GatewayStatus string
	OrderStatus   string
	PaymentStatus string
	Amount        string
	Currency      string
	// Persisted is false when no order row carried this payment reference.
	// That is a reconciliation miss, not a failure: the caller still gets
	// the gateway's answer.
	Persisted bool
}

// Reconciler maps gateway transaction status onto local order state.
//
// Reconcile is idempotent: the mapped state plainly overwrites the order row,
// so repeating it with the same gateway response is a no-op beyond updated_at.
// Two racing calls for the same tracking id resolve last-write-wins; that is
// an accepted eventual-consistency trade-off, not an ordering guarantee.
type Reconciler struct {
	gw   StatusFetcher
	repo Repository
	now  func() time.Time
}

func NewReconciler(gw StatusFetcher, repo Repository) *Reconciler {
	return &Reconciler{gw: gw, repo: repo, now: time.Now}
}

// WithClock fixes the reconciler's clock. Test hook.
func (rc *Reconciler) WithClock(now func() time.Time) *Reconciler {
	cp := *rc
	cp.now = now
	return &cp
}

func (rc *Reconciler) Reconcile(ctx context.Context, trackingID string) (*Reconciliation, error) {
	st, err := rc.gw.GetTransactionStatus(ctx, trackingID)
	if err != nil {
		return nil, err
	}

	mapped := mapGatewayStatus(st.PaymentStatusDescription)
	update := PaymentUpdate{
		Status:           mapped.OrderStatus,
		PaymentStatus:    mapped.PaymentStatus,
		PaymentReference: st.PaymentAccount,
		UpdatedAt:        rc.now().UTC(),
	}

	persisted, err := rc.repo.ApplyPaymentUpdate(ctx, trackingID, update)
	if err != nil {
		// A customer polling payment status must not see a local
		// persistence problem as a payment failure.
		log.Printf("[reconcile] persist failed tracking=%s err=%v", trackingID, err)
		persisted = false
	} else if !persisted {
		log.Printf("[reconcile] no order for payment_reference=%s", trackingID)
	}

	return &Reconciliation{
		TrackingID:    trackingID,
		GatewayStatus: st.PaymentStatusDescription,
		OrderStatus:   mapped.OrderStatus,
		PaymentStatus: mapped.PaymentStatus,
		Amount:        st.Amount.String(),
		Currency:      st.Currency,
		Persisted:     persisted,
	}, nil
}
