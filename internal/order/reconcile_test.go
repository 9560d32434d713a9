package order

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/savannahsoft/shopfront/internal/payment"
)

func init() {
	log.SetOutput(io.Discard)
}

// stubGateway returns a canned status (or error) for every tracking id.
type stubGateway struct {
	status *payment.TransactionStatus
	err    error
	calls  int
}

func (s *stubGateway) GetTransactionStatus(ctx context.Context, trackingID string) (*payment.TransactionStatus, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	cp := *s.status
	return &cp, nil
}

func seedOrder(repo *memRepo, id, ref string) {
	_ = repo.Create(context.Background(), &Order{
		ID:               id,
		TrackingCode:     "TRK-" + id,
		Status:           StatusPending,
		PaymentStatus:    PaymentPending,
		PaymentReference: ref,
		Total:            "20.00",
	}, nil)
}

func TestReconcile_StatusMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		gateway     string
		wantOrder   string
		wantPayment string
	}{
		{"COMPLETED", StatusPaid, PaymentCompleted},
		{"completed", StatusPaid, PaymentCompleted}, // vocabulary match is case-insensitive
		{"FAILED", StatusPaymentFailed, PaymentFailed},
		{"PENDING", StatusPending, PaymentPending},
		{"", StatusPending, PaymentPending},
		{"UNKNOWN", StatusPending, PaymentPending},
		{"REVERSED", StatusPending, PaymentPending}, // conservative default
	}

	for _, tc := range cases {
		repo := newMemRepo()
		seedOrder(repo, "o1", "trk-1")
		gw := &stubGateway{status: &payment.TransactionStatus{
			PaymentStatusDescription: tc.gateway,
			Amount:                   decimal.RequireFromString("20.00"),
			Currency:                 "KES",
			PaymentAccount:           "trk-1",
		}}

		res, err := NewReconciler(gw, repo).Reconcile(context.Background(), "trk-1")
		if err != nil {
			t.Fatalf("%q: reconcile: %v", tc.gateway, err)
		}
		if res.OrderStatus != tc.wantOrder || res.PaymentStatus != tc.wantPayment {
			t.Fatalf("%q: got {%s,%s}, esperaba {%s,%s}",
				tc.gateway, res.OrderStatus, res.PaymentStatus, tc.wantOrder, tc.wantPayment)
		}
		o, _, _ := repo.GetByID(context.Background(), "o1")
		if o.Status != tc.wantOrder || o.PaymentStatus != tc.wantPayment {
			t.Fatalf("%q: fila persistida {%s,%s}, esperaba {%s,%s}",
				tc.gateway, o.Status, o.PaymentStatus, tc.wantOrder, tc.wantPayment)
		}
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	t.Parallel()

	repo := newMemRepo()
	seedOrder(repo, "o1", "trk-1")
	gw := &stubGateway{status: &payment.TransactionStatus{
		PaymentStatusDescription: "COMPLETED",
		Amount:                   decimal.RequireFromString("20.00"),
		Currency:                 "KES",
		PaymentAccount:           "trk-1",
	}}

	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rc := NewReconciler(gw, repo).WithClock(func() time.Time { return fixed })

	if _, err := rc.Reconcile(context.Background(), "trk-1"); err != nil {
		t.Fatalf("primer reconcile: %v", err)
	}
	first, _, _ := repo.GetByID(context.Background(), "o1")

	if _, err := rc.Reconcile(context.Background(), "trk-1"); err != nil {
		t.Fatalf("segundo reconcile: %v", err)
	}
	second, _, _ := repo.GetByID(context.Background(), "o1")

	if *first != *second {
		t.Fatalf("filas distintas tras repetir:\n%+v\n%+v", first, second)
	}
	if repo.applyCalls != 2 {
		t.Fatalf("applyCalls=%d, esperaba 2 (sin side effects extra)", repo.applyCalls)
	}
}

func TestReconcile_MissIsNotFatal(t *testing.T) {
	t.Parallel()

	repo := newMemRepo() // no orders at all
	gw := &stubGateway{status: &payment.TransactionStatus{
		PaymentStatusDescription: "COMPLETED",
		Amount:                   decimal.RequireFromString("5.00"),
		Currency:                 "KES",
		PaymentAccount:           "trk-9",
	}}

	res, err := NewReconciler(gw, repo).Reconcile(context.Background(), "trk-9")
	if err != nil {
		t.Fatalf("reconcile: %v (un miss de persistencia no debe fallar)", err)
	}
	if res.Persisted {
		t.Fatalf("Persisted=true sin fila que actualizar")
	}
	if res.GatewayStatus != "COMPLETED" {
		t.Fatalf("gateway status=%q, esperaba COMPLETED", res.GatewayStatus)
	}
}

func TestReconcile_GatewayErrorPassesThrough(t *testing.T) {
	t.Parallel()

	repo := newMemRepo()
	gw := &stubGateway{err: payment.ErrUnreachable}

	_, err := NewReconciler(gw, repo).Reconcile(context.Background(), "trk-1")
	if !errors.Is(err, payment.ErrUnreachable) {
		t.Fatalf("err=%v, esperaba ErrUnreachable", err)
	}
	if repo.applyCalls != 0 {
		t.Fatalf("se intentó persistir pese al fallo del gateway")
	}
}

func TestReconcile_PaymentReferenceFollowsAccount(t *testing.T) {
	t.Parallel()

	repo := newMemRepo()
	seedOrder(repo, "o1", "trk-1")
	gw := &stubGateway{status: &payment.TransactionStatus{
		PaymentStatusDescription: "COMPLETED",
		Amount:                   decimal.RequireFromString("20.00"),
		Currency:                 "KES",
		PaymentAccount:           "acct-555",
	}}

	if _, err := NewReconciler(gw, repo).Reconcile(context.Background(), "trk-1"); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	o, _, _ := repo.GetByID(context.Background(), "o1")
	if o.PaymentReference != "acct-555" {
		t.Fatalf("payment_reference=%q, esperaba acct-555", o.PaymentReference)
	}
}
