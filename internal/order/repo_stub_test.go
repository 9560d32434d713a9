package order

import (
	"context"
	"fmt"
	"strings"
)

// memRepo implements Repository in memory for tests.
type memRepo struct {
	orders map[string]*Order
	items  map[string][]Item // keyed by order id

	failItemsDelete bool
	failOrderDelete bool
	applyCalls      int
}

func newMemRepo() *memRepo {
	return &memRepo{
		orders: make(map[string]*Order),
		items:  make(map[string][]Item),
	}
}

func (m *memRepo) Create(ctx context.Context, o *Order, items []Item) error {
	cp := *o
	m.orders[o.ID] = &cp
	m.items[o.ID] = append([]Item(nil), items...)
	return nil
}

func (m *memRepo) GetByID(ctx context.Context, id string) (*Order, []Item, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, nil, ErrNotFound
	}
	cp := *o
	return &cp, m.items[id], nil
}

func (m *memRepo) GetByTrackingCode(ctx context.Context, code string) (*Order, []Item, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for id, o := range m.orders {
		if strings.ToUpper(o.TrackingCode) == code {
			cp := *o
			return &cp, m.items[id], nil
		}
	}
	return nil, nil, ErrNotFound
}

func (m *memRepo) List(ctx context.Context, q Query) ([]Order, error) {
	var out []Order
	for _, o := range m.orders {
		if q.Status != "" && o.Status != q.Status {
			continue
		}
		out = append(out, *o)
	}
	return out, nil
}

func (m *memRepo) ApplyPaymentUpdate(ctx context.Context, ref string, u PaymentUpdate) (bool, error) {
	m.applyCalls++
	for _, o := range m.orders {
		if o.PaymentReference == ref {
			o.Status = u.Status
			o.PaymentStatus = u.PaymentStatus
			o.PaymentReference = u.PaymentReference
			o.UpdatedAt = u.UpdatedAt
			return true, nil
		}
	}
	return false, nil
}

func (m *memRepo) DeleteItemsForOrders(ctx context.Context, orderIDs []string) (int64, error) {
	if m.failItemsDelete {
		return 0, fmt.Errorf("simulated constraint error")
	}
	var n int64
	for _, id := range orderIDs {
		n += int64(len(m.items[id]))
		delete(m.items, id)
	}
	return n, nil
}

func (m *memRepo) DeleteOrders(ctx context.Context, orderIDs []string) (int64, error) {
	if m.failOrderDelete {
		return 0, fmt.Errorf("simulated delete error")
	}
	var n int64
	for _, id := range orderIDs {
		if _, ok := m.orders[id]; ok {
			delete(m.orders, id)
			n++
		}
	}
	return n, nil
}
