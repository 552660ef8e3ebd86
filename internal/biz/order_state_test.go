package biz

import (
	"testing"

	tradeErrors "campus-trade/internal/errors"
)

func TestOrderStatusText(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{OrderStatusPending, "pending confirmation"},
		{OrderStatusInProgress, "in progress"},
		{OrderStatusCompleted, "completed"},
		{OrderStatusCancelled, "cancelled"},
		{0, "unknown"},
		{99, "unknown"},
	}
	for _, tt := range tests {
		if got := OrderStatusText(tt.status); got != tt.want {
			t.Errorf("OrderStatusText(%d) = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestIsTerminalStatus(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{OrderStatusPending, false},
		{OrderStatusInProgress, false},
		{OrderStatusCompleted, true},
		{OrderStatusCancelled, true},
	}
	for _, tt := range tests {
		if got := IsTerminalStatus(tt.status); got != tt.want {
			t.Errorf("IsTerminalStatus(%d) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestPartyOf(t *testing.T) {
	order := &Order{BuyerID: 100, SellerID: 200}

	tests := []struct {
		userID int64
		want   Party
	}{
		{100, PartyBuyer},
		{200, PartySeller},
		{300, PartyNone},
		{0, PartyNone},
	}
	for _, tt := range tests {
		if got := order.PartyOf(tt.userID); got != tt.want {
			t.Errorf("PartyOf(%d) = %v, want %v", tt.userID, got, tt.want)
		}
	}
}

func TestApplyConfirm(t *testing.T) {
	tests := []struct {
		name          string
		order         Order
		party         Party
		wantCompleted bool
		wantChanged   bool
		wantStatus    int
		wantErr       func(error) bool
	}{
		{
			name:        "buyer confirms pending order",
			order:       Order{Status: OrderStatusPending},
			party:       PartyBuyer,
			wantChanged: true,
			wantStatus:  OrderStatusInProgress,
		},
		{
			name:        "seller confirms pending order",
			order:       Order{Status: OrderStatusPending},
			party:       PartySeller,
			wantChanged: true,
			wantStatus:  OrderStatusInProgress,
		},
		{
			name:          "second confirmation completes the order",
			order:         Order{Status: OrderStatusInProgress, BuyerConfirm: true},
			party:         PartySeller,
			wantCompleted: true,
			wantChanged:   true,
			wantStatus:    OrderStatusCompleted,
		},
		{
			name:          "completion is order independent",
			order:         Order{Status: OrderStatusInProgress, SellerConfirm: true},
			party:         PartyBuyer,
			wantCompleted: true,
			wantChanged:   true,
			wantStatus:    OrderStatusCompleted,
		},
		{
			name:       "repeated confirmation by same party is a no-op",
			order:      Order{Status: OrderStatusInProgress, BuyerConfirm: true},
			party:      PartyBuyer,
			wantStatus: OrderStatusInProgress,
		},
		{
			name:       "confirming a completed order stays completed",
			order:      Order{Status: OrderStatusCompleted, BuyerConfirm: true, SellerConfirm: true},
			party:      PartyBuyer,
			wantStatus: OrderStatusCompleted,
		},
		{
			name:       "confirming a cancelled order is rejected",
			order:      Order{Status: OrderStatusCancelled},
			party:      PartyBuyer,
			wantStatus: OrderStatusCancelled,
			wantErr:    tradeErrors.IsOrderCancelled,
		},
		{
			name:       "unknown party is rejected",
			order:      Order{Status: OrderStatusPending},
			party:      PartyNone,
			wantStatus: OrderStatusPending,
			wantErr:    tradeErrors.IsOrderUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := tt.order
			completed, changed, err := ApplyConfirm(&order, tt.party)
			if tt.wantErr != nil {
				if err == nil || !tt.wantErr(err) {
					t.Fatalf("ApplyConfirm() error = %v, want matching error", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyConfirm() unexpected error: %v", err)
			}
			if completed != tt.wantCompleted {
				t.Errorf("ApplyConfirm() completed = %v, want %v", completed, tt.wantCompleted)
			}
			if changed != tt.wantChanged {
				t.Errorf("ApplyConfirm() changed = %v, want %v", changed, tt.wantChanged)
			}
			if order.Status != tt.wantStatus {
				t.Errorf("order status = %d, want %d", order.Status, tt.wantStatus)
			}
		})
	}
}

func TestApplyConfirmSetsFlags(t *testing.T) {
	order := &Order{Status: OrderStatusPending}

	if _, changed, err := ApplyConfirm(order, PartyBuyer); err != nil || !changed {
		t.Fatalf("buyer confirm: changed=%v, err=%v", changed, err)
	}
	if !order.BuyerConfirm || order.SellerConfirm {
		t.Fatalf("after buyer confirm: buyer=%v seller=%v", order.BuyerConfirm, order.SellerConfirm)
	}

	completed, changed, err := ApplyConfirm(order, PartySeller)
	if err != nil {
		t.Fatalf("seller confirm failed: %v", err)
	}
	if !completed || !changed {
		t.Fatalf("dual confirmation: completed=%v changed=%v, want both true", completed, changed)
	}
	if !order.BuyerConfirm || !order.SellerConfirm {
		t.Fatalf("after dual confirm: buyer=%v seller=%v", order.BuyerConfirm, order.SellerConfirm)
	}
}

func TestApplyCancel(t *testing.T) {
	tests := []struct {
		name       string
		order      Order
		wantStatus int
		wantErr    bool
	}{
		{
			name:       "cancel pending order",
			order:      Order{Status: OrderStatusPending},
			wantStatus: OrderStatusCancelled,
		},
		{
			name:       "cancel in-progress order",
			order:      Order{Status: OrderStatusInProgress, BuyerConfirm: true},
			wantStatus: OrderStatusCancelled,
		},
		{
			name:    "cancel completed order is rejected",
			order:   Order{Status: OrderStatusCompleted},
			wantErr: true,
		},
		{
			name:    "cancel cancelled order is rejected",
			order:   Order{Status: OrderStatusCancelled},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := tt.order
			err := ApplyCancel(&order)
			if tt.wantErr {
				if err == nil || !tradeErrors.IsInvalidStateTransition(err) {
					t.Fatalf("ApplyCancel() error = %v, want invalid state transition", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyCancel() unexpected error: %v", err)
			}
			if order.Status != tt.wantStatus {
				t.Errorf("order status = %d, want %d", order.Status, tt.wantStatus)
			}
		})
	}
}
