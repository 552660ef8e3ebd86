package service

import (
	"testing"
	"time"

	"campus-trade/internal/biz"
)

func TestToOrderReply(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	order := &biz.Order{
		ID:            7,
		OrderNo:       "ORD202506011200001234",
		BuyerID:       100,
		SellerID:      200,
		ProductID:     1,
		Amount:        120,
		Status:        biz.OrderStatusInProgress,
		BuyerConfirm:  true,
		SellerConfirm: false,
		Remark:        "campus pickup",
		CreateTime:    now,
		UpdateTime:    now,
	}

	reply := toOrderReply(order)
	if reply.StatusText != "in progress" {
		t.Errorf("status text = %q, want %q", reply.StatusText, "in progress")
	}
	if !reply.BuyerConfirm || reply.SellerConfirm {
		t.Errorf("confirm flags = %v/%v, want true/false", reply.BuyerConfirm, reply.SellerConfirm)
	}
	if reply.CreateTime != "2025-06-01T12:00:00Z" {
		t.Errorf("create time = %q, want RFC3339", reply.CreateTime)
	}
}

func TestToOrderReplyStatusText(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{biz.OrderStatusPending, "pending confirmation"},
		{biz.OrderStatusInProgress, "in progress"},
		{biz.OrderStatusCompleted, "completed"},
		{biz.OrderStatusCancelled, "cancelled"},
		{42, "unknown"},
	}
	for _, tt := range tests {
		reply := toOrderReply(&biz.Order{Status: tt.status})
		if reply.StatusText != tt.want {
			t.Errorf("status %d text = %q, want %q", tt.status, reply.StatusText, tt.want)
		}
	}
}

func TestToOrderListReply(t *testing.T) {
	reply := toOrderListReply(nil)
	if reply.Items == nil || len(reply.Items) != 0 {
		t.Errorf("empty list should marshal as [], got %v", reply.Items)
	}
}
