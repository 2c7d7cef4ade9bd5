package handlers

import (
	"testing"

	"fashionstore/internal/models"
)

func TestOrderTransitionsFromPending(t *testing.T) {
	if !canTransitionOrder(models.OrderStatusPending, models.OrderStatusPackaged) {
		t.Fatal("expected pending -> packaged to be allowed")
	}
	if !canTransitionOrder(models.OrderStatusPending, models.OrderStatusCanceled) {
		t.Fatal("expected pending -> canceled to be allowed")
	}
	if canTransitionOrder(models.OrderStatusPending, models.OrderStatusDelivered) {
		t.Fatal("expected pending -> delivered to be rejected")
	}
	if canTransitionOrder(models.OrderStatusPending, models.OrderStatusSentOut) {
		t.Fatal("expected pending -> sent_out to be rejected")
	}
}

func TestOrderTransitionsFromPackaged(t *testing.T) {
	if !canTransitionOrder(models.OrderStatusPackaged, models.OrderStatusSentOut) {
		t.Fatal("expected packaged -> sent_out to be allowed")
	}
	if !canTransitionOrder(models.OrderStatusPackaged, models.OrderStatusCanceled) {
		t.Fatal("expected packaged -> canceled to be allowed")
	}
	if canTransitionOrder(models.OrderStatusPackaged, models.OrderStatusPending) {
		t.Fatal("expected packaged -> pending to be rejected")
	}
}

func TestOrderTransitionsFromSentOut(t *testing.T) {
	if !canTransitionOrder(models.OrderStatusSentOut, models.OrderStatusDelivered) {
		t.Fatal("expected sent_out -> delivered to be allowed")
	}
	if canTransitionOrder(models.OrderStatusSentOut, models.OrderStatusCanceled) {
		t.Fatal("expected sent_out -> canceled to be rejected, shipped orders cannot be canceled")
	}
}

func TestTerminalStatusesAllowNothing(t *testing.T) {
	for _, terminal := range []string{models.OrderStatusDelivered, models.OrderStatusCanceled} {
		for target := range orderTransitions {
			if canTransitionOrder(terminal, target) {
				t.Fatalf("expected %s -> %s to be rejected", terminal, target)
			}
		}
	}
}

func TestIsValidOrderStatus(t *testing.T) {
	for status := range orderTransitions {
		if !isValidOrderStatus(status) {
			t.Fatalf("expected %s to be a known status", status)
		}
	}
	if isValidOrderStatus("shipped") {
		t.Fatal("expected unknown status to be rejected")
	}
	if isValidOrderStatus("") {
		t.Fatal("expected empty status to be rejected")
	}
}
