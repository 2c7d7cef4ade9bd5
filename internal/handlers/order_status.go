package handlers

import "fashionstore/internal/models"

// orderTransitions is the full lifecycle. delivered and canceled are
// terminal; nothing is reversible.
var orderTransitions = map[string][]string{
	models.OrderStatusPending:   {models.OrderStatusPackaged, models.OrderStatusCanceled},
	models.OrderStatusPackaged:  {models.OrderStatusSentOut, models.OrderStatusCanceled},
	models.OrderStatusSentOut:   {models.OrderStatusDelivered},
	models.OrderStatusDelivered: {},
	models.OrderStatusCanceled:  {},
}

func isValidOrderStatus(status string) bool {
	_, ok := orderTransitions[status]
	return ok
}

func canTransitionOrder(from, to string) bool {
	for _, allowed := range orderTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
