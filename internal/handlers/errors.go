package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

/* =========================
   BUSINESS ERRORS
========================= */

type insufficientStockError struct {
	ProductID   primitive.ObjectID
	ProductName string
	Available   int
	Requested   int
}

func (e insufficientStockError) Error() string {
	return "insufficient stock"
}

type productNotFoundError struct {
	ProductID primitive.ObjectID
}

func (e productNotFoundError) Error() string {
	return "product not found"
}

type barcodeUnavailableError struct {
	Code string
}

func (e barcodeUnavailableError) Error() string {
	return "barcode does not exist or is already in use"
}

type invalidSizesError struct {
	Invalid []string
}

func (e invalidSizesError) Error() string {
	return "invalid sizes"
}

type invalidDeliveryCompanyError struct {
	ID string
}

func (e invalidDeliveryCompanyError) Error() string {
	return "invalid delivery company"
}

type emptyCartError struct{}

func (e emptyCartError) Error() string {
	return "cart is empty"
}

type invalidStatusTransitionError struct {
	From string
	To   string
}

func (e invalidStatusTransitionError) Error() string {
	return "invalid status transition"
}

/* =========================
   RESPONSE MAPPING
========================= */

// respondBusinessError maps the typed business errors to their HTTP shape.
// Anything unrecognized is a storage failure and stays a plain 500.
func respondBusinessError(c *gin.Context, err error) {
	var stockErr insufficientStockError
	if errors.As(err, &stockErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "insufficient stock",
			"productId": stockErr.ProductID.Hex(),
			"product":   stockErr.ProductName,
			"available": stockErr.Available,
			"requested": stockErr.Requested,
		})
		return
	}

	var notFoundErr productNotFoundError
	if errors.As(err, &notFoundErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "product not found",
			"productId": notFoundErr.ProductID.Hex(),
		})
		return
	}

	var barcodeErr barcodeUnavailableError
	if errors.As(err, &barcodeErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": barcodeErr.Error(),
			"code":  barcodeErr.Code,
		})
		return
	}

	var sizesErr invalidSizesError
	if errors.As(err, &sizesErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid sizes",
			"invalid": sizesErr.Invalid,
		})
		return
	}

	var deliveryErr invalidDeliveryCompanyError
	if errors.As(err, &deliveryErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid delivery company"})
		return
	}

	var cartErr emptyCartError
	if errors.As(err, &cartErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cart is empty"})
		return
	}

	var transitionErr invalidStatusTransitionError
	if errors.As(err, &transitionErr) {
		c.JSON(http.StatusConflict, gin.H{
			"error": "invalid status transition",
			"from":  transitionErr.From,
			"to":    transitionErr.To,
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
}
