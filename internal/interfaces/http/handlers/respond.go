// internal/interfaces/http/handlers/respond.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/sokohub/sokohub-backend/internal/domain/cart"
	"github.com/sokohub/sokohub-backend/internal/domain/feedback"
	"github.com/sokohub/sokohub-backend/internal/domain/order"
	"github.com/sokohub/sokohub-backend/internal/domain/payment"
	"github.com/sokohub/sokohub-backend/internal/domain/product"
	"github.com/sokohub/sokohub-backend/internal/domain/user"
)

func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": data})
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

func badRequest(c *gin.Context, message string) {
	fail(c, http.StatusBadRequest, message)
}

// handleServiceError maps domain sentinel errors to HTTP responses.
// Unknown errors are logged and returned as an opaque 500 so internal
// details never reach clients.
func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, user.ErrUserNotFound),
		errors.Is(err, user.ErrAddressNotFound),
		errors.Is(err, product.ErrProductNotFound),
		errors.Is(err, cart.ErrCartNotFound),
		errors.Is(err, cart.ErrCartItemNotFound),
		errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, payment.ErrPaymentNotFound),
		errors.Is(err, feedback.ErrFeedbackNotFound):
		fail(c, http.StatusNotFound, err.Error())

	case errors.Is(err, user.ErrNotAddressOwner),
		errors.Is(err, cart.ErrNotCartOwner),
		errors.Is(err, order.ErrNotOrderOwner),
		errors.Is(err, feedback.ErrNotFeedbackOwner):
		fail(c, http.StatusForbidden, "access denied")

	case errors.Is(err, user.ErrEmailTaken),
		errors.Is(err, product.ErrSlugTaken),
		errors.Is(err, payment.ErrOrderAlreadyPaid),
		errors.Is(err, payment.ErrPaymentInFlight):
		fail(c, http.StatusConflict, err.Error())

	case errors.Is(err, user.ErrInvalidCredentials),
		errors.Is(err, user.ErrAccountDisabled):
		fail(c, http.StatusUnauthorized, err.Error())

	case errors.Is(err, order.ErrCartEmpty),
		errors.Is(err, order.ErrInvalidStatus),
		errors.Is(err, order.ErrOrderNotCancellable),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, cart.ErrOutOfStock),
		errors.Is(err, product.ErrInvalidPrice),
		errors.Is(err, payment.ErrInvalidAmount),
		errors.Is(err, payment.ErrAmountMismatch),
		errors.Is(err, payment.ErrInvalidPhone),
		errors.Is(err, payment.ErrPaymentNotPaid),
		errors.Is(err, feedback.ErrInvalidRating):
		fail(c, http.StatusBadRequest, err.Error())

	case errors.Is(err, payment.ErrProviderRejected):
		fail(c, http.StatusBadGateway, "payment provider error")

	default:
		logrus.WithError(err).Error("unhandled service error")
		fail(c, http.StatusInternalServerError, "something went wrong")
	}
}
