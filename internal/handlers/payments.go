package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sharearide/sharearide-backend/internal/services"
	"github.com/sirupsen/logrus"
)

func ProcessPayment(bookings *services.BookingService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.PaymentInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		result, err := bookings.ProcessPayment(c.Request.Context(), input)
		if err != nil {
			RespondError(c, log, err)
			return
		}
		c.JSON(200, result)
	}
}

// VerifyOTP answers 200 for a wrong code too; the body carries success=false.
func VerifyOTP(bookings *services.BookingService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			BookingID uint   `json:"bookingId" binding:"required"`
			OTP       string `json:"otp" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		result, err := bookings.VerifyOTP(c.Request.Context(), input.BookingID, input.OTP)
		if err != nil {
			RespondError(c, log, err)
			return
		}
		c.JSON(200, result)
	}
}

func RefundPayment(bookings *services.BookingService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "bookingId")
		if !ok {
			return
		}
		result, err := bookings.Refund(c.Request.Context(), id)
		if err != nil {
			RespondError(c, log, err)
			return
		}
		c.JSON(200, result)
	}
}
