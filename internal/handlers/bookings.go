package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sharearide/sharearide-backend/internal/services"
	"github.com/sirupsen/logrus"
)

// CreateBooking books the caller onto an offer.
func CreateBooking(bookings *services.BookingService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.CreateBookingInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		booking, err := bookings.Create(c.Request.Context(), c.GetUint("userId"), input)
		if err != nil {
			RespondError(c, log, err)
			return
		}
		c.JSON(201, booking)
	}
}

func GetBooking(bookings *services.BookingService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		booking, err := bookings.Get(c.Request.Context(), id)
		if err != nil {
			RespondError(c, log, err)
			return
		}
		c.JSON(200, booking)
	}
}

// GetUserBookings accepts ?status=upcoming|past|<status name>.
func GetUserBookings(bookings *services.BookingService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := paramID(c, "userId")
		if !ok {
			return
		}
		list, err := bookings.ListForPassenger(c.Request.Context(), userID, c.Query("status"))
		if err != nil {
			RespondError(c, log, err)
			return
		}
		c.JSON(200, list)
	}
}

func GetDriverBookings(bookings *services.BookingService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		driverID, ok := paramID(c, "driverId")
		if !ok {
			return
		}
		list, err := bookings.ListForDriver(c.Request.Context(), driverID)
		if err != nil {
			RespondError(c, log, err)
			return
		}
		c.JSON(200, list)
	}
}

func CancelBooking(bookings *services.BookingService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		booking, err := bookings.Cancel(c.Request.Context(), id)
		if err != nil {
			RespondError(c, log, err)
			return
		}
		c.JSON(200, booking)
	}
}

func ConfirmBooking(bookings *services.BookingService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		booking, err := bookings.Confirm(c.Request.Context(), id)
		if err != nil {
			RespondError(c, log, err)
			return
		}
		c.JSON(200, booking)
	}
}
