package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sharearide/sharearide-backend/internal/services"
	"github.com/sirupsen/logrus"
)

func GetRide(rides *services.RideService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		ride, err := rides.Get(c.Request.Context(), id)
		if err != nil {
			RespondError(c, log, err)
			return
		}
		c.JSON(200, ride)
	}
}

func GetRidePassengers(rides *services.RideService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		passengers, err := rides.Passengers(c.Request.Context(), id)
		if err != nil {
			RespondError(c, log, err)
			return
		}
		c.JSON(200, passengers)
	}
}

// GetRideParticipants lists the driver followed by every passenger.
func GetRideParticipants(rides *services.RideService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		participants, err := rides.Participants(c.Request.Context(), id)
		if err != nil {
			RespondError(c, log, err)
			return
		}
		c.JSON(200, participants)
	}
}

func GetPersonRideHistory(rides *services.RideService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		history, err := rides.History(c.Request.Context(), id)
		if err != nil {
			RespondError(c, log, err)
			return
		}
		c.JSON(200, history)
	}
}
