package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sharearide/sharearide-backend/internal/models"
	"github.com/sharearide/sharearide-backend/internal/services"
	"github.com/sharearide/sharearide-backend/internal/store"
	"github.com/sirupsen/logrus"
)

// SubmitRideRequest stores the request and answers 201 with it still
// PENDING; the decision follows asynchronously.
func SubmitRideRequest(flow *services.RideFlow, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.RideRequestInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		if _, ok := models.ParsePaymentMethod(string(input.PaymentMethod)); !ok {
			c.JSON(400, gin.H{"error": "Unsupported payment method"})
			return
		}
		if input.PersonID == 0 {
			input.PersonID = c.GetUint("userId")
		}

		req, err := flow.Submit(c.Request.Context(), input)
		if err != nil {
			RespondError(c, log, err)
			return
		}
		c.JSON(201, req)
	}
}

func GetRideRequest(flow *services.RideFlow, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		req, err := flow.Get(c.Request.Context(), id)
		if err != nil {
			RespondError(c, log, err)
			return
		}
		c.JSON(200, req)
	}
}

// ListRideRequests filters by rideOfferId, personId, rideId and status.
func ListRideRequests(flow *services.RideFlow, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q store.RideRequestQuery
		var ok bool
		if q.RideOfferID, ok = queryID(c, "rideOfferId"); !ok {
			return
		}
		if q.PersonID, ok = queryID(c, "personId"); !ok {
			return
		}
		if q.RideID, ok = queryID(c, "rideId"); !ok {
			return
		}
		if raw := c.Query("status"); raw != "" {
			switch st := models.RideRequestStatus(strings.ToUpper(raw)); st {
			case models.RideRequestStatusPending, models.RideRequestStatusAccepted, models.RideRequestStatusRejected:
				q.Status = st
			default:
				c.JSON(400, gin.H{"error": "Invalid status"})
				return
			}
		}

		list, err := flow.List(c.Request.Context(), q)
		if err != nil {
			RespondError(c, log, err)
			return
		}
		c.JSON(200, list)
	}
}
