package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sharearide/sharearide-backend/internal/models"
	"github.com/sharearide/sharearide-backend/internal/services"
	"github.com/sirupsen/logrus"
)

// CreateRideOffer publishes a new offer. The caller is its driver unless the
// body names one.
func CreateRideOffer(offers *services.OfferService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var offer models.RideOffer
		if err := c.ShouldBindJSON(&offer); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		if offer.DriverPersonID == 0 {
			offer.DriverPersonID = c.GetUint("userId")
		}

		created, err := offers.Create(c.Request.Context(), &offer)
		if err != nil {
			RespondError(c, log, err)
			return
		}
		c.JSON(201, created)
	}
}

func GetRideOffer(offers *services.OfferService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		detail, err := offers.Detail(c.Request.Context(), id)
		if err != nil {
			RespondError(c, log, err)
			return
		}
		c.JSON(200, detail)
	}
}

func UpdateRideOffer(offers *services.OfferService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		var in models.RideOffer
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		updated, err := offers.Update(c.Request.Context(), id, &in)
		if err != nil {
			RespondError(c, log, err)
			return
		}
		c.JSON(200, updated)
	}
}

func DeleteRideOffer(offers *services.OfferService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		if err := offers.Delete(c.Request.Context(), id); err != nil {
			RespondError(c, log, err)
			return
		}
		c.Status(204)
	}
}

func GetDriverRideOffers(offers *services.OfferService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		driverID, ok := paramID(c, "driverId")
		if !ok {
			return
		}
		list, err := offers.ListByDriver(c.Request.Context(), driverID)
		if err != nil {
			RespondError(c, log, err)
			return
		}
		c.JSON(200, list)
	}
}

// SearchRideOffers serves ?departureCity=&destinationCity=&date=YYYY-MM-DD.
func SearchRideOffers(offers *services.OfferService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var date *time.Time
		if raw := c.Query("date"); raw != "" {
			d, err := time.Parse("2006-01-02", raw)
			if err != nil {
				c.JSON(400, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
				return
			}
			date = &d
		}

		results, err := offers.Search(c.Request.Context(), c.Query("departureCity"), c.Query("destinationCity"), date)
		if err != nil {
			RespondError(c, log, err)
			return
		}
		c.JSON(200, results)
	}
}
