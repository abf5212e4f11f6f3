package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sharearide/sharearide-backend/internal/middleware"
	"github.com/sharearide/sharearide-backend/internal/services"
	"github.com/sirupsen/logrus"
)

type Services struct {
	Offers   *services.OfferService
	Flow     *services.RideFlow
	Rides    *services.RideService
	Bookings *services.BookingService
	Persons  *services.PersonService
	Hub      *services.Hub
}

// RegisterRoutes mounts the HTTP API on r. Every /api route resolves the
// caller through the identity middleware.
func RegisterRoutes(r *gin.Engine, s Services, jwtSecret string, log *logrus.Logger) {
	r.GET("/health", Health(s.Hub, time.Now()))

	api := r.Group("/api")
	api.Use(middleware.Identity(jwtSecret))
	{
		api.GET("/ws", WebSocketHandler(s.Hub))

		offers := api.Group("/rideoffers")
		{
			offers.POST("", CreateRideOffer(s.Offers, log))
			offers.GET("/search", SearchRideOffers(s.Offers, log))
			offers.GET("/driver/:driverId", GetDriverRideOffers(s.Offers, log))
			offers.GET("/:id", GetRideOffer(s.Offers, log))
			offers.PUT("/:id", UpdateRideOffer(s.Offers, log))
			offers.DELETE("/:id", DeleteRideOffer(s.Offers, log))
		}

		requests := api.Group("/riderequests")
		{
			requests.POST("", SubmitRideRequest(s.Flow, log))
			requests.GET("", ListRideRequests(s.Flow, log))
			requests.GET("/:id", GetRideRequest(s.Flow, log))
		}

		rides := api.Group("/rides")
		{
			rides.GET("/:id", GetRide(s.Rides, log))
			rides.GET("/:id/passengers", GetRidePassengers(s.Rides, log))
			rides.GET("/:id/participants", GetRideParticipants(s.Rides, log))
		}

		bookings := api.Group("/bookings")
		{
			bookings.POST("", CreateBooking(s.Bookings, log))
			bookings.GET("/user/:userId", GetUserBookings(s.Bookings, log))
			bookings.GET("/driver/:driverId", GetDriverBookings(s.Bookings, log))
			bookings.GET("/:id", GetBooking(s.Bookings, log))
			bookings.PUT("/:id/cancel", CancelBooking(s.Bookings, log))
			bookings.PUT("/:id/confirm", ConfirmBooking(s.Bookings, log))
		}

		payments := api.Group("/payments")
		{
			payments.POST("/process", ProcessPayment(s.Bookings, log))
			payments.POST("/verify-otp", VerifyOTP(s.Bookings, log))
			payments.POST("/refund/:bookingId", RefundPayment(s.Bookings, log))
		}

		persons := api.Group("/persons")
		{
			persons.POST("", CreatePerson(s.Persons, log))
			persons.GET("/:id", GetPersonContact(s.Persons, log))
			persons.GET("/:id/rides", GetPersonRideHistory(s.Rides, log))
			persons.PUT("/:id/push-token", UpdatePushToken(s.Persons, log))
		}

		cars := api.Group("/cars")
		{
			cars.POST("", CreateCar(s.Persons, log))
			cars.GET("/:id", GetCar(s.Persons, log))
		}
	}
}
