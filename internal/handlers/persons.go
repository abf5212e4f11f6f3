package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sharearide/sharearide-backend/internal/models"
	"github.com/sharearide/sharearide-backend/internal/services"
	"github.com/sirupsen/logrus"
)

func CreatePerson(persons *services.PersonService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var person models.Person
		if err := c.ShouldBindJSON(&person); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		created, err := persons.Create(c.Request.Context(), &person)
		if err != nil {
			RespondError(c, log, err)
			return
		}
		c.JSON(201, created)
	}
}

// GetPersonContact returns the contact card, never the full profile.
func GetPersonContact(persons *services.PersonService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		contact, err := persons.Contact(c.Request.Context(), id)
		if err != nil {
			RespondError(c, log, err)
			return
		}
		c.JSON(200, contact)
	}
}

func UpdatePushToken(persons *services.PersonService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		var input struct {
			Token string `json:"token" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		if err := persons.SetPushToken(c.Request.Context(), id, input.Token); err != nil {
			RespondError(c, log, err)
			return
		}
		c.JSON(200, gin.H{"message": "Push token updated"})
	}
}

func CreateCar(persons *services.PersonService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var car models.Car
		if err := c.ShouldBindJSON(&car); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		created, err := persons.CreateCar(c.Request.Context(), &car)
		if err != nil {
			RespondError(c, log, err)
			return
		}
		c.JSON(201, created)
	}
}

func GetCar(persons *services.PersonService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		car, err := persons.Car(c.Request.Context(), id)
		if err != nil {
			RespondError(c, log, err)
			return
		}
		c.JSON(200, car)
	}
}
