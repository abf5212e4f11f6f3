package models

import (
	"strings"

	"gorm.io/gorm"
)

type Person struct {
	gorm.Model
	Name             string `json:"name" gorm:"not null"`
	Gender           string `json:"gender"`
	Age              int    `json:"age"`
	HomeCity         string `json:"homeCity"`
	Bio              string `json:"bio"`
	PhoneNumber      string `json:"phoneNumber"`
	Email            string `json:"email"`
	CarID            uint   `json:"carId"`
	Languages        string `json:"languages"`
	ChatinessLevel   int    `json:"chatinessLevel"`
	OverallKmCovered int    `json:"overallKmCovered"`
	PushToken        string `json:"-"`
}

// TableName specifies the table name
func (Person) TableName() string {
	return "persons"
}

// SplitName splits on the first space into forename and lastname.
func (p *Person) SplitName() (string, string) {
	trimmed := strings.TrimSpace(p.Name)
	if idx := strings.Index(trimmed, " "); idx > 0 {
		return strings.TrimSpace(trimmed[:idx]), strings.TrimSpace(trimmed[idx+1:])
	}
	return trimmed, ""
}

type Car struct {
	gorm.Model
	Make           string `json:"make"`
	ModelName      string `json:"model" gorm:"column:model"`
	Plate          string `json:"plate"`
	AvailableSeats int    `json:"availableSeats"`
	LuggageSpace   int    `json:"luggageSpace"`
	SmokingAllowed bool   `json:"smokingAllowed"`
	PetsAllowed    bool   `json:"petsAllowed"`
	BuildYear      int    `json:"buildYear"`
}
