package services

import (
	"context"
	"strings"

	"github.com/sharearide/sharearide-backend/internal/domain"
	"github.com/sharearide/sharearide-backend/internal/models"
	"github.com/sharearide/sharearide-backend/internal/store"
)

type PersonContact struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Forename    string `json:"forename"`
	Lastname    string `json:"lastname"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
}

type PersonService struct {
	store store.Store
}

func NewPersonService(st store.Store) *PersonService {
	return &PersonService{store: st}
}

func (s *PersonService) Create(ctx context.Context, p *models.Person) (*models.Person, error) {
	if strings.TrimSpace(p.Name) == "" {
		return nil, domain.Invalid("name", "is required")
	}
	if p.CarID != 0 {
		if _, err := s.store.FindCar(ctx, p.CarID); err != nil {
			return nil, err
		}
	}
	p.ID = 0
	if err := s.store.CreatePerson(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PersonService) Contact(ctx context.Context, id uint) (*PersonContact, error) {
	p, err := s.store.FindPerson(ctx, id)
	if err != nil {
		return nil, err
	}
	forename, lastname := p.SplitName()
	return &PersonContact{
		ID:          p.ID,
		Name:        p.Name,
		Forename:    forename,
		Lastname:    lastname,
		Email:       p.Email,
		PhoneNumber: p.PhoneNumber,
	}, nil
}

// SetPushToken stores the FCM registration token used for push notifications.
// An empty token unregisters the device.
func (s *PersonService) SetPushToken(ctx context.Context, id uint, token string) error {
	p, err := s.store.FindPerson(ctx, id)
	if err != nil {
		return err
	}
	p.PushToken = strings.TrimSpace(token)
	return s.store.SavePerson(ctx, p)
}

func (s *PersonService) CreateCar(ctx context.Context, c *models.Car) (*models.Car, error) {
	if strings.TrimSpace(c.Make) == "" || strings.TrimSpace(c.Plate) == "" {
		return nil, domain.Invalid("car", "make and plate are required")
	}
	c.ID = 0
	if err := s.store.CreateCar(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *PersonService) Car(ctx context.Context, id uint) (*models.Car, error) {
	return s.store.FindCar(ctx, id)
}
