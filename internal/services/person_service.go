package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "fundledger/internal/errors"
	"fundledger/internal/models"
	"fundledger/internal/pagination"
)

// personService manages the persons transactions may refer to.
type personService struct {
	db    *gorm.DB
	audit AuditServicer
}

// NewPersonService creates a new PersonServicer.
func NewPersonService(db *gorm.DB, audit AuditServicer) PersonServicer {
	return &personService{db: db, audit: audit}
}

// CreatePerson adds a person.
func (s *personService) CreatePerson(ctx context.Context, actor Actor, fullName, notes string) (*models.Person, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "full name is required")
	}

	person := &models.Person{FullName: fullName}
	if n := strings.TrimSpace(notes); n != "" {
		person.Notes = &n
	}
	if err := s.db.WithContext(ctx).Create(person).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUpstreamFailure, err)
	}

	s.audit.Log(actor.UserID, "CREATE_PERSON", "person", person.ID, actor.IPAddress, map[string]interface{}{
		"full_name": person.FullName,
	})
	return person, nil
}

// ListPersons returns persons ordered by name.
func (s *personService) ListPersons(ctx context.Context, page pagination.PageRequest) (*pagination.PageResponse[models.Person], error) {
	page.Defaults()

	db := s.db.WithContext(ctx)

	var totalItems int64
	if err := db.Model(&models.Person{}).Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUpstreamFailure, err)
	}

	var persons []models.Person
	if err := db.Scopes(pagination.Paginate(page)).
		Order("full_name ASC").
		Find(&persons).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUpstreamFailure, err)
	}

	result := pagination.NewPageResponse(persons, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetPersonByID retrieves a person by ID.
func (s *personService) GetPersonByID(ctx context.Context, id string) (*models.Person, error) {
	var person models.Person
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&person).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPersonNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrUpstreamFailure, err)
	}
	return &person, nil
}

// DeletePerson soft-deletes a person. Transactions keep the id and are shown
// without a person from then on.
func (s *personService) DeletePerson(ctx context.Context, actor Actor, id string) error {
	if !actor.IsAdmin() {
		return apperrors.ErrForbidden
	}

	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Person{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrUpstreamFailure, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrPersonNotFound
	}

	s.audit.Log(actor.UserID, "DELETE_PERSON", "person", id, actor.IPAddress, nil)
	return nil
}
