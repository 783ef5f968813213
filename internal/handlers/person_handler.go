package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "fundledger/internal/errors"
	"fundledger/internal/pagination"
	"fundledger/internal/services"
)

// PersonHandler handles person-related requests.
type PersonHandler struct {
	personService services.PersonServicer
}

// NewPersonHandler creates a new PersonHandler.
func NewPersonHandler(personService services.PersonServicer) *PersonHandler {
	return &PersonHandler{personService: personService}
}

// CreatePersonRequest represents the request payload for creating a person
type CreatePersonRequest struct {
	FullName string `json:"full_name" binding:"required,max=200"`
	Notes    string `json:"notes" binding:"max=1000"`
}

// ListPersons returns persons ordered by name
// @Summary     List persons
// @Tags        persons
// @Produce     json
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Person]
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     502 {object} ErrorResponse "Ledger store failure"
// @Router      /persons [get]
func (h *PersonHandler) ListPersons(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.personService.ListPersons(c.Request.Context(), page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// CreatePerson adds a person
// @Summary     Create a person
// @Description Admin only.
// @Tags        persons
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreatePersonRequest true "Person details"
// @Success     201 {object} models.Person
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Router      /persons [post]
func (h *PersonHandler) CreatePerson(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreatePersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	person, err := h.personService.CreatePerson(c.Request.Context(), actor, req.FullName, req.Notes)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"person": person})
}

// DeletePerson removes a person. Their transactions stay and show no person.
// @Summary     Delete a person
// @Description Admin only.
// @Tags        persons
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Person ID"
// @Success     200 {object} map[string]string "Deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Person not found"
// @Router      /persons/{id} [delete]
func (h *PersonHandler) DeletePerson(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.personService.DeletePerson(c.Request.Context(), actor, id); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Person deleted successfully"})
}
