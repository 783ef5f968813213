package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "fundledger/internal/errors"
	"fundledger/internal/models"
	"fundledger/internal/pagination"
	"fundledger/internal/services"
)

type mockPersonService struct {
	createFn func(ctx context.Context, actor services.Actor, fullName, notes string) (*models.Person, error)
	listFn   func(ctx context.Context, page pagination.PageRequest) (*pagination.PageResponse[models.Person], error)
	deleteFn func(ctx context.Context, actor services.Actor, id string) error
}

func (m *mockPersonService) CreatePerson(ctx context.Context, actor services.Actor, fullName, notes string) (*models.Person, error) {
	if m.createFn != nil {
		return m.createFn(ctx, actor, fullName, notes)
	}
	return nil, apperrors.ErrInternalServer
}

func (m *mockPersonService) ListPersons(ctx context.Context, page pagination.PageRequest) (*pagination.PageResponse[models.Person], error) {
	if m.listFn != nil {
		return m.listFn(ctx, page)
	}
	resp := pagination.NewPageResponse[models.Person](nil, 1, 20, 0)
	return &resp, nil
}

func (m *mockPersonService) GetPersonByID(ctx context.Context, id string) (*models.Person, error) {
	return nil, apperrors.ErrPersonNotFound
}

func (m *mockPersonService) DeletePerson(ctx context.Context, actor services.Actor, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, actor, id)
	}
	return nil
}

var _ services.PersonServicer = (*mockPersonService)(nil)

func setupPersonRouter(svc services.PersonServicer) *gin.Engine {
	r := gin.New()
	h := NewPersonHandler(svc)
	r.GET("/persons", h.ListPersons)
	auth := r.Group("", injectActor(testAdminID, models.RoleAdmin))
	auth.POST("/persons", h.CreatePerson)
	auth.DELETE("/persons/:id", h.DeletePerson)
	return r
}

func TestPersonHandler_Create(t *testing.T) {
	svc := &mockPersonService{
		createFn: func(_ context.Context, actor services.Actor, fullName, notes string) (*models.Person, error) {
			p := &models.Person{FullName: fullName, Notes: &notes}
			p.ID = testViewerID
			return p, nil
		},
	}
	r := setupPersonRouter(svc)

	rec := doRequest(r, "POST", "/persons", `{"full_name":"María Pérez","notes":"vecina"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	person := parseJSON(t, rec)["person"].(map[string]interface{})
	if person["full_name"] != "María Pérez" || person["id"] != testViewerID {
		t.Errorf("unexpected person %v", person)
	}

	rec = doRequest(r, "POST", "/persons", `{"notes":"no name"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
}

func TestPersonHandler_List(t *testing.T) {
	svc := &mockPersonService{
		listFn: func(_ context.Context, page pagination.PageRequest) (*pagination.PageResponse[models.Person], error) {
			resp := pagination.NewPageResponse([]models.Person{{FullName: "Ana"}, {FullName: "Luis"}}, 1, 20, 2)
			return &resp, nil
		},
	}
	rec := doRequest(setupPersonRouter(svc), "GET", "/persons", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	data := parseJSON(t, rec)["data"].([]interface{})
	if len(data) != 2 {
		t.Errorf("expected 2 persons, got %d", len(data))
	}
}

func TestPersonHandler_Delete(t *testing.T) {
	svc := &mockPersonService{
		deleteFn: func(_ context.Context, _ services.Actor, id string) error {
			if id != testViewerID {
				return apperrors.ErrPersonNotFound
			}
			return nil
		},
	}
	r := setupPersonRouter(svc)

	if rec := doRequest(r, "DELETE", "/persons/"+testViewerID, ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	rec := doRequest(r, "DELETE", "/persons/"+testTxID, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	assertErrorCode(t, parseJSON(t, rec), "PERSON_NOT_FOUND")
}
