package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "fundledger/internal/errors"
	"fundledger/internal/logger"
	"fundledger/internal/middleware"
	"fundledger/internal/models"
	"fundledger/internal/services"
	"fundledger/internal/validator"
)

// --- mock user service ---

type mockUserService struct {
	getUserByIDFn           func(id string) (*models.User, error)
	attemptLoginFn          func(email, password string) (*models.User, error)
	storeRefreshTokenHashFn func(userID, tokenHash string) error
	getRefreshTokenHashFn   func(userID string) (string, error)
}

func (m *mockUserService) CreateUser(email, password, fullName string, role models.Role) (*models.User, error) {
	return &models.User{Email: email, FullName: fullName, Role: role}, nil
}

func (m *mockUserService) GetUserByEmail(email string) (*models.User, error) {
	return nil, apperrors.ErrUserNotFound
}

func (m *mockUserService) GetUserByID(id string) (*models.User, error) {
	if m.getUserByIDFn != nil {
		return m.getUserByIDFn(id)
	}
	return nil, apperrors.ErrUserNotFound
}

func (m *mockUserService) VerifyPassword(user *models.User, password string) bool {
	return false
}

func (m *mockUserService) AttemptLogin(email, password string) (*models.User, error) {
	if m.attemptLoginFn != nil {
		return m.attemptLoginFn(email, password)
	}
	return nil, apperrors.ErrInvalidCredentials
}

func (m *mockUserService) StoreRefreshTokenHash(userID, tokenHash string) error {
	if m.storeRefreshTokenHashFn != nil {
		return m.storeRefreshTokenHashFn(userID, tokenHash)
	}
	return nil
}

func (m *mockUserService) GetRefreshTokenHash(userID string) (string, error) {
	if m.getRefreshTokenHashFn != nil {
		return m.getRefreshTokenHashFn(userID)
	}
	return "", nil
}

var _ services.UserServicer = (*mockUserService)(nil)

// --- test helpers ---

const (
	testAdminID  = "0190a6f2-aaaa-7000-8000-000000000001"
	testViewerID = "0190a6f2-bbbb-7000-8000-000000000002"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

func testAdmin() *models.User {
	u := &models.User{Email: "admin@fund.example", FullName: "Admin", Role: models.RoleAdmin, IsActive: true}
	u.ID = testAdminID
	return u
}

func injectActor(userID string, role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID)
		c.Set(middleware.ContextRole, role)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}

func setupAuthRouter(handler *AuthHandler) *gin.Engine {
	r := gin.New()
	r.POST("/auth/login", handler.Login)
	r.POST("/auth/refresh", handler.Refresh)
	r.GET("/profile", injectActor(testAdminID, models.RoleAdmin), handler.GetProfile)
	return r
}

// --- tests ---

func TestAuthHandler_Login(t *testing.T) {
	tokens := middleware.NewTokenManager("test-secret")

	t.Run("returns tokens on success", func(t *testing.T) {
		var storedHash string
		svc := &mockUserService{
			attemptLoginFn: func(email, password string) (*models.User, error) {
				return testAdmin(), nil
			},
			storeRefreshTokenHashFn: func(userID, hash string) error {
				storedHash = hash
				return nil
			},
		}
		r := setupAuthRouter(NewAuthHandler(svc, tokens))

		rec := doRequest(r, "POST", "/auth/login", `{"email":"admin@fund.example","password":"password123"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["access_token"] == "" || result["refresh_token"] == "" {
			t.Fatalf("expected tokens, got %v", result)
		}
		if storedHash != middleware.HashToken(result["refresh_token"].(string)) {
			t.Error("expected refresh token hash to be stored")
		}
		user := result["user"].(map[string]interface{})
		if user["role"] != "admin" {
			t.Errorf("expected role admin, got %v", user["role"])
		}
	})

	t.Run("returns 400 on invalid email", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockUserService{}, tokens))
		rec := doRequest(r, "POST", "/auth/login", `{"email":"not-an-email","password":"x"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 401 on bad credentials", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockUserService{}, tokens))
		rec := doRequest(r, "POST", "/auth/login", `{"email":"a@b.com","password":"wrong"}`)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_CREDENTIALS")
	})

	t.Run("returns 423 when locked", func(t *testing.T) {
		svc := &mockUserService{
			attemptLoginFn: func(email, password string) (*models.User, error) {
				return nil, apperrors.ErrAccountLocked
			},
		}
		r := setupAuthRouter(NewAuthHandler(svc, tokens))
		rec := doRequest(r, "POST", "/auth/login", `{"email":"a@b.com","password":"x"}`)
		if rec.Code != http.StatusLocked {
			t.Fatalf("expected 423, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "ACCOUNT_LOCKED")
	})
}

func TestAuthHandler_Refresh(t *testing.T) {
	tokens := middleware.NewTokenManager("test-secret")
	refresh, err := tokens.GenerateRefreshToken(testAdmin())
	if err != nil {
		t.Fatalf("GenerateRefreshToken: %v", err)
	}
	access, _ := tokens.GenerateAccessToken(testAdmin())

	newService := func(storedHash string) *mockUserService {
		return &mockUserService{
			getRefreshTokenHashFn: func(userID string) (string, error) { return storedHash, nil },
			getUserByIDFn: func(id string) (*models.User, error) {
				if id != testAdminID {
					return nil, apperrors.ErrUserNotFound
				}
				return testAdmin(), nil
			},
		}
	}

	t.Run("rotates tokens", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(newService(middleware.HashToken(refresh)), tokens))
		rec := doRequest(r, "POST", "/auth/refresh", `{"refresh_token":"`+refresh+`"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("rejects revoked token", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(newService(middleware.HashToken("something-else")), tokens))
		rec := doRequest(r, "POST", "/auth/refresh", `{"refresh_token":"`+refresh+`"}`)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "UNAUTHORIZED")
	})

	t.Run("rejects access token", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(newService(middleware.HashToken(access)), tokens))
		rec := doRequest(r, "POST", "/auth/refresh", `{"refresh_token":"`+access+`"}`)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("returns 400 without token", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(newService(""), tokens))
		rec := doRequest(r, "POST", "/auth/refresh", `{}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestAuthHandler_GetProfile(t *testing.T) {
	svc := &mockUserService{
		getUserByIDFn: func(id string) (*models.User, error) { return testAdmin(), nil },
	}
	r := setupAuthRouter(NewAuthHandler(svc, middleware.NewTokenManager("test-secret")))

	rec := doRequest(r, "GET", "/profile", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	user := parseJSON(t, rec)["user"].(map[string]interface{})
	if user["id"] != testAdminID || user["email"] != "admin@fund.example" {
		t.Errorf("unexpected profile %v", user)
	}
}
