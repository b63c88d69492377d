package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/platemate/backend/internal/models"
	"github.com/platemate/backend/internal/service"
	"github.com/platemate/backend/internal/testhelpers"
)

const testSecret = "api-test-secret"

type testEnv struct {
	db     *gorm.DB
	router *gin.Engine
	auth   *service.AuthService
	images *testhelpers.MemoryImageStore
}

// setupAPITest wires the full handler stack against an in-memory database
// and miniredis, without the rate limiter.
func setupAPITest(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupTestDatabase(t)
	redisClient := testhelpers.SetupTestRedis(t)
	images := testhelpers.NewMemoryImageStore()

	auth := service.NewAuthService(db, redisClient, testSecret)
	users := service.NewUserService(db)
	tags := service.NewTagService(db)
	ingredients := service.NewIngredientService(db)
	relations := service.NewRelationService(db)
	recipes := service.NewRecipeService(db, images)
	shopping := service.NewShoppingListService(db)

	router := gin.New()
	v1 := router.Group("/api/v1")
	NewAuthHandler(auth).RegisterRoutes(v1)
	NewUserHandler(users, relations, recipes, auth).RegisterRoutes(v1)
	NewTagHandler(tags).RegisterRoutes(v1)
	NewIngredientHandler(ingredients, auth).RegisterRoutes(v1)
	NewRecipeHandler(recipes, relations, shopping, auth, nil).RegisterRoutes(v1)

	return &testEnv{db: db, router: router, auth: auth, images: images}
}

func (e *testEnv) tokenFor(t *testing.T, user *models.User) string {
	t.Helper()

	token, err := e.auth.GenerateToken(user)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return token
}

// request performs a JSON request against the test router. An empty token
// leaves the request anonymous.
func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()

	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()

	if w.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, w.Code, w.Body.String())
	}
}
