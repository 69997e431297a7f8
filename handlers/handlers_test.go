package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cctv-surveillance-reports/be/config"
	"cctv-surveillance-reports/be/repository"
	"cctv-surveillance-reports/be/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type envelope struct {
	Success bool            `json:"success"`
	Count   int             `json:"count"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
	Token   string          `json:"token"`
	User    *struct {
		Username string `json:"username"`
		Role     string `json:"role"`
	} `json:"user"`
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) (*gin.Engine, *services.AuthService) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))
	store := repository.NewGormStore(db)
	t.Cleanup(func() { store.Close(context.Background()) })

	auth, err := services.NewAuthService(store.Users, config.JWTConfig{Secret: "secret", Expiry: "1h"})
	require.NoError(t, err)

	log := zap.NewNop()
	hub := services.NewEventHub(log)
	activities := NewActivityHandler(store.Activities, hub, log)
	statuses := NewStatusHandler(store.Statuses, hub, log)
	users := NewUserHandler(auth, log)

	r := gin.New()
	api := r.Group("/api")
	api.GET("/reports", activities.List)
	api.GET("/reports/location/:location", activities.ListByLocation)
	api.GET("/reports/:id", activities.Get)
	api.POST("/reports", activities.Create)
	api.PUT("/reports/:id", activities.Update)
	api.DELETE("/reports/:id", activities.Delete)
	api.GET("/daily-surveillance", statuses.List)
	api.POST("/daily-surveillance", statuses.Create)
	api.DELETE("/daily-surveillance/:id", statuses.Delete)
	api.POST("/users/login", users.Login)
	api.POST("/users/register", users.Register)
	api.GET("/users", users.List)
	api.POST("/users/change-password", users.ChangePassword)
	api.POST("/users/admin-change-password", users.AdminChangePassword)
	r.NoRoute(NotFound)
	return r, auth
}

func do(t *testing.T, r http.Handler, method, path string, body interface{}) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func activityBody(location string) gin.H {
	return gin.H{
		"datetime":  "2024-01-10T08:30",
		"location":  location,
		"findings":  "Gate left open after hours",
		"intensity": "High",
		"images":    []string{"data:image/jpeg;base64,AAA"},
	}
}

func createdID(t *testing.T, env envelope) string {
	t.Helper()
	var rec struct {
		ID string `json:"_id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &rec))
	require.NotEmpty(t, rec.ID)
	return rec.ID
}

func TestCreateAndListReports(t *testing.T) {
	r, _ := newTestRouter(t)

	code, env := do(t, r, http.MethodPost, "/api/reports", activityBody("Daska"))
	require.Equal(t, http.StatusCreated, code)
	assert.True(t, env.Success)
	assert.Equal(t, "Report created successfully", env.Message)
	first := createdID(t, env)

	code, env = do(t, r, http.MethodPost, "/api/reports", activityBody("Narowal"))
	require.Equal(t, http.StatusCreated, code)
	second := createdID(t, env)

	code, env = do(t, r, http.MethodGet, "/api/reports", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2, env.Count)
	var list []struct {
		ID        string   `json:"_id"`
		Images    []string `json:"images"`
		CreatedAt string   `json:"createdAt"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 2)
	assert.Equal(t, second, list[0].ID)
	assert.Equal(t, first, list[1].ID)
	assert.Equal(t, []string{"data:image/jpeg;base64,AAA"}, list[1].Images)
	assert.NotEmpty(t, list[0].CreatedAt)

	code, env = do(t, r, http.MethodGet, "/api/reports/location/Daska", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, env.Count)

	code, env = do(t, r, http.MethodGet, "/api/reports/"+first, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, first, createdID(t, env))
}

func TestCreateReportValidation(t *testing.T) {
	r, _ := newTestRouter(t)

	body := activityBody("Daska")
	delete(body, "findings")
	code, env := do(t, r, http.MethodPost, "/api/reports", body)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, env.Success)
	assert.Equal(t, "Please provide datetime, location, findings, and intensity", env.Error)

	body = activityBody("Atlantis")
	body["intensity"] = "Extreme"
	code, env = do(t, r, http.MethodPost, "/api/reports", body)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "`Atlantis` is not a valid enum value for path `location`., "+
		"`Extreme` is not a valid enum value for path `intensity`.", env.Error)

	_, env = do(t, r, http.MethodGet, "/api/reports", nil)
	assert.Equal(t, 0, env.Count)
}

func TestUpdateReport(t *testing.T) {
	r, _ := newTestRouter(t)

	_, env := do(t, r, http.MethodPost, "/api/reports", activityBody("Daska"))
	id := createdID(t, env)

	body := activityBody("Sambrial")
	body["intensity"] = "Low"
	code, env := do(t, r, http.MethodPut, "/api/reports/"+id, body)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Report updated successfully", env.Message)

	code, env = do(t, r, http.MethodPut, "/api/reports/"+uuid.NewString(), body)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Report not found", env.Error)

	body["location"] = "Atlantis"
	code, env = do(t, r, http.MethodPut, "/api/reports/"+id, body)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "`Atlantis` is not a valid enum value for path `location`.", env.Error)

	// Updates list the missing fields instead of the create-time summary.
	delete(body, "findings")
	body["location"] = "Daska"
	code, env = do(t, r, http.MethodPut, "/api/reports/"+id, body)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Path `findings` is required.", env.Error)
}

func TestDeleteTwiceReturnsNotFound(t *testing.T) {
	r, _ := newTestRouter(t)

	_, env := do(t, r, http.MethodPost, "/api/reports", activityBody("Daska"))
	id := createdID(t, env)

	code, env := do(t, r, http.MethodDelete, "/api/reports/"+id, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Report deleted successfully", env.Message)

	code, env = do(t, r, http.MethodDelete, "/api/reports/"+id, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Report not found", env.Error)

	code, _ = do(t, r, http.MethodGet, "/api/reports/"+id, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestStatusEndpoints(t *testing.T) {
	r, _ := newTestRouter(t)

	status := gin.H{
		"date":              "2024-01-15",
		"location":          "Khanewal",
		"openingTime":       "09:00",
		"closingTime":       "18:00",
		"status":            "Open",
		"totalCameras":      10,
		"workingCameras":    8,
		"nonWorkingCameras": 2,
		"totalDaysRecorded": 30,
	}
	code, env := do(t, r, http.MethodPost, "/api/daily-surveillance", status)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "Status created successfully", env.Message)
	id := createdID(t, env)

	delete(status, "totalCameras")
	code, env = do(t, r, http.MethodPost, "/api/daily-surveillance", status)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Please provide all required fields", env.Error)

	status["totalCameras"] = -1
	code, env = do(t, r, http.MethodPost, "/api/daily-surveillance", status)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Path `totalCameras` (-1) is less than minimum allowed value (0).", env.Error)

	status["totalCameras"] = "many"
	code, env = do(t, r, http.MethodPost, "/api/daily-surveillance", status)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, `Cast to Number failed for value "many" at path "totalCameras"`, env.Error)

	code, env = do(t, r, http.MethodGet, "/api/daily-surveillance", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, env.Count)

	code, _ = do(t, r, http.MethodDelete, "/api/daily-surveillance/"+id, nil)
	assert.Equal(t, http.StatusOK, code)
	code, env = do(t, r, http.MethodDelete, "/api/daily-surveillance/"+id, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Status not found", env.Error)
}

func TestStatusCountsAcceptIntegerStrings(t *testing.T) {
	r, _ := newTestRouter(t)

	code, env := do(t, r, http.MethodPost, "/api/daily-surveillance", gin.H{
		"date":              "2024-01-15",
		"location":          "Khanewal",
		"openingTime":       "09:00",
		"closingTime":       "18:00",
		"status":            "Open",
		"totalCameras":      "10",
		"workingCameras":    "8",
		"nonWorkingCameras": "2",
		"totalDaysRecorded": "0",
	})
	require.Equal(t, http.StatusCreated, code, env.Error)

	var created struct {
		TotalCameras      int `json:"totalCameras"`
		WorkingCameras    int `json:"workingCameras"`
		NonWorkingCameras int `json:"nonWorkingCameras"`
		TotalDaysRecorded int `json:"totalDaysRecorded"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, 10, created.TotalCameras)
	assert.Equal(t, 8, created.WorkingCameras)
	assert.Equal(t, 2, created.NonWorkingCameras)
	assert.Equal(t, 0, created.TotalDaysRecorded)
}

func TestLoginWrongPasswordThenCorrect(t *testing.T) {
	r, auth := newTestRouter(t)
	_, err := auth.Register(context.Background(), "saliha", "admin1234", "admin")
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		code, env := do(t, r, http.MethodPost, "/api/users/login", gin.H{"username": "saliha", "password": "wrong"})
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "Invalid username or password", env.Error)
	}

	code, env := do(t, r, http.MethodPost, "/api/users/login", gin.H{"username": "ghost", "password": "wrong"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid username or password", env.Error)

	code, env = do(t, r, http.MethodPost, "/api/users/login", gin.H{"username": "saliha", "password": "admin1234"})
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, env.User)
	assert.Equal(t, "saliha", env.User.Username)
	assert.Equal(t, "admin", env.User.Role)
	assert.NotEmpty(t, env.Token)
}

func TestUserManagement(t *testing.T) {
	r, _ := newTestRouter(t)

	code, env := do(t, r, http.MethodPost, "/api/users/register", gin.H{"username": "ahmed", "password": "pw"})
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "user", env.User.Role)

	code, env = do(t, r, http.MethodPost, "/api/users/register", gin.H{"username": "ahmed", "password": "pw"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Username already exists", env.Error)

	code, env = do(t, r, http.MethodPost, "/api/users/change-password",
		gin.H{"username": "ahmed", "oldPassword": "bad", "newPassword": "next"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Old password is incorrect", env.Error)

	code, _ = do(t, r, http.MethodPost, "/api/users/change-password",
		gin.H{"username": "ahmed", "oldPassword": "pw", "newPassword": "next"})
	assert.Equal(t, http.StatusOK, code)

	code, env = do(t, r, http.MethodPost, "/api/users/admin-change-password",
		gin.H{"username": "ghost", "newPassword": "x"})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "User not found", env.Error)

	code, _ = do(t, r, http.MethodPost, "/api/users/admin-change-password",
		gin.H{"username": "ahmed", "newPassword": "reset"})
	assert.Equal(t, http.StatusOK, code)

	code, _ = do(t, r, http.MethodPost, "/api/users/login", gin.H{"username": "ahmed", "password": "reset"})
	assert.Equal(t, http.StatusOK, code)
}

func TestOverlongPasswordsAreBadRequests(t *testing.T) {
	r, _ := newTestRouter(t)
	long := strings.Repeat("p", 73)

	code, env := do(t, r, http.MethodPost, "/api/users/register", gin.H{"username": "ahmed", "password": long})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Password must be at most 72 bytes", env.Error)

	code, _ = do(t, r, http.MethodPost, "/api/users/register", gin.H{"username": "ahmed", "password": "pw"})
	require.Equal(t, http.StatusCreated, code)

	code, env = do(t, r, http.MethodPost, "/api/users/change-password",
		gin.H{"username": "ahmed", "oldPassword": "pw", "newPassword": long})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Password must be at most 72 bytes", env.Error)

	code, env = do(t, r, http.MethodPost, "/api/users/admin-change-password",
		gin.H{"username": "ahmed", "newPassword": long})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Password must be at most 72 bytes", env.Error)
}

func TestUnknownRoute(t *testing.T) {
	r, _ := newTestRouter(t)
	code, env := do(t, r, http.MethodGet, "/api/cameras", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Route not found", env.Error)
}
