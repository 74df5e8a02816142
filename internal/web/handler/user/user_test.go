package user

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	coreauth "github.com/ambulancia-platform/ms-auth/internal/auth"
	"github.com/ambulancia-platform/ms-auth/internal/config"
	"github.com/ambulancia-platform/ms-auth/internal/db/models"
	authmw "github.com/ambulancia-platform/ms-auth/internal/web/middleware/auth"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Permission{},
		&models.RoleAssignment{},
		&models.RolePermission{},
		&models.AccessToken{},
	)
	require.NoError(t, err, "failed to migrate test database")

	return db
}

// setupApp wires the handler behind the bearer middleware and returns an
// admin token holding every user management permission.
func setupApp(t *testing.T) (*fiber.App, *coreauth.Service, *gorm.DB, string) {
	t.Helper()

	db := setupTestDB(t)

	cfg := &config.Config{
		Auth: config.Auth{Guard: "api", TokenTTLHours: 24},
	}

	authService := coreauth.NewService(db, cfg.Auth)
	engine := authService.Engine()

	adminRole, err := engine.EnsureRole("admin", "")
	require.NoError(t, err)

	grants := []string{
		PermViewUsers, PermViewUser, PermCreateUser,
		PermEditUser, PermDeleteUser, PermManageRoles,
	}
	for _, grant := range grants {
		_, err := engine.EnsurePermission(grant, "")
		require.NoError(t, err)
	}
	require.NoError(t, engine.SyncRolePermissions(adminRole.ID, grants))

	admin := models.User{
		Name:     "Admin",
		Email:    "admin@example.com",
		Password: models.HashPassword("secret-password"),
		Status:   models.UserStatusActive,
	}
	require.NoError(t, db.Create(&admin).Error)
	require.NoError(t, engine.AssignRole(admin.ID, adminRole.ID))

	login, err := authService.Login("admin@example.com", "secret-password")
	require.NoError(t, err)

	app := fiber.New()
	app.Use(authmw.New(db, authService))

	require.NoError(t, Handler.Init(app, cfg, authService))

	return app, authService, db, login.Token
}

func do(t *testing.T, app *fiber.App, method, path, body, bearer string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	if bearer != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+bearer)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()

	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))

	return body
}

func TestCreateAndGetUser(t *testing.T) {
	app, _, _, adminToken := setupApp(t)

	resp := do(t, app, http.MethodPost, "/users",
		`{"name":"New Medic","email":"medic@example.com","password":"secret-password"}`,
		adminToken)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok)

	id := uint64(data["id"].(float64))

	resp = do(t, app, http.MethodGet, fmt.Sprintf("/users/%d", id), "", adminToken)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body = decodeBody(t, resp)
	data, ok = body["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "medic@example.com", data["email"])
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	app, _, _, adminToken := setupApp(t)

	resp := do(t, app, http.MethodPost, "/users",
		`{"name":"Dup","email":"admin@example.com","password":"secret-password"}`,
		adminToken)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func TestRoutesRequirePermission(t *testing.T) {
	app, authService, db, _ := setupApp(t)

	// a user without any role is authenticated but lacks every gate
	nobody := models.User{
		Name:     "Nobody",
		Email:    "nobody@example.com",
		Password: models.HashPassword("secret-password"),
		Status:   models.UserStatusActive,
	}
	require.NoError(t, db.Create(&nobody).Error)

	login, err := authService.Login("nobody@example.com", "secret-password")
	require.NoError(t, err)

	resp := do(t, app, http.MethodGet, "/users", "", login.Token)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = do(t, app, http.MethodGet, "/users", "", "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestListUsersPaginated(t *testing.T) {
	app, _, db, adminToken := setupApp(t)

	for i := 0; i < 3; i++ {
		user := models.User{
			Name:   fmt.Sprintf("User %d", i),
			Email:  fmt.Sprintf("user%d@example.com", i),
			Status: models.UserStatusActive,
		}
		require.NoError(t, db.Create(&user).Error)
	}

	resp := do(t, app, http.MethodGet, "/users?page=1&perPage=2", "", adminToken)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)

	data, ok := body["data"].([]interface{})
	require.True(t, ok)
	assert.Len(t, data, 2)

	pagination, ok := body["pagination"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(4), pagination["total"]) // admin + three created
	assert.Equal(t, float64(2), pagination["lastPage"])
}

func TestUpdateUser(t *testing.T) {
	app, _, db, adminToken := setupApp(t)

	user := models.User{
		Name:   "Old Name",
		Email:  "medic@example.com",
		Status: models.UserStatusActive,
	}
	require.NoError(t, db.Create(&user).Error)

	resp := do(t, app, http.MethodPut, fmt.Sprintf("/users/%d", user.ID),
		`{"name":"New Name","status":"inactive"}`, adminToken)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.Equal(t, "New Name", reloaded.Name)
	assert.False(t, reloaded.IsActive())
}

func TestDeleteUser(t *testing.T) {
	app, _, db, adminToken := setupApp(t)

	user := models.User{
		Name:   "Target",
		Email:  "target@example.com",
		Status: models.UserStatusActive,
	}
	require.NoError(t, db.Create(&user).Error)

	resp := do(t, app, http.MethodDelete, fmt.Sprintf("/users/%d", user.ID), "", adminToken)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).Count(&count).Error)
	assert.Zero(t, count)

	// deleting a missing user is a not-found
	resp = do(t, app, http.MethodDelete, fmt.Sprintf("/users/%d", user.ID), "", adminToken)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestDeleteSelfRejected(t *testing.T) {
	app, _, db, adminToken := setupApp(t)

	var admin models.User
	require.NoError(t, db.Where("email = ?", "admin@example.com").First(&admin).Error)

	resp := do(t, app, http.MethodDelete, fmt.Sprintf("/users/%d", admin.ID), "", adminToken)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestAssignAndRemoveRole(t *testing.T) {
	app, authService, db, adminToken := setupApp(t)

	role, err := authService.Engine().EnsureRole("paramedic", "")
	require.NoError(t, err)

	user := models.User{
		Name:   "Medic",
		Email:  "medic@example.com",
		Status: models.UserStatusActive,
	}
	require.NoError(t, db.Create(&user).Error)

	resp := do(t, app, http.MethodPost,
		fmt.Sprintf("/users/%d/roles/%d", user.ID, role.ID), "", adminToken)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok)
	roles, ok := data["roles"].([]interface{})
	require.True(t, ok)
	assert.Len(t, roles, 1)

	resp = do(t, app, http.MethodDelete,
		fmt.Sprintf("/users/%d/roles/%d", user.ID, role.ID), "", adminToken)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// unknown role id is a not-found
	resp = do(t, app, http.MethodPost,
		fmt.Sprintf("/users/%d/roles/999", user.ID), "", adminToken)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
