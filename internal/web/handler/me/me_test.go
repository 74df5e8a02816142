package me

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
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

// setupApp wires the identity handler behind the bearer middleware and
// returns a token for a paramedic with one granted permission.
func setupApp(t *testing.T) (*fiber.App, string) {
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

	cfg := &config.Config{
		Auth: config.Auth{Guard: "api", TokenTTLHours: 24},
	}

	authService := coreauth.NewService(db, cfg.Auth)
	engine := authService.Engine()

	role, err := engine.EnsureRole("paramedic", "field paramedic")
	require.NoError(t, err)
	_, err = engine.EnsurePermission("view-patients", "")
	require.NoError(t, err)
	require.NoError(t, engine.SyncRolePermissions(role.ID, []string{"view-patients"}))

	user := models.User{
		Name:     "Medic",
		Email:    "medic@example.com",
		Password: models.HashPassword("secret-password"),
		Status:   models.UserStatusActive,
	}
	require.NoError(t, db.Create(&user).Error)
	require.NoError(t, engine.AssignRole(user.ID, role.ID))

	login, err := authService.Login("medic@example.com", "secret-password")
	require.NoError(t, err)

	app := fiber.New()
	app.Use(authmw.New(db, authService))

	require.NoError(t, Handler.Init(app, cfg, authService))

	return app, login.Token
}

func get(t *testing.T, app *fiber.App, path, bearer string) (*http.Response, map[string]interface{}) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if bearer != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+bearer)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body map[string]interface{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &body)
	}

	return resp, body
}

func TestGetProfile(t *testing.T) {
	app, tokenValue := setupApp(t)

	resp, body := get(t, app, "/me", tokenValue)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "medic@example.com", data["email"])

	roles, ok := data["roles"].([]interface{})
	require.True(t, ok)
	assert.Len(t, roles, 1)

	permissions, ok := data["permissions"].([]interface{})
	require.True(t, ok)
	assert.Len(t, permissions, 1)
}

func TestGetProfileUnauthenticated(t *testing.T) {
	app, _ := setupApp(t)

	resp, _ := get(t, app, "/me", "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestGetPermissions(t *testing.T) {
	app, tokenValue := setupApp(t)

	resp, body := get(t, app, "/me/permissions", tokenValue)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	data, ok := body["data"].([]interface{})
	require.True(t, ok)
	require.Len(t, data, 1)

	first, ok := data[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "view-patients", first["name"])
}
