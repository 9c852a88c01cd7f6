package middlewares

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"nutriportions/models"
	"nutriportions/utils"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

func init() { gin.SetMode(gin.TestMode) }

func newRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	r.Use(RequestLogger())
	authed := r.Group("/", AuthMiddleware("secret"))
	authed.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": c.GetUint("userID"), "role": c.GetString("role")})
	})
	authed.GET("/admin", AdminOnly(db), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func do(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	t.Parallel()
	r := newRouter(nil)

	if w := do(r, "/me", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}
	if w := do(r, "/me", "garbage"); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for garbage token, got %d", w.Code)
	}
	other, _ := utils.GenerateJWT("other-secret", 7, "a@example.com", models.RoleUser)
	if w := do(r, "/me", other); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for foreign signature, got %d", w.Code)
	}
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": 7, "exp": time.Now().Add(-time.Hour).Unix(),
	})
	s, _ := expired.SignedString([]byte("secret"))
	if w := do(r, "/me", s); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %d", w.Code)
	}

	good, err := utils.GenerateJWT("secret", 7, "a@example.com", models.RoleUser)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	w := do(r, "/me", good)
	if w.Code != http.StatusOK || w.Body.String() != `{"id":7,"role":"user"}` {
		t.Fatalf("unexpected response %d %s", w.Code, w.Body.String())
	}
	if w.Header().Get(requestIDHeader) == "" {
		t.Fatalf("expected a request id header")
	}
}

func TestAdminOnly(t *testing.T) {
	t.Parallel()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "mw.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Profile{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	user := models.Profile{Email: "u@example.com", Password: "x", Role: models.RoleUser}
	coach := models.Profile{Email: "c@example.com", Password: "x", Role: models.RoleAdmin}
	db.Create(&user)
	db.Create(&coach)
	r := newRouter(db)

	// the stored role wins over the role claim
	tok, _ := utils.GenerateJWT("secret", user.ID, user.Email, models.RoleAdmin)
	if w := do(r, "/admin", tok); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for a user, got %d", w.Code)
	}
	tok, _ = utils.GenerateJWT("secret", coach.ID, coach.Email, models.RoleAdmin)
	if w := do(r, "/admin", tok); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for an admin, got %d", w.Code)
	}
}
