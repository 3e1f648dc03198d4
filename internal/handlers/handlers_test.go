package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"crm-backend/internal/database"
	"crm-backend/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupMockDB подменяет database.DB на gorm поверх sqlmock.
func setupMockDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()

	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}

	gdb, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}

	prev := database.DB
	database.DB = gdb
	t.Cleanup(func() {
		database.DB = prev
		_ = sqlDB.Close()
	})

	return mock
}

// testRouter — маршрут с подложенным в контекст пользователем вместо
// полной цепочки sessions/JWT.
func testRouter(user models.User, method, path string, h gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Handle(method, path, func(c *gin.Context) {
		c.Set("CurrentUser", user)
	}, h)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, target, rd)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("response is not valid JSON: %v\nbody: %s", err, w.Body.String())
	}
	return out
}

var clientColumns = []string{
	"id", "created_at", "updated_at",
	"full_name", "company_name", "phone", "email", "source", "notes",
	"group_name", "services", "status", "archived",
	"created_by_id",
	"assigned_to_id", "assigned_at", "assignment_seen",
	"designer_id", "designer_assigned_at", "designer_assignment_seen",
}

var userColumns = []string{
	"id", "created_at", "updated_at",
	"email", "password_hash", "full_name", "role",
}
