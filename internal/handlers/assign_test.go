package handlers

import (
	"net/http"
	"testing"
	"time"

	"crm-backend/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
)

// строка клиента без назначенного специалиста
func unassignedClientRow(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(clientColumns).AddRow(
		"client-1", now, now,
		"Клиентов Клиент", "", "+79990001122", "", "", "",
		"", nil, "NEW", false,
		"admin-1",
		nil, nil, false,
		nil, nil, false,
	)
}

func assignedClientRow(now time.Time, specialistID string, seen bool, status string) *sqlmock.Rows {
	return sqlmock.NewRows(clientColumns).AddRow(
		"client-1", now, now,
		"Клиентов Клиент", "", "+79990001122", "", "", "",
		"", nil, status, false,
		"admin-1",
		specialistID, now, seen,
		nil, nil, false,
	)
}

func specialistRow(now time.Time, id string) *sqlmock.Rows {
	return sqlmock.NewRows(userColumns).AddRow(
		id, now, now, "spec1@crm.local", "x", "Петров Алексей", models.RoleSpecialist,
	)
}

func adminRow(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(userColumns).AddRow(
		"admin-1", now, now, "admin@crm.local", "x", "Иванов Петр Сергеевич", models.RoleAdmin,
	)
}

func expectAssignTx(mock sqlmock.Sqlmock, action string) {
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "clients"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "assignment_histories"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "audit_logs"`).
		WithArgs(
			sqlmock.AnyArg(), sqlmock.AnyArg(),
			action,
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
}

func TestAssignClientResetsAcknowledgement(t *testing.T) {
	mock := setupMockDB(t)
	admin := models.User{ID: "admin-1", Role: models.RoleAdmin}
	now := time.Now()

	mock.ExpectQuery(`SELECT \* FROM "clients"`).WillReturnRows(unassignedClientRow(now))
	mock.ExpectQuery(`SELECT \* FROM "users"`).WillReturnRows(specialistRow(now, "spec-1"))

	expectAssignTx(mock, models.ActionSpecialistAssigned)

	// перечитывание после транзакции
	mock.ExpectQuery(`SELECT \* FROM "clients"`).
		WillReturnRows(assignedClientRow(now, "spec-1", false, "ASSIGNED"))
	mock.ExpectQuery(`SELECT \* FROM "users"`).WillReturnRows(specialistRow(now, "spec-1"))
	mock.ExpectQuery(`SELECT \* FROM "users"`).WillReturnRows(adminRow(now))

	r := testRouter(admin, http.MethodPost, "/clients/:id/assign", AssignClient)
	w := doJSON(t, r, http.MethodPost, "/clients/client-1/assign", map[string]any{
		"specialistId": "spec-1",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("code = %d, want 200; body: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["assignmentSeen"] != false {
		t.Errorf("assignmentSeen = %v, want false", body["assignmentSeen"])
	}
	if body["status"] != "ASSIGNED" {
		t.Errorf("status = %v, want ASSIGNED", body["status"])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestAssignClientReassignmentAuditAction(t *testing.T) {
	mock := setupMockDB(t)
	admin := models.User{ID: "admin-1", Role: models.RoleAdmin}
	now := time.Now()

	// клиент уже назначен на spec-1, переназначаем на spec-2
	mock.ExpectQuery(`SELECT \* FROM "clients"`).
		WillReturnRows(assignedClientRow(now, "spec-1", true, "IN_WORK"))
	mock.ExpectQuery(`SELECT \* FROM "users"`).WillReturnRows(specialistRow(now, "spec-2"))

	expectAssignTx(mock, models.ActionSpecialistReassigned)

	mock.ExpectQuery(`SELECT \* FROM "clients"`).
		WillReturnRows(assignedClientRow(now, "spec-2", false, "ASSIGNED"))
	mock.ExpectQuery(`SELECT \* FROM "users"`).WillReturnRows(specialistRow(now, "spec-2"))
	mock.ExpectQuery(`SELECT \* FROM "users"`).WillReturnRows(adminRow(now))

	r := testRouter(admin, http.MethodPost, "/clients/:id/assign", AssignClient)
	w := doJSON(t, r, http.MethodPost, "/clients/client-1/assign", map[string]any{
		"specialistId": "spec-2",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("code = %d, want 200; body: %s", w.Code, w.Body.String())
	}
	if body := decodeBody(t, w); body["assignmentSeen"] != false {
		t.Errorf("assignmentSeen = %v, want false after reassignment", body["assignmentSeen"])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestAssignClientToNonSpecialist(t *testing.T) {
	mock := setupMockDB(t)
	admin := models.User{ID: "admin-1", Role: models.RoleAdmin}
	now := time.Now()

	mock.ExpectQuery(`SELECT \* FROM "clients"`).WillReturnRows(unassignedClientRow(now))
	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(
			"sales-1", now, now, "sales@crm.local", "x", "Сидорова Анна", models.RoleSalesManager,
		))

	r := testRouter(admin, http.MethodPost, "/clients/:id/assign", AssignClient)
	w := doJSON(t, r, http.MethodPost, "/clients/client-1/assign", map[string]any{
		"specialistId": "sales-1",
	})

	if w.Code == http.StatusNotFound {
		t.Fatal("non-specialist assignee must be 400, not 404")
	}
	if w.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400", w.Code)
	}
	if msg := decodeBody(t, w)["message"]; msg != "Указанный пользователь не является специалистом" {
		t.Errorf("message = %v", msg)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestAssignClientRequiresSpecialistID(t *testing.T) {
	setupMockDB(t)
	admin := models.User{ID: "admin-1", Role: models.RoleAdmin}

	r := testRouter(admin, http.MethodPost, "/clients/:id/assign", AssignClient)
	w := doJSON(t, r, http.MethodPost, "/clients/client-1/assign", map[string]any{})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400", w.Code)
	}
	if msg := decodeBody(t, w)["message"]; msg != "ID специалиста обязателен" {
		t.Errorf("message = %v", msg)
	}
}

func TestAcknowledgeSpecialist(t *testing.T) {
	mock := setupMockDB(t)
	spec := models.User{ID: "spec-1", Role: models.RoleSpecialist, FullName: "Петров Алексей"}
	now := time.Now()

	mock.ExpectQuery(`SELECT \* FROM "clients"`).
		WillReturnRows(assignedClientRow(now, spec.ID, false, "ASSIGNED"))

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "clients"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "audit_logs"`).
		WithArgs(
			sqlmock.AnyArg(), sqlmock.AnyArg(),
			models.ActionAssignmentAcknowledged,
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectQuery(`SELECT \* FROM "clients"`).
		WillReturnRows(assignedClientRow(now, spec.ID, true, "IN_WORK"))
	mock.ExpectQuery(`SELECT \* FROM "users"`).WillReturnRows(specialistRow(now, spec.ID))
	mock.ExpectQuery(`SELECT \* FROM "users"`).WillReturnRows(adminRow(now))

	r := testRouter(spec, http.MethodPost, "/clients/:id/acknowledge", Acknowledge)
	w := doJSON(t, r, http.MethodPost, "/clients/client-1/acknowledge", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("code = %d, want 200; body: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["assignmentSeen"] != true {
		t.Errorf("assignmentSeen = %v, want true", body["assignmentSeen"])
	}
	if body["status"] != "IN_WORK" {
		t.Errorf("status = %v, want IN_WORK", body["status"])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestAcknowledgeTwice(t *testing.T) {
	mock := setupMockDB(t)
	spec := models.User{ID: "spec-1", Role: models.RoleSpecialist}
	now := time.Now()

	mock.ExpectQuery(`SELECT \* FROM "clients"`).
		WillReturnRows(assignedClientRow(now, spec.ID, true, "IN_WORK"))

	r := testRouter(spec, http.MethodPost, "/clients/:id/acknowledge", Acknowledge)
	w := doJSON(t, r, http.MethodPost, "/clients/client-1/acknowledge", nil)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400; body: %s", w.Code, w.Body.String())
	}
	if msg := decodeBody(t, w)["message"]; msg != "Назначение уже подтверждено" {
		t.Errorf("message = %v", msg)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestAcknowledgeForeignClient(t *testing.T) {
	mock := setupMockDB(t)
	spec := models.User{ID: "spec-1", Role: models.RoleSpecialist}
	now := time.Now()

	mock.ExpectQuery(`SELECT \* FROM "clients"`).
		WillReturnRows(assignedClientRow(now, "spec-2", false, "ASSIGNED"))

	r := testRouter(spec, http.MethodPost, "/clients/:id/acknowledge", Acknowledge)
	w := doJSON(t, r, http.MethodPost, "/clients/client-1/acknowledge", nil)

	if w.Code != http.StatusForbidden {
		t.Fatalf("code = %d, want 403", w.Code)
	}
	if msg := decodeBody(t, w)["message"]; msg != "Вы не назначены на данного клиента" {
		t.Errorf("message = %v", msg)
	}
}

func TestAcknowledgeDesigner(t *testing.T) {
	mock := setupMockDB(t)
	designer := models.User{ID: "designer-1", Role: models.RoleDesigner, FullName: "Козлова Мария"}
	now := time.Now()

	designerClientRow := func(seen bool) *sqlmock.Rows {
		return sqlmock.NewRows(clientColumns).AddRow(
			"client-1", now, now,
			"Клиентов Клиент", "", "+79990001122", "", "", "",
			"", nil, "NEW", false,
			"admin-1",
			nil, nil, false,
			designer.ID, now, seen,
		)
	}

	mock.ExpectQuery(`SELECT \* FROM "clients"`).WillReturnRows(designerClientRow(false))

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "clients"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "audit_logs"`).
		WithArgs(
			sqlmock.AnyArg(), sqlmock.AnyArg(),
			models.ActionDesignerAcknowledged,
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectQuery(`SELECT \* FROM "clients"`).WillReturnRows(designerClientRow(true))
	mock.ExpectQuery(`SELECT \* FROM "users"`).WillReturnRows(adminRow(now))
	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(
			designer.ID, now, now, "designer@crm.local", "x", designer.FullName, designer.Role,
		))

	r := testRouter(designer, http.MethodPost, "/clients/:id/acknowledge", Acknowledge)
	w := doJSON(t, r, http.MethodPost, "/clients/client-1/acknowledge", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("code = %d, want 200; body: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["designerAssignmentSeen"] != true {
		t.Errorf("designerAssignmentSeen = %v, want true", body["designerAssignmentSeen"])
	}
	// статус дизайнерская ветка не трогает
	if body["status"] != "NEW" {
		t.Errorf("status = %v, want NEW", body["status"])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
