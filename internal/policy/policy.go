// Package policy содержит чистые правила доступа: роль → операция и
// таблицу диспетчеризации дашборда по ролям. Никакого состояния — правила
// вычисляются заново на каждый запрос.
package policy

import "crm-backend/internal/models"

type Operation string

const (
	OpClientCreate   Operation = "client.create"
	OpClientArchive  Operation = "client.archive"
	OpClientAssign   Operation = "client.assign"
	OpStatusChange   Operation = "client.status_change"
	OpPaymentCreate  Operation = "payment.create"
	OpPaymentView    Operation = "payment.view"
	OpRenewalsView   Operation = "renewals.view"
	OpUsersManage    Operation = "users.manage"
	OpAuditView      Operation = "audit.view"
	OpUserDashboard  Operation = "dashboard.user"
	OpTaskDelete     Operation = "task.delete"
)

var allowed = map[Operation][]models.Role{
	OpClientCreate:  {models.RoleAdmin, models.RoleSalesManager},
	OpClientArchive: {models.RoleAdmin},
	OpClientAssign:  {models.RoleAdmin},
	OpStatusChange:  {models.RoleAdmin},
	OpPaymentCreate: {models.RoleAdmin, models.RoleSalesManager},
	OpPaymentView:   {models.RoleAdmin, models.RoleSalesManager},
	OpRenewalsView:  {models.RoleAdmin, models.RoleSpecialist},
	OpUsersManage:   {models.RoleAdmin},
	OpAuditView:     {models.RoleAdmin},
	OpUserDashboard: {models.RoleAdmin},
	OpTaskDelete:    {models.RoleAdmin},
}

// CanPerform сообщает, разрешена ли операция данной роли. Проверки
// принадлежности (свой/чужой клиент, свои платежи) выполняются отдельно.
func CanPerform(op Operation, role models.Role) bool {
	for _, r := range allowed[op] {
		if r == role {
			return true
		}
	}
	return false
}

// CanViewClient: специалист видит только назначенных на него клиентов,
// остальные роли — всех. Возвращает false, а не «не найдено»: существование
// клиента не скрывается.
func CanViewClient(role models.Role, actorID string, assignedToID *string) bool {
	if role != models.RoleSpecialist {
		return true
	}
	return assignedToID != nil && *assignedToID == actorID
}

// DashboardScope описывает выборку дашборда для роли: фильтр (с одним
// placeholder для id пользователя) и поле даты для окна месяца и сортировки.
type DashboardScope struct {
	Where     string
	DateField string
}

var dashboardScopes = map[models.Role]DashboardScope{
	models.RoleSpecialist: {
		Where:     "assigned_to_id = ? AND assignment_seen = true",
		DateField: "assigned_at",
	},
	models.RoleDesigner: {
		Where:     "designer_id = ? AND designer_assignment_seen = true",
		DateField: "designer_assigned_at",
	},
	models.RoleSalesManager: {
		Where:     "created_by_id = ?",
		DateField: "created_at",
	},
}

// DashboardScopeFor возвращает выборку дашборда для роли. Для ролей без
// персонального дашборда (ADMIN) второй результат false.
func DashboardScopeFor(role models.Role) (DashboardScope, bool) {
	s, ok := dashboardScopes[role]
	return s, ok
}
