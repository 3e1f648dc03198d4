// Package queue публикует доменные события CRM в брокер сообщений, чтобы
// внешние потребители (уведомления, аналитика) узнавали о назначениях,
// не опрашивая базу.
package queue

// ClientAssignedEvent публикуется после успешного (пере)назначения.
type ClientAssignedEvent struct {
	ClientID     string `json:"client_id"`
	ClientName   string `json:"client_name"`
	AssigneeID   string `json:"assignee_id"`
	AssigneeName string `json:"assignee_name"`
	AssigneeRole string `json:"assignee_role"`
	AssignedByID string `json:"assigned_by_id"`
	Reassigned   bool   `json:"reassigned"`
	AssignedAt   string `json:"assigned_at"`
}

// ClientAcknowledgedEvent публикуется, когда назначенный подтверждает работу.
type ClientAcknowledgedEvent struct {
	ClientID       string `json:"client_id"`
	UserID         string `json:"user_id"`
	Role           string `json:"role"`
	AcknowledgedAt string `json:"acknowledged_at"`
}
