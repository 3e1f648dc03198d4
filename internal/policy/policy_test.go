package policy

import (
	"testing"

	"crm-backend/internal/models"
)

func TestCanPerform(t *testing.T) {
	cases := []struct {
		name string
		op   Operation
		role models.Role
		want bool
	}{
		{"admin creates payment", OpPaymentCreate, models.RoleAdmin, true},
		{"sales creates payment", OpPaymentCreate, models.RoleSalesManager, true},
		{"specialist creates payment", OpPaymentCreate, models.RoleSpecialist, false},
		{"designer creates payment", OpPaymentCreate, models.RoleDesigner, false},

		{"admin views payments", OpPaymentView, models.RoleAdmin, true},
		{"sales views payments", OpPaymentView, models.RoleSalesManager, true},
		{"specialist views payments", OpPaymentView, models.RoleSpecialist, false},
		{"designer views payments", OpPaymentView, models.RoleDesigner, false},

		{"admin views renewals", OpRenewalsView, models.RoleAdmin, true},
		{"specialist views renewals", OpRenewalsView, models.RoleSpecialist, true},
		{"sales views renewals", OpRenewalsView, models.RoleSalesManager, false},
		{"designer views renewals", OpRenewalsView, models.RoleDesigner, false},

		{"admin changes status", OpStatusChange, models.RoleAdmin, true},
		{"sales changes status", OpStatusChange, models.RoleSalesManager, false},
		{"specialist changes status", OpStatusChange, models.RoleSpecialist, false},

		{"admin assigns", OpClientAssign, models.RoleAdmin, true},
		{"specialist assigns", OpClientAssign, models.RoleSpecialist, false},

		{"admin archives", OpClientArchive, models.RoleAdmin, true},
		{"sales archives", OpClientArchive, models.RoleSalesManager, false},

		{"sales creates client", OpClientCreate, models.RoleSalesManager, true},
		{"designer creates client", OpClientCreate, models.RoleDesigner, false},

		{"unknown operation", Operation("nope"), models.RoleAdmin, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanPerform(tc.op, tc.role); got != tc.want {
				t.Fatalf("CanPerform(%s, %s) = %v, want %v", tc.op, tc.role, got, tc.want)
			}
		})
	}
}

func TestCanViewClient(t *testing.T) {
	me := "u1"
	other := "u2"

	if !CanViewClient(models.RoleAdmin, me, nil) {
		t.Fatal("admin must see unassigned client")
	}
	if !CanViewClient(models.RoleSalesManager, me, &other) {
		t.Fatal("sales manager must see any client")
	}
	if !CanViewClient(models.RoleSpecialist, me, &me) {
		t.Fatal("specialist must see own client")
	}
	if CanViewClient(models.RoleSpecialist, me, &other) {
		t.Fatal("specialist must not see foreign client")
	}
	if CanViewClient(models.RoleSpecialist, me, nil) {
		t.Fatal("specialist must not see unassigned client")
	}
}

func TestDashboardScopeFor(t *testing.T) {
	cases := []struct {
		role      models.Role
		dateField string
		ok        bool
	}{
		{models.RoleSpecialist, "assigned_at", true},
		{models.RoleDesigner, "designer_assigned_at", true},
		{models.RoleSalesManager, "created_at", true},
		{models.RoleAdmin, "", false},
	}

	for _, tc := range cases {
		scope, ok := DashboardScopeFor(tc.role)
		if ok != tc.ok {
			t.Fatalf("DashboardScopeFor(%s): ok = %v, want %v", tc.role, ok, tc.ok)
		}
		if ok && scope.DateField != tc.dateField {
			t.Fatalf("DashboardScopeFor(%s): date field %q, want %q", tc.role, scope.DateField, tc.dateField)
		}
	}
}
