package enums

import "testing"

func TestParseOrderStatus(t *testing.T) {
	status, err := ParseOrderStatus(" kitchen ")
	if err != nil {
		t.Fatalf("ParseOrderStatus: %v", err)
	}
	if status != OrderStatusKitchen {
		t.Fatalf("expected KITCHEN, got %s", status)
	}
	if _, err := ParseOrderStatus("frying"); err == nil {
		t.Fatalf("expected error for unknown status")
	}
}

func TestOrderStatusTerminal(t *testing.T) {
	for _, status := range []OrderStatus{OrderStatusCompleted, OrderStatusCancelled, OrderStatusRejected} {
		if !status.IsTerminal() {
			t.Fatalf("%s should be terminal", status)
		}
	}
	for _, status := range []OrderStatus{OrderStatusPlaced, OrderStatusKitchen, OrderStatusReady, OrderStatusAccepted} {
		if status.IsTerminal() {
			t.Fatalf("%s should not be terminal", status)
		}
	}
}

func TestParseChargeType(t *testing.T) {
	if ct, err := ParseChargeType("Percentage"); err != nil || ct != ChargeTypePercentage {
		t.Fatalf("expected percentage, got %v %v", ct, err)
	}
	if _, err := ParseChargeType("half"); err == nil {
		t.Fatalf("expected error for unknown charge type")
	}
}

func TestParsePaymentMode(t *testing.T) {
	if pm, err := ParsePaymentMode("UPI"); err != nil || pm != PaymentModeUPI {
		t.Fatalf("expected upi, got %v %v", pm, err)
	}
	if _, err := ParsePaymentMode("barter"); err == nil {
		t.Fatalf("expected error for unknown payment mode")
	}
}

func TestRoleGrants(t *testing.T) {
	if !StaffRoleOwner.Grants(PermissionOrdersDelete) {
		t.Fatalf("owner must hold delete permission")
	}
	if StaffRoleCashier.Grants(PermissionOrdersDelete) {
		t.Fatalf("cashier must not hold delete permission")
	}
	if StaffRoleKitchen.Grants(PermissionOrdersDiscount) {
		t.Fatalf("kitchen must not hold discount permission")
	}
	if !StaffRoleManager.Grants(PermissionCatalogWrite) {
		t.Fatalf("manager must hold catalog write permission")
	}
}

func TestParseStaffRole(t *testing.T) {
	if role, err := ParseStaffRole("Manager"); err != nil || role != StaffRoleManager {
		t.Fatalf("expected manager, got %v %v", role, err)
	}
	if _, err := ParseStaffRole("janitor"); err == nil {
		t.Fatalf("expected error for unknown role")
	}
}
