package session

import (
	"context"
	"errors"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/syed-hamad/Retail-POS-sub001/pkg/config"
	"github.com/syed-hamad/Retail-POS-sub001/pkg/enums"
)

type fakeStore struct {
	data map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: map[string]string{}}
}

func (f *fakeStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.data[key] = value.(string)
	return nil
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	value, ok := f.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return value, nil
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

type fakeKeyer struct{}

func (fakeKeyer) SessionKey(accessID string) string { return "test:session:" + accessID }

func testManager() (*Manager, *fakeStore) {
	store := newFakeStore()
	return &Manager{store: store, keyer: fakeKeyer{}, ttl: time.Hour}, store
}

func TestCreateLookupRevoke(t *testing.T) {
	m, _ := testManager()
	ctx := context.Background()
	sess := Session{SellerID: "seller-1", UserID: "staff-1", Role: enums.StaffRoleManager}

	if err := m.Create(ctx, "access-1", sess); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := m.Lookup(ctx, "access-1")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got != sess {
		t.Fatalf("lookup: got %+v want %+v", got, sess)
	}

	if err := m.Revoke(ctx, "access-1"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := m.Lookup(ctx, "access-1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("lookup after revoke: %v", err)
	}
}

func TestLookupUnknownAccessID(t *testing.T) {
	m, _ := testManager()
	if _, err := m.Lookup(context.Background(), "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if _, err := m.Lookup(context.Background(), "  "); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound for blank id, got %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	m, _ := testManager()
	ctx := context.Background()
	valid := Session{SellerID: "seller-1", UserID: "staff-1", Role: enums.StaffRoleOwner}

	if err := m.Create(ctx, "", valid); err == nil {
		t.Fatal("expected error for blank access id")
	}
	if err := m.Create(ctx, "a", Session{UserID: "staff-1", Role: enums.StaffRoleOwner}); err == nil {
		t.Fatal("expected error for missing seller id")
	}
	if err := m.Create(ctx, "a", Session{SellerID: "seller-1", UserID: "staff-1", Role: "janitor"}); err == nil {
		t.Fatal("expected error for bad role")
	}
}

func TestNewManagerValidation(t *testing.T) {
	if _, err := NewManager(nil, config.JWTConfig{SessionTTL: time.Hour}); err == nil {
		t.Fatal("expected error for nil client")
	}
}

func TestSessionCan(t *testing.T) {
	manager := Session{Role: enums.StaffRoleManager}
	if !manager.Can(enums.PermissionOrdersDelete) {
		t.Fatal("manager should delete orders")
	}
	if manager.Can(enums.PermissionSettingsWrite) {
		t.Fatal("manager should not write settings")
	}
	kitchen := Session{Role: enums.StaffRoleKitchen}
	if kitchen.Can(enums.PermissionOrdersDiscount) {
		t.Fatal("kitchen should not discount")
	}
}
