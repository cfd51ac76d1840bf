package orders

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/syed-hamad/Retail-POS-sub001/pkg/auth/session"
	"github.com/syed-hamad/Retail-POS-sub001/pkg/docstore"
	"github.com/syed-hamad/Retail-POS-sub001/pkg/enums"
	"github.com/syed-hamad/Retail-POS-sub001/pkg/logger"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	store, err := docstore.New(db, docstore.NewMemNotifier(), CollectionSpec())
	require.NoError(t, err)
	return NewRepository(store)
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "orders-test", Output: io.Discard})
}

func ownerSession() session.Session {
	return session.Session{SellerID: "seller-1", UserID: "staff-owner", Role: enums.StaffRoleOwner}
}

func kitchenSession() session.Session {
	return session.Session{SellerID: "seller-1", UserID: "staff-kitchen", Role: enums.StaffRoleKitchen}
}

func activeOrder(sellerID string, items ...Item) Order {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	history := []StatusEntry{
		{Label: enums.OrderStatusPlaced, At: now},
		{Label: enums.OrderStatusKitchen, At: now},
	}
	return Order{
		SellerID:      sellerID,
		Items:         items,
		Status:        history[1],
		StatusHistory: history,
		PlacedAt:      now,
	}
}

func seedOrder(t *testing.T, repo *Repository, order Order) string {
	t.Helper()
	id, err := repo.Create(context.Background(), order)
	require.NoError(t, err)
	return id
}
