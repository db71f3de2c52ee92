// Package dbtest opens isolated sqlite databases carrying the production
// schema, plus fixture helpers shared by repository and service tests.
package dbtest

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/adspacehub/adspace-backend/pkg/db"
	"github.com/adspacehub/adspace-backend/pkg/db/models"
	"github.com/adspacehub/adspace-backend/pkg/enums"
)

// Open returns a fresh in-memory database. The pool is pinned to a single
// connection so transactions and plain queries see the same data.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared&_foreign_keys=on", name, uuid.NewString()[:8])

	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, stmt := range schema {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("apply schema: %v", err)
		}
	}
	return conn
}

// OpenClient wraps Open in a db.Client for services that need WithTx.
func OpenClient(t *testing.T) (*db.Client, *gorm.DB) {
	t.Helper()
	conn := Open(t)
	return db.Wrap(conn), conn
}

// Fixtures creates catalog rows with sensible defaults.
type Fixtures struct {
	t  *testing.T
	db *gorm.DB
}

func NewFixtures(t *testing.T, conn *gorm.DB) *Fixtures {
	return &Fixtures{t: t, db: conn}
}

func (f *Fixtures) create(value any) {
	f.t.Helper()
	if err := f.db.Create(value).Error; err != nil {
		f.t.Fatalf("create %T: %v", value, err)
	}
}

func (f *Fixtures) Brand(name string) models.Brand {
	f.t.Helper()
	brand := models.Brand{Name: name}
	f.create(&brand)
	return brand
}

func (f *Fixtures) Store(brandID uuid.UUID, name string) models.Store {
	f.t.Helper()
	store := models.Store{BrandID: brandID, Name: name}
	f.create(&store)
	return store
}

// MediaItem creates a catalog item. A capacity of zero leaves the column NULL.
func (f *Fixtures) MediaItem(itemType string, capacity, cycleDays int) models.MediaItem {
	f.t.Helper()
	item := models.MediaItem{
		Type:              itemType,
		BasePrice:         decimal.NewFromInt(100),
		LeaseDurationDays: cycleDays,
	}
	if capacity > 0 {
		item.Capacity = &capacity
	}
	f.create(&item)
	return item
}

func (f *Fixtures) Space(storeID, itemID uuid.UUID) models.MediaSpace {
	f.t.Helper()
	space := models.MediaSpace{StoreID: storeID, MediaItemID: itemID, Status: enums.SpaceStatusAvailable}
	f.create(&space)
	return space
}

// SpaceWith builds the brand, store and item chain for a single space.
func (f *Fixtures) SpaceWith(capacity, cycleDays int) models.MediaSpace {
	f.t.Helper()
	brand := f.Brand("Brand " + uuid.NewString()[:6])
	store := f.Store(brand.ID, "Store "+uuid.NewString()[:6])
	item := f.MediaItem("Billboard", capacity, cycleDays)
	return f.Space(store.ID, item.ID)
}

func (f *Fixtures) User(role enums.UserRole) models.User {
	f.t.Helper()
	user := models.User{
		Name:  "User " + uuid.NewString()[:6],
		Email: uuid.NewString() + "@example.com",
		Role:  role,
	}
	f.create(&user)
	return user
}

func (f *Fixtures) Order(userID uuid.UUID) models.Order {
	f.t.Helper()
	order := models.Order{UserID: userID}
	f.create(&order)
	return order
}

// Lease inserts a lease row directly, bypassing availability checks.
func (f *Fixtures) Lease(spaceID, orderID uuid.UUID, start, end time.Time, status enums.LeaseStatus) models.Lease {
	f.t.Helper()
	lease := models.Lease{
		MediaSpaceID: spaceID,
		OrderID:      orderID,
		CustomerName: "Cliente",
		StartDate:    start,
		EndDate:      end,
		Amount:       decimal.NewFromInt(250),
		StatusID:     status,
	}
	f.create(&lease)
	return lease
}

// SetSpaceStatus overwrites the cached status, e.g. to simulate drift.
func (f *Fixtures) SetSpaceStatus(spaceID uuid.UUID, status enums.SpaceStatus) {
	f.t.Helper()
	if err := f.db.Model(&models.MediaSpace{}).Where("id = ?", spaceID).Update("status", status).Error; err != nil {
		f.t.Fatalf("set space status: %v", err)
	}
}
