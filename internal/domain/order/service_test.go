// internal/domain/order/service_test.go
package order

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sokohub/sokohub-backend/internal/domain/cart"
	"github.com/sokohub/sokohub-backend/internal/domain/product"
	"github.com/sokohub/sokohub-backend/internal/domain/user"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&user.Address{},
		&product.Product{},
		&cart.Cart{},
		&cart.CartItem{},
		&Order{},
		&OrderItem{},
	)
	require.NoError(t, err)

	return db
}

func seedCart(t *testing.T, db *gorm.DB, userID uint, lines map[*product.Product]int) *cart.Cart {
	t.Helper()

	c := &cart.Cart{UserID: userID}
	require.NoError(t, db.Create(c).Error)

	for p, qty := range lines {
		require.NoError(t, db.Create(p).Error)
		item := &cart.CartItem{CartID: c.ID, ProductID: p.ID, Quantity: qty}
		require.NoError(t, db.Create(item).Error)
	}
	return c
}

func TestCreateFromCart_ComputesTotalFromSnapshots(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db)

	mug := &product.Product{Name: "Ceramic Mug", Slug: "ceramic-mug", Price: 500, Stock: 10, IsActive: true}
	candle := &product.Product{Name: "Scented Candle", Slug: "scented-candle", Price: 1200, Stock: 10, IsActive: true}
	c := seedCart(t, db, 1, map[*product.Product]int{mug: 2, candle: 1})

	o, err := service.CreateFromCart(1, &CreateFromCartRequest{CartID: c.ID})
	require.NoError(t, err)

	assert.Equal(t, int64(2200), o.TotalAmount)
	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, PaymentStatusPending, o.PaymentStatus)
	assert.Len(t, o.Items, 2)

	for _, item := range o.Items {
		switch item.ProductID {
		case mug.ID:
			assert.Equal(t, int64(500), item.UnitPrice)
			assert.Equal(t, 2, item.Quantity)
			assert.Equal(t, int64(1000), item.LineTotal)
		case candle.ID:
			assert.Equal(t, int64(1200), item.UnitPrice)
			assert.Equal(t, 1, item.Quantity)
			assert.Equal(t, int64(1200), item.LineTotal)
		default:
			t.Fatalf("unexpected product %d in order", item.ProductID)
		}
	}
}

func TestCreateFromCart_DeletesCart(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db)

	p := &product.Product{Name: "Tote Bag", Slug: "tote-bag", Price: 850, Stock: 5, IsActive: true}
	c := seedCart(t, db, 1, map[*product.Product]int{p: 1})

	_, err := service.CreateFromCart(1, &CreateFromCartRequest{CartID: c.ID})
	require.NoError(t, err)

	var cartCount, itemCount int64
	db.Model(&cart.Cart{}).Where("id = ?", c.ID).Count(&cartCount)
	db.Model(&cart.CartItem{}).Where("cart_id = ?", c.ID).Count(&itemCount)
	assert.Zero(t, cartCount)
	assert.Zero(t, itemCount)
}

func TestCreateFromCart_EmptyCart(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db)

	c := seedCart(t, db, 1, nil)

	_, err := service.CreateFromCart(1, &CreateFromCartRequest{CartID: c.ID})
	assert.ErrorIs(t, err, ErrCartEmpty)

	var orderCount int64
	db.Model(&Order{}).Count(&orderCount)
	assert.Zero(t, orderCount)

	// The empty cart survives the failed conversion
	var cartCount int64
	db.Model(&cart.Cart{}).Where("id = ?", c.ID).Count(&cartCount)
	assert.Equal(t, int64(1), cartCount)
}

func TestCreateFromCart_CartNotFound(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db)

	_, err := service.CreateFromCart(1, &CreateFromCartRequest{CartID: 999})
	assert.ErrorIs(t, err, cart.ErrCartNotFound)
}

func TestCreateFromCart_OwnershipEnforced(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db)

	p := &product.Product{Name: "Mug", Slug: "mug", Price: 500, Stock: 5, IsActive: true}
	c := seedCart(t, db, 1, map[*product.Product]int{p: 1})

	_, err := service.CreateFromCart(2, &CreateFromCartRequest{CartID: c.ID})
	assert.ErrorIs(t, err, cart.ErrNotCartOwner)

	// Nothing materialized and the cart is intact
	var orderCount, itemCount int64
	db.Model(&Order{}).Count(&orderCount)
	db.Model(&cart.CartItem{}).Where("cart_id = ?", c.ID).Count(&itemCount)
	assert.Zero(t, orderCount)
	assert.Equal(t, int64(1), itemCount)
}

func TestCreateFromCart_AddressChecks(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db)

	ownAddr := &user.Address{UserID: 1, Line1: "Moi Avenue", City: "Nairobi"}
	foreignAddr := &user.Address{UserID: 2, Line1: "Kenyatta Road", City: "Nakuru"}
	require.NoError(t, db.Create(ownAddr).Error)
	require.NoError(t, db.Create(foreignAddr).Error)

	t.Run("another user's address is rejected", func(t *testing.T) {
		p := &product.Product{Name: "Mug A", Slug: "mug-a", Price: 500, Stock: 5, IsActive: true}
		c := seedCart(t, db, 1, map[*product.Product]int{p: 1})

		_, err := service.CreateFromCart(1, &CreateFromCartRequest{CartID: c.ID, AddressID: &foreignAddr.ID})
		assert.ErrorIs(t, err, user.ErrNotAddressOwner)

		var orderCount, itemCount int64
		db.Model(&Order{}).Count(&orderCount)
		db.Model(&cart.CartItem{}).Where("cart_id = ?", c.ID).Count(&itemCount)
		assert.Zero(t, orderCount)
		assert.Equal(t, int64(1), itemCount)
	})

	t.Run("nonexistent address is rejected", func(t *testing.T) {
		p := &product.Product{Name: "Mug B", Slug: "mug-b", Price: 500, Stock: 5, IsActive: true}
		c := seedCart(t, db, 1, map[*product.Product]int{p: 1})

		missing := uint(9999)
		_, err := service.CreateFromCart(1, &CreateFromCartRequest{CartID: c.ID, AddressID: &missing})
		assert.ErrorIs(t, err, user.ErrAddressNotFound)

		var orderCount int64
		db.Model(&Order{}).Count(&orderCount)
		assert.Zero(t, orderCount)
	})

	t.Run("own address is accepted and recorded", func(t *testing.T) {
		p := &product.Product{Name: "Mug C", Slug: "mug-c", Price: 500, Stock: 5, IsActive: true}
		c := seedCart(t, db, 1, map[*product.Product]int{p: 1})

		o, err := service.CreateFromCart(1, &CreateFromCartRequest{CartID: c.ID, AddressID: &ownAddr.ID})
		require.NoError(t, err)
		require.NotNil(t, o.AddressID)
		assert.Equal(t, ownAddr.ID, *o.AddressID)
	})
}

func TestCreateFromCart_ItemInsertFailureRollsBackEverything(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db)

	mug := &product.Product{Name: "Ceramic Mug", Slug: "ceramic-mug", Price: 500, Stock: 10, IsActive: true}
	candle := &product.Product{Name: "Scented Candle", Slug: "scented-candle", Price: 1200, Stock: 10, IsActive: true}
	c := seedCart(t, db, 1, map[*product.Product]int{mug: 2, candle: 1})

	// Force the second order-item insert to fail mid-transaction
	inserts := 0
	err := db.Callback().Create().Before("gorm:create").Register("fail_second_order_item", func(tx *gorm.DB) {
		if tx.Statement.Table == "order_items" {
			inserts++
			if inserts == 2 {
				tx.AddError(gorm.ErrInvalidData)
			}
		}
	})
	require.NoError(t, err)

	_, err = service.CreateFromCart(1, &CreateFromCartRequest{CartID: c.ID})
	require.Error(t, err)
	require.Equal(t, 2, inserts)

	// Order and first item are gone, cart survives untouched
	var orderCount, orderItemCount, cartCount, cartItemCount int64
	db.Model(&Order{}).Count(&orderCount)
	db.Model(&OrderItem{}).Count(&orderItemCount)
	db.Model(&cart.Cart{}).Where("id = ?", c.ID).Count(&cartCount)
	db.Model(&cart.CartItem{}).Where("cart_id = ?", c.ID).Count(&cartItemCount)
	assert.Zero(t, orderCount)
	assert.Zero(t, orderItemCount)
	assert.Equal(t, int64(1), cartCount)
	assert.Equal(t, int64(2), cartItemCount)
}

func TestCreateFromCart_SnapshotSurvivesPriceChange(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db)

	p := &product.Product{Name: "Candle", Slug: "candle", Price: 1200, Stock: 5, IsActive: true}
	c := seedCart(t, db, 1, map[*product.Product]int{p: 1})

	o, err := service.CreateFromCart(1, &CreateFromCartRequest{CartID: c.ID})
	require.NoError(t, err)

	// Raising the catalog price must not touch the order
	require.NoError(t, db.Model(&product.Product{}).Where("id = ?", p.ID).Update("price", 9999).Error)

	reloaded, err := service.GetByID(o.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1200), reloaded.TotalAmount)
	require.Len(t, reloaded.Items, 1)
	assert.Equal(t, int64(1200), reloaded.Items[0].UnitPrice)
}

func TestCancel(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db)

	p := &product.Product{Name: "Mug", Slug: "mug", Price: 500, Stock: 5, IsActive: true}
	c := seedCart(t, db, 1, map[*product.Product]int{p: 1})
	o, err := service.CreateFromCart(1, &CreateFromCartRequest{CartID: c.ID})
	require.NoError(t, err)

	t.Run("owner can cancel pending order", func(t *testing.T) {
		cancelled, err := service.Cancel(1, o.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, cancelled.Status)
	})

	t.Run("cancelled order cannot be cancelled again", func(t *testing.T) {
		_, err := service.Cancel(1, o.ID)
		assert.ErrorIs(t, err, ErrOrderNotCancellable)
	})
}

func TestCancel_NotOwner(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db)

	p := &product.Product{Name: "Mug", Slug: "mug", Price: 500, Stock: 5, IsActive: true}
	c := seedCart(t, db, 1, map[*product.Product]int{p: 1})
	o, err := service.CreateFromCart(1, &CreateFromCartRequest{CartID: c.ID})
	require.NoError(t, err)

	_, err = service.Cancel(2, o.ID)
	assert.ErrorIs(t, err, ErrNotOrderOwner)
}

func TestMarkPaid(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db)

	p := &product.Product{Name: "Mug", Slug: "mug", Price: 500, Stock: 5, IsActive: true}
	c := seedCart(t, db, 1, map[*product.Product]int{p: 1})
	o, err := service.CreateFromCart(1, &CreateFromCartRequest{CartID: c.ID})
	require.NoError(t, err)

	require.NoError(t, service.MarkPaid(nil, o.ID))

	paid, err := service.GetByID(o.ID)
	require.NoError(t, err)
	assert.Equal(t, PaymentStatusPaid, paid.PaymentStatus)
	assert.Equal(t, StatusProcessing, paid.Status)
	assert.NotNil(t, paid.PaidAt)
	assert.False(t, paid.CanBeCancelled())
}

func TestUpdateStatus_RejectsUnknownStatus(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db)

	_, err := service.UpdateStatus(1, "shipped-to-mars")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
