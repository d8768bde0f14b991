package repositories_test

import (
	"fmt"
	"strings"
	"testing"

	"yourstyle/internal/models"
	"yourstyle/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Product{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
	))
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, name string, priceCents int64) *models.Product {
	t.Helper()
	repo := repositories.NewGORMProductRepository(db)
	p := &models.Product{Name: name, PriceCents: priceCents}
	require.NoError(t, repo.Create(p))
	return p
}

func TestGORMCartRepository_UpsertIncrements(t *testing.T) {
	db := newTestDB(t)
	repo := repositories.NewGORMCartRepository(db)
	tee := seedProduct(t, db, "Classic White Tee", 1999)

	line, err := repo.Upsert("user-1", tee.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, line.Quantity)

	// Adding the same product again grows the one line instead of making two.
	line, err = repo.Upsert("user-1", tee.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, line.Quantity)

	lines, err := repo.GetLines("user-1")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 5, lines[0].Quantity)

	// A different user's cart is untouched.
	lines, err = repo.GetLines("user-2")
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestGORMCartRepository_UpsertMergesExistingRow(t *testing.T) {
	db := newTestDB(t)
	repo := repositories.NewGORMCartRepository(db)
	tee := seedProduct(t, db, "Classic White Tee", 1999)

	// A row for the same (user, product) pair already exists, as if another
	// request just committed it. Upsert must merge into it instead of
	// tripping the unique index.
	require.NoError(t, db.Create(&models.CartItem{
		ID:        uuid.New().String(),
		UserID:    "user-1",
		ProductID: tee.ID,
		Quantity:  4,
	}).Error)

	line, err := repo.Upsert("user-1", tee.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 7, line.Quantity)

	lines, err := repo.GetLines("user-1")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 7, lines[0].Quantity)
}

func TestGORMCartRepository_DeleteLines(t *testing.T) {
	db := newTestDB(t)
	repo := repositories.NewGORMCartRepository(db)
	tee := seedProduct(t, db, "Classic White Tee", 1999)
	jeans := seedProduct(t, db, "Slim Fit Jeans", 5499)

	first, err := repo.Upsert("user-1", tee.ID, 1)
	require.NoError(t, err)
	_, err = repo.Upsert("user-1", jeans.ID, 2)
	require.NoError(t, err)

	// Only the named lines go; the rest of the cart stays.
	require.NoError(t, repo.DeleteLines("user-1", []string{first.ID}))

	lines, err := repo.GetLines("user-1")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, jeans.ID, lines[0].ProductID)

	// An empty id set is a no-op, not a delete-everything.
	require.NoError(t, repo.DeleteLines("user-1", nil))
	lines, err = repo.GetLines("user-1")
	require.NoError(t, err)
	assert.Len(t, lines, 1)
}

func TestGORMCartRepository_LineOwnership(t *testing.T) {
	db := newTestDB(t)
	repo := repositories.NewGORMCartRepository(db)
	tee := seedProduct(t, db, "Classic White Tee", 1999)

	line, err := repo.Upsert("user-1", tee.ID, 1)
	require.NoError(t, err)

	// Another user cannot read, update or delete the line by id.
	_, err = repo.GetLine("user-2", line.ID)
	assert.ErrorIs(t, err, models.ErrCartItemNotFound)

	_, err = repo.UpdateQuantity("user-2", line.ID, 9)
	assert.ErrorIs(t, err, models.ErrCartItemNotFound)

	err = repo.DeleteLine("user-2", line.ID)
	assert.ErrorIs(t, err, models.ErrCartItemNotFound)

	// The owner can.
	updated, err := repo.UpdateQuantity("user-1", line.ID, 9)
	require.NoError(t, err)
	assert.Equal(t, 9, updated.Quantity)

	require.NoError(t, repo.DeleteLine("user-1", line.ID))
	_, err = repo.GetLine("user-1", line.ID)
	assert.ErrorIs(t, err, models.ErrCartItemNotFound)
}

func TestGORMCartRepository_DeleteByProduct(t *testing.T) {
	db := newTestDB(t)
	repo := repositories.NewGORMCartRepository(db)
	tee := seedProduct(t, db, "Classic White Tee", 1999)

	// Absent line: no error, nothing removed.
	removed, err := repo.DeleteByProduct("user-1", tee.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = repo.Upsert("user-1", tee.ID, 1)
	require.NoError(t, err)

	removed, err = repo.DeleteByProduct("user-1", tee.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	lines, err := repo.GetLines("user-1")
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestGORMCartRepository_LinesWithProducts(t *testing.T) {
	db := newTestDB(t)
	repo := repositories.NewGORMCartRepository(db)
	tee := seedProduct(t, db, "Classic White Tee", 1999)
	jacket := seedProduct(t, db, "Discontinued Jacket", 8999)

	_, err := repo.Upsert("user-1", tee.ID, 3)
	require.NoError(t, err)
	_, err = repo.Upsert("user-1", jacket.ID, 1)
	require.NoError(t, err)

	lines, err := repo.LinesWithProducts("user-1", false)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	for _, l := range lines {
		assert.Equal(t, l.PriceCents*int64(l.Quantity), l.LineTotalCents)
		assert.NotEmpty(t, l.Name)
	}

	// Removing the product from the catalog orphans the line; the join
	// drops it without error.
	require.NoError(t, db.Delete(&models.Product{}, "id = ?", jacket.ID).Error)

	lines, err = repo.LinesWithProducts("user-1", false)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, tee.ID, lines[0].ProductID)

	// The orphan cart row itself is still there.
	raw, err := repo.GetLines("user-1")
	require.NoError(t, err)
	assert.Len(t, raw, 2)
}

func TestGORMCartRepository_Clear(t *testing.T) {
	db := newTestDB(t)
	repo := repositories.NewGORMCartRepository(db)
	tee := seedProduct(t, db, "Classic White Tee", 1999)
	jeans := seedProduct(t, db, "Slim Fit Jeans", 5499)

	_, err := repo.Upsert("user-1", tee.ID, 1)
	require.NoError(t, err)
	_, err = repo.Upsert("user-1", jeans.ID, 2)
	require.NoError(t, err)
	_, err = repo.Upsert("user-2", tee.ID, 1)
	require.NoError(t, err)

	require.NoError(t, repo.Clear("user-1"))

	lines, err := repo.GetLines("user-1")
	require.NoError(t, err)
	assert.Empty(t, lines)

	// Clearing one user leaves everyone else's cart alone.
	lines, err = repo.GetLines("user-2")
	require.NoError(t, err)
	assert.Len(t, lines, 1)
}
