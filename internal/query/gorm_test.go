package query

import (
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/apperr"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type item struct {
	ID        uint
	Title     string
	Price     float64
	Above18   bool `gorm:"column:above18"`
	CreatedAt time.Time
}

var itemFields = Fields{
	"title":     {Column: "title", Kind: String},
	"price":     {Column: "price", Kind: Number},
	"above18":   {Column: "above18", Kind: Bool},
	"createdAt": {Column: "created_at", Kind: Time},
	"owner":     {Column: "owner", Kind: UUID},
}

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&item{}))

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, p := range []float64{5, 10, 15, 20, 25, 30, 35} {
		require.NoError(t, db.Create(&item{
			Title:     "item",
			Price:     p,
			Above18:   i%2 == 0,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}).Error)
	}
	return db
}

func TestApply_RangeSortPaginate(t *testing.T) {
	db := openDB(t)

	spec := Build(map[string]string{"price[gte]": "10", "sort": "-price", "limit": "2", "page": "2"})
	q, err := Apply(db.Model(&item{}), spec, itemFields)
	require.NoError(t, err)

	var got []item
	require.NoError(t, q.Find(&got).Error)
	require.Len(t, got, 2)
	assert.Equal(t, 25.0, got[0].Price)
	assert.Equal(t, 20.0, got[1].Price)
}

func TestApply_BoolEquality(t *testing.T) {
	db := openDB(t)

	q, err := Apply(db.Model(&item{}), Build(map[string]string{"above18": "false", "limit": "100"}), itemFields)
	require.NoError(t, err)

	var got []item
	require.NoError(t, q.Find(&got).Error)
	assert.Len(t, got, 3)
	for _, it := range got {
		assert.False(t, it.Above18)
	}
}

func TestApply_Rejects(t *testing.T) {
	db := openDB(t)

	tests := []struct {
		name   string
		params map[string]string
	}{
		{"unknown field", map[string]string{"secret": "1"}},
		{"unknown operator", map[string]string{"price[ne]": "1"}},
		{"range on bool", map[string]string{"above18[gt]": "true"}},
		{"bad number", map[string]string{"price[gte]": "cheap"}},
		{"bad uuid", map[string]string{"owner": "nope"}},
		{"unknown sort", map[string]string{"sort": "password"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Apply(db.Model(&item{}), Build(tt.params), itemFields)
			require.Error(t, err)
			assert.Equal(t, apperr.KindValidation, apperr.From(err).Kind)
		})
	}
}
