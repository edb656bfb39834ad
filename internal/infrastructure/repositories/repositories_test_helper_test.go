package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"rumfor-market.backend/internal/domain/entities"
	"rumfor-market.backend/internal/infrastructure/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Market{}, &models.Application{}))
	return db
}

func seedMarket(t *testing.T, db *gorm.DB, deadline *time.Time) *entities.Market {
	t.Helper()
	market := &entities.Market{
		ID:                  uuid.New(),
		Name:                "Downtown Farmers Market",
		Category:            "farmers-market",
		PromoterID:          uuid.New(),
		ApplicationDeadline: deadline,
		ApplicationFields: []entities.CustomField{
			{Name: "boothSize", Type: entities.FieldTypeSelect, Required: true, Options: []string{"small", "large"}},
		},
		IsActive: true,
	}
	require.NoError(t, NewMarketRepository(db).Create(context.Background(), market))
	return market
}

func seedApplication(t *testing.T, db *gorm.DB, marketID uuid.UUID, status entities.ApplicationStatus) *entities.Application {
	t.Helper()
	app := &entities.Application{
		ID:       uuid.New(),
		MarketID: marketID,
		VendorID: uuid.New(),
		Status:   status,
		SubmittedData: map[string]interface{}{
			"businessName": "Bread & Butter",
		},
		CustomFields: map[string]interface{}{
			"boothSize": "small",
		},
	}
	require.NoError(t, NewApplicationRepository(db).Create(context.Background(), app))
	return app
}
