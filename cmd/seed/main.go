package main

import (
	"github.com/weipos/internal/config"
	"github.com/weipos/internal/constants"
	"github.com/weipos/internal/logger"
	"github.com/weipos/internal/models"

	"github.com/shopspring/decimal"
)

const seedTenantID = 1

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 添加商品
	products := []models.Product{
		{
			TenantID:       seedTenantID,
			Name:           "珍珠奶茶",
			Price:          models.NewMoneyFromDecimal(decimal.NewFromFloat(18.000)),
			IsActive:       true,
			IsStockTracked: false,
			Variations: []models.ProductVariation{
				{GroupName: "杯型", ValueName: "大杯", PriceDelta: models.NewMoneyFromDecimal(decimal.NewFromFloat(3.000))},
				{GroupName: "杯型", ValueName: "中杯", PriceDelta: models.NewMoneyFromDecimal(decimal.Zero)},
				{GroupName: "加料", ValueName: "椰果", PriceDelta: models.NewMoneyFromDecimal(decimal.NewFromFloat(2.000))},
			},
		},
		{
			TenantID:       seedTenantID,
			Name:           "招牌牛肉面",
			Price:          models.NewMoneyFromDecimal(decimal.NewFromFloat(32.000)),
			IsActive:       true,
			IsStockTracked: false,
			Variations: []models.ProductVariation{
				{GroupName: "辣度", ValueName: "微辣", PriceDelta: models.NewMoneyFromDecimal(decimal.Zero)},
				{GroupName: "辣度", ValueName: "特辣", PriceDelta: models.NewMoneyFromDecimal(decimal.Zero)},
				{GroupName: "份量", ValueName: "加面", PriceDelta: models.NewMoneyFromDecimal(decimal.NewFromFloat(5.000))},
			},
		},
		{
			TenantID:       seedTenantID,
			Name:           "瓶装气泡水",
			Price:          models.NewMoneyFromDecimal(decimal.NewFromFloat(8.000)),
			IsActive:       true,
			IsStockTracked: true,
		},
		{
			TenantID:       seedTenantID,
			Name:           "季节限定甜品（已下架）",
			Price:          models.NewMoneyFromDecimal(decimal.NewFromFloat(22.000)),
			IsActive:       false,
			IsStockTracked: false,
		},
	}

	for _, prod := range products {
		var existing models.Product
		if err := models.DB.Where("tenant_id = ? AND name = ?", prod.TenantID, prod.Name).First(&existing).Error; err != nil {
			if err := models.DB.Create(&prod).Error; err != nil {
				stdLog.Printf("Failed to create product %s: %v", prod.Name, err)
			} else {
				stdLog.Printf("Created product: %s", prod.Name)
			}
		} else {
			stdLog.Printf("Product already exists: %s", prod.Name)
		}
	}

	// 为跟踪库存的商品准备门店库存
	var tracked models.Product
	if err := models.DB.Where("tenant_id = ? AND is_stock_tracked = ?", seedTenantID, true).First(&tracked).Error; err == nil {
		var stock models.BranchStock
		if err := models.DB.Where("branch_id = ? AND product_id = ?", 1, tracked.ID).First(&stock).Error; err != nil {
			stock = models.BranchStock{
				TenantID:  seedTenantID,
				BranchID:  1,
				ProductID: tracked.ID,
				Quantity:  100,
			}
			if err := models.DB.Create(&stock).Error; err != nil {
				stdLog.Printf("Failed to create branch stock for %s: %v", tracked.Name, err)
			} else {
				stdLog.Printf("Created branch stock for: %s", tracked.Name)
			}
		} else {
			stdLog.Printf("Branch stock already exists for: %s", tracked.Name)
		}
	}

	// 添加外卖平台
	aggregators := []models.Aggregator{
		{
			TenantID:                 seedTenantID,
			Name:                     "美团外卖",
			DefaultCommissionPercent: models.NewMoneyFromDecimal(decimal.NewFromFloat(18.000)),
			IsActive:                 true,
		},
		{
			TenantID:                 seedTenantID,
			Name:                     "饿了么",
			DefaultCommissionPercent: models.NewMoneyFromDecimal(decimal.NewFromFloat(20.000)),
			IsActive:                 true,
		},
		{
			TenantID:                 seedTenantID,
			Name:                     "旧平台（已停用）",
			DefaultCommissionPercent: models.NewMoneyFromDecimal(decimal.NewFromFloat(25.000)),
			IsActive:                 false,
		},
	}

	for _, agg := range aggregators {
		var existing models.Aggregator
		if err := models.DB.Where("tenant_id = ? AND name = ?", agg.TenantID, agg.Name).First(&existing).Error; err != nil {
			if err := models.DB.Create(&agg).Error; err != nil {
				stdLog.Printf("Failed to create aggregator %s: %v", agg.Name, err)
			} else {
				stdLog.Printf("Created aggregator: %s", agg.Name)
			}
		} else {
			stdLog.Printf("Aggregator already exists: %s", agg.Name)
		}
	}

	// 添加会员
	customers := []models.Customer{
		{TenantID: seedTenantID, Name: "张三", Phone: "13800000001", PointsBalance: 120, CashbackBalance: models.NewMoneyFromDecimal(decimal.NewFromFloat(15.500))},
		{TenantID: seedTenantID, Name: "李四", Phone: "13800000002"},
	}

	for _, cust := range customers {
		var existing models.Customer
		if err := models.DB.Where("tenant_id = ? AND phone = ?", cust.TenantID, cust.Phone).First(&existing).Error; err != nil {
			if err := models.DB.Create(&cust).Error; err != nil {
				stdLog.Printf("Failed to create customer %s: %v", cust.Name, err)
			} else {
				stdLog.Printf("Created customer: %s", cust.Name)
			}
		} else {
			stdLog.Printf("Customer already exists: %s", cust.Name)
		}
	}

	// 写入租户配置
	settings := map[string]string{
		constants.SettingKeyTaxPercent:         "5",
		constants.SettingKeyServicePercent:     "10",
		constants.SettingKeyLockTimeoutSeconds: "120",
		constants.SettingKeyCashbackPercent:    "1",
		constants.SettingKeyPointsEarnRate:     "1",
	}

	for key, value := range settings {
		var setting models.Setting
		if err := models.DB.Where("tenant_id = ? AND key = ?", seedTenantID, key).First(&setting).Error; err != nil {
			setting = models.Setting{
				TenantID: seedTenantID,
				Key:      key,
				Value:    value,
			}
			if err := models.DB.Create(&setting).Error; err != nil {
				stdLog.Printf("Failed to create setting %s: %v", key, err)
			} else {
				stdLog.Printf("Created setting: %s=%s", key, value)
			}
		} else {
			setting.Value = value
			if err := models.DB.Save(&setting).Error; err != nil {
				stdLog.Printf("Failed to update setting %s: %v", key, err)
			} else {
				stdLog.Printf("Updated setting: %s=%s", key, value)
			}
		}
	}

	stdLog.Println("Seed completed")
}
