package main

import (
	"github.com/litemall-next/internal/config"
	"github.com/litemall-next/internal/logger"
	"github.com/litemall-next/internal/models"

	"github.com/shopspring/decimal"
)

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
			Name:          "无线蓝牙耳机",
			Description:   "高品质音质，支持主动降噪，续航时间长达24小时",
			Price:         models.NewMoneyFromDecimal(decimal.NewFromFloat(99.99)),
			StockQuantity: 200,
			IsActive:      true,
		},
		{
			Name:          "智能手表",
			Description:   "心率监测、睡眠分析、50米防水",
			Price:         models.NewMoneyFromDecimal(decimal.NewFromFloat(199.00)),
			StockQuantity: 120,
			IsActive:      true,
		},
		{
			Name:          "便携充电宝",
			Description:   "20000mAh 大容量，支持双向快充",
			Price:         models.NewMoneyFromDecimal(decimal.NewFromFloat(39.50)),
			StockQuantity: 500,
			IsActive:      true,
		},
		{
			Name:          "机械键盘",
			Description:   "87键热插拔轴体，RGB 背光",
			Price:         models.NewMoneyFromDecimal(decimal.NewFromFloat(129.00)),
			StockQuantity: 80,
			IsActive:      true,
		},
		{
			Name:          "显示器支架",
			Description:   "气弹簧臂，支持 17-32 寸显示器",
			Price:         models.NewMoneyFromDecimal(decimal.NewFromFloat(59.90)),
			StockQuantity: 0,
			IsActive:      false,
		},
	}

	for _, product := range products {
		var existing models.Product
		if err := models.DB.Where("name = ?", product.Name).First(&existing).Error; err != nil {
			// 不存在则创建
			if err := models.DB.Create(&product).Error; err != nil {
				stdLog.Printf("Failed to create product %s: %v", product.Name, err)
			} else {
				stdLog.Printf("Created product: %s", product.Name)
			}
		} else {
			stdLog.Printf("Product already exists: %s", product.Name)
		}
	}

	stdLog.Printf("Seed finished")
}
