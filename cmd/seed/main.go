package main

import (
	"time"

	"github.com/bookvine/internal/config"
	"github.com/bookvine/internal/logger"
	"github.com/bookvine/internal/models"
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

	salePrice := func(cents int64) *int64 { return &cents }

	// 添加图书
	books := []models.Book{
		{
			Slug:        "the-go-programming-language",
			Title:       "The Go Programming Language",
			Author:      "Alan A. A. Donovan",
			Description: "The authoritative resource to writing clear and idiomatic Go.",
			Tags:        models.StringArray([]string{"Programming", "Go"}),
			PriceCents:  4599,
			Stock:       120,
			IsActive:    true,
		},
		{
			Slug:           "designing-data-intensive-applications",
			Title:          "Designing Data-Intensive Applications",
			Author:         "Martin Kleppmann",
			Description:    "The big ideas behind reliable, scalable, and maintainable systems.",
			Tags:           models.StringArray([]string{"Programming", "Databases"}),
			PriceCents:     5499,
			SalePriceCents: salePrice(4399),
			OnSale:         true,
			Stock:          80,
			IsActive:       true,
		},
		{
			Slug:        "the-left-hand-of-darkness",
			Title:       "The Left Hand of Darkness",
			Author:      "Ursula K. Le Guin",
			Description: "A groundbreaking work of science fiction.",
			Tags:        models.StringArray([]string{"Fiction", "SciFi"}),
			PriceCents:  1699,
			Stock:       200,
			IsActive:    true,
		},
		{
			Slug:           "kitchen-confidential",
			Title:          "Kitchen Confidential",
			Author:         "Anthony Bourdain",
			Description:    "Adventures in the culinary underbelly.",
			Tags:           models.StringArray([]string{"Memoir", "Food"}),
			PriceCents:     1899,
			SalePriceCents: salePrice(1499),
			OnSale:         true,
			Stock:          60,
			IsActive:       true,
		},
		{
			Slug:        "a-pattern-language",
			Title:       "A Pattern Language",
			Author:      "Christopher Alexander",
			Description: "Towns, buildings, construction.",
			Tags:        models.StringArray([]string{"Architecture", "Design"}),
			PriceCents:  6500,
			Stock:       25,
			IsActive:    true,
		},
	}

	for _, book := range books {
		var existing models.Book
		if err := models.DB.Where("slug = ?", book.Slug).First(&existing).Error; err != nil {
			if err := models.DB.Create(&book).Error; err != nil {
				stdLog.Printf("Failed to create book %s: %v", book.Slug, err)
			} else {
				stdLog.Printf("Created book: %s", book.Slug)
			}
		} else {
			stdLog.Printf("Book already exists: %s", book.Slug)
		}
	}

	// 添加折扣码
	now := time.Now()
	endOfYear := time.Date(now.Year(), 12, 31, 23, 59, 59, 0, now.Location())
	discounts := []models.Discount{
		{
			Code:     "WELCOME10",
			Type:     "percent",
			PctOff:   10,
			IsActive: true,
		},
		{
			Code:         "READER25",
			Type:         "percent",
			PctOff:       25,
			IsActive:     true,
			StartsAt:     &now,
			EndsAt:       &endOfYear,
			UsageLimit:   100,
			PerUserLimit: 1,
		},
	}

	for _, discount := range discounts {
		var existing models.Discount
		if err := models.DB.Where("code = ?", discount.Code).First(&existing).Error; err != nil {
			if err := models.DB.Create(&discount).Error; err != nil {
				stdLog.Printf("Failed to create discount %s: %v", discount.Code, err)
			} else {
				stdLog.Printf("Created discount: %s", discount.Code)
			}
		} else {
			stdLog.Printf("Discount already exists: %s", discount.Code)
		}
	}

	stdLog.Printf("Seed completed")
}
