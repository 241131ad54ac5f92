// Package seed 提供示例房源数据
package seed

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/ashwinyue/travacasa/internal/model"
)

// Listings 返回一组示例房源，第 i 条的创建时间为 base 之后 i 小时
func Listings(base time.Time) []*model.Listing {
	specs := []struct {
		title, description, location, country string
		price                                 float64
		ratings                               []int
	}{
		{
			title:       "Eiffel View Apartment",
			description: "Bright two-bedroom apartment a short walk from the Eiffel Tower, with a balcony, fast wifi and a fully equipped kitchen for longer stays in the heart of the city.",
			location:    "Paris",
			country:     "France",
			price:       120,
			ratings:     []int{5, 4},
		},
		{
			title:       "Montmartre Studio",
			description: "Charming studio apartment on a quiet street below Sacre-Coeur.",
			location:    "Paris",
			country:     "France",
			price:       95,
		},
		{
			title:       "Left Bank Luxury Suite",
			description: "Premium suite with river views, concierge service and a private terrace.",
			location:    "Paris",
			country:     "France",
			price:       420,
			ratings:     []int{5},
		},
		{
			title:       "Malibu Beach Villa",
			description: "Oceanfront villa with pool and direct beach access.",
			location:    "Malibu",
			country:     "United States",
			price:       350,
		},
		{
			title:       "Aspen Mountain Cabin",
			description: "Rustic log cabin close to the ski lifts, fireplace included.",
			location:    "Aspen",
			country:     "United States",
			price:       180,
			ratings:     []int{3, 4},
		},
		{
			title:       "Goa Beach Hut",
			description: "Simple bamboo hut steps from the sand, perfect for budget travellers.",
			location:    "Goa",
			country:     "India",
			price:       60,
		},
		{
			title:       "Manhattan Skyline Loft",
			description: "Industrial loft with skyline views in lower Manhattan.",
			location:    "New York City",
			country:     "United States",
			price:       250,
		},
	}

	listings := make([]*model.Listing, 0, len(specs))
	for i, s := range specs {
		created := base.Add(time.Duration(i) * time.Hour)
		l := &model.Listing{
			Title:       s.title,
			Description: s.description,
			Location:    s.location,
			Country:     s.country,
			Price:       s.price,
			CreatedAt:   created,
			UpdatedAt:   created,
		}
		for _, rating := range s.ratings {
			l.Reviews = append(l.Reviews, model.Review{Rating: rating, Comment: "fixture review", CreatedAt: created})
		}
		listings = append(listings, l)
	}
	return listings
}

// Run 写入示例房源
// 表中已有数据时跳过，返回写入条数
func Run(ctx context.Context, db *gorm.DB, base time.Time) (int, error) {
	var count int64
	if err := db.WithContext(ctx).Model(&model.Listing{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count listings: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	listings := Listings(base)
	if err := db.WithContext(ctx).Create(listings).Error; err != nil {
		return 0, fmt.Errorf("seed listings: %w", err)
	}
	return len(listings), nil
}
