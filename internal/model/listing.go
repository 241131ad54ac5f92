package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultListingImage 未上传图片时使用的封面
const DefaultListingImage = "https://images.unsplash.com/photo-1527555197883-98e27ca0c1ea?ixlib=rb-1.2.1&q=80&fm=jpg&crop=entropy&cs=tinysrgb&w=1080&fit=max"

// Listing 房源
type Listing struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Price       float64   `gorm:"index;not null" json:"price"`
	Location    string    `gorm:"index;size:255;not null" json:"location"`
	Country     string    `gorm:"index;size:100;not null" json:"country"`
	ImageURL    string    `gorm:"size:1000" json:"image_url"`
	ImageName   string    `gorm:"size:255" json:"image_filename,omitempty"`
	OwnerID     string    `gorm:"index;size:36" json:"owner_id,omitempty"`
	Reviews     []Review  `gorm:"foreignKey:ListingID" json:"reviews,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Review 房源评价
type Review struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	ListingID string    `gorm:"index;size:36;not null" json:"listing_id"`
	AuthorID  string    `gorm:"index;size:36" json:"author_id,omitempty"`
	Rating    int       `gorm:"not null" json:"rating"`
	Comment   string    `gorm:"type:text" json:"comment"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 指定表名
func (Listing) TableName() string {
	return "listings"
}

func (Review) TableName() string {
	return "reviews"
}

// BeforeCreate GORM 钩子，创建前生成 UUID 并补齐默认图片
func (l *Listing) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	if l.ImageURL == "" {
		l.ImageURL = DefaultListingImage
	}
	return nil
}

// BeforeCreate GORM 钩子，创建前生成 UUID
func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// NoRatings 没有评价时展示的评分文本
const NoRatings = "No ratings yet"

// AverageRating 计算平均评分，保留一位小数
// 需要先 Preload("Reviews")
func (l *Listing) AverageRating() string {
	if len(l.Reviews) == 0 {
		return NoRatings
	}
	sum := 0
	for _, r := range l.Reviews {
		sum += r.Rating
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(l.Reviews)))
}
