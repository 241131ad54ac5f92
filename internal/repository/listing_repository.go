package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/ashwinyue/travacasa/internal/model"
	"gorm.io/gorm"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("record not found")

// ListingQuery 房源关键词查询条件
type ListingQuery struct {
	// Terms 在 title/description/location/country 上做不区分大小写的子串 OR 匹配
	Terms []string
	// PriceBelow / PriceAbove 为开区间价格边界，nil 表示不限
	PriceBelow *float64
	PriceAbove *float64
	Offset     int
	Limit      int
}

// NamedCount 分组计数
type NamedCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// listingSearchColumns 关键词匹配的列
var listingSearchColumns = []string{"title", "description", "location", "country"}

// ListingRepository 房源数据访问
type ListingRepository struct {
	db *gorm.DB
}

// NewListingRepository 创建房源仓库
func NewListingRepository(db *gorm.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

// Search 按关键词和价格边界查询，按创建时间倒序，附带评价
func (r *ListingRepository) Search(ctx context.Context, q *ListingQuery) ([]*model.Listing, error) {
	var listings []*model.Listing
	query := r.filtered(ctx, q).
		Preload("Reviews").
		Order("created_at DESC")
	if q.Offset > 0 {
		query = query.Offset(q.Offset)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	err := query.Find(&listings).Error
	return listings, err
}

// Count 统计满足条件的房源数
func (r *ListingRepository) Count(ctx context.Context, q *ListingQuery) (int64, error) {
	var total int64
	err := r.filtered(ctx, q).Model(&model.Listing{}).Count(&total).Error
	return total, err
}

func (r *ListingRepository) filtered(ctx context.Context, q *ListingQuery) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&model.Listing{})

	if clause, args := termsClause(q.Terms); clause != "" {
		query = query.Where(clause, args...)
	}
	if q.PriceBelow != nil {
		query = query.Where("price < ?", *q.PriceBelow)
	}
	if q.PriceAbove != nil {
		query = query.Where("price > ?", *q.PriceAbove)
	}
	return query
}

// termsClause 生成 (LOWER(col) LIKE ? OR ...) 条件
func termsClause(terms []string) (string, []interface{}) {
	var (
		parts []string
		args  []interface{}
	)
	for _, term := range terms {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
		for _, col := range listingSearchColumns {
			parts = append(parts, "LOWER("+col+") LIKE ? ESCAPE '\\'")
			args = append(args, pattern)
		}
	}
	if len(parts) == 0 {
		return "", nil
	}
	return "(" + strings.Join(parts, " OR ") + ")", args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// GetByID 获取房源及其评价
func (r *ListingRepository) GetByID(ctx context.Context, id string) (*model.Listing, error) {
	var listing model.Listing
	err := r.db.WithContext(ctx).
		Preload("Reviews", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Where("id = ?", id).
		First(&listing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// Create 创建房源（连同评价）
func (r *ListingRepository) Create(ctx context.Context, listing *model.Listing) error {
	return r.db.WithContext(ctx).Create(listing).Error
}

// DeleteAll 清空房源和评价，用于重新导入示例数据
func (r *ListingRepository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.Review{}).Error; err != nil {
			return err
		}
		return tx.Where("1 = 1").Delete(&model.Listing{}).Error
	})
}

// PopularLocations 按房源数量排序的热门地点
func (r *ListingRepository) PopularLocations(ctx context.Context, limit int) ([]NamedCount, error) {
	return r.groupCount(ctx, "location", limit)
}

// PopularCountries 按房源数量排序的热门国家
func (r *ListingRepository) PopularCountries(ctx context.Context, limit int) ([]NamedCount, error) {
	return r.groupCount(ctx, "country", limit)
}

func (r *ListingRepository) groupCount(ctx context.Context, column string, limit int) ([]NamedCount, error) {
	var rows []NamedCount
	err := r.db.WithContext(ctx).
		Model(&model.Listing{}).
		Select(column + " AS name, COUNT(*) AS count").
		Where(column + " <> ''").
		Group(column).
		Order("count DESC, name ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// MatchingLocations 返回与关键词匹配的不同地点，用作搜索历史提示
func (r *ListingRepository) MatchingLocations(ctx context.Context, term string, limit int) ([]string, error) {
	var locations []string
	err := r.db.WithContext(ctx).
		Model(&model.Listing{}).
		Distinct("location").
		Where("LOWER(location) LIKE ? ESCAPE '\\'", "%"+escapeLike(strings.ToLower(term))+"%").
		Where("LOWER(location) <> ?", strings.ToLower(term)).
		Order("location ASC").
		Limit(limit).
		Pluck("location", &locations).Error
	return locations, err
}
