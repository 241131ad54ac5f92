// Package repository 定义数据访问接口
// 接口抽象使依赖注入和单元测试成为可能
package repository

import (
	"context"

	"github.com/ashwinyue/travacasa/internal/model"
)

// ListingStore 房源只读查询接口
// 聊天机器人和房源服务只依赖该接口，测试时可替换为 mock
type ListingStore interface {
	Search(ctx context.Context, q *ListingQuery) ([]*model.Listing, error)
	Count(ctx context.Context, q *ListingQuery) (int64, error)
	GetByID(ctx context.Context, id string) (*model.Listing, error)
	PopularLocations(ctx context.Context, limit int) ([]NamedCount, error)
	PopularCountries(ctx context.Context, limit int) ([]NamedCount, error)
	MatchingLocations(ctx context.Context, term string, limit int) ([]string, error)
}

// 确保 ListingRepository 实现了接口
var _ ListingStore = (*ListingRepository)(nil)
