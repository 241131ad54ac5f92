// Package listing 提供房源只读查询
package listing

import (
	"context"
	"errors"
	"strings"

	"github.com/ashwinyue/travacasa/internal/model"
	"github.com/ashwinyue/travacasa/internal/repository"
)

const (
	defaultPageSize    = 12
	maxPageSize        = 100
	popularLimit       = 10
	searchHistoryLimit = 5
)

// ErrNotFound 房源不存在
var ErrNotFound = errors.New("listing not found")

// Service 房源服务
type Service struct {
	store repository.ListingStore
}

// NewService 创建房源服务
func NewService(store repository.ListingStore) *Service {
	return &Service{store: store}
}

// ListRequest 列表查询参数
type ListRequest struct {
	Search   string
	Page     int
	PageSize int
}

// View 带评分汇总的房源
type View struct {
	*model.Listing
	AverageRating string `json:"average_rating"`
	ReviewCount   int    `json:"review_count"`
}

// ListResult 列表结果
type ListResult struct {
	Items []View
	Total int64
	Page  int
	Size  int
	// SearchHistory 与关键词部分匹配的其他地点
	SearchHistory []string
}

// PopularSearches 热门地点和国家
type PopularSearches struct {
	Locations []repository.NamedCount `json:"locations"`
	Countries []repository.NamedCount `json:"countries"`
}

// List 分页列出房源，search 非空时在标题、描述、地点、国家中匹配
func (s *Service) List(ctx context.Context, req *ListRequest) (*ListResult, error) {
	page, size := normalizePage(req.Page, req.PageSize)
	search := strings.TrimSpace(req.Search)

	q := &repository.ListingQuery{
		Offset: (page - 1) * size,
		Limit:  size,
	}
	if search != "" {
		q.Terms = []string{search}
	}

	total, err := s.store.Count(ctx, q)
	if err != nil {
		return nil, err
	}
	listings, err := s.store.Search(ctx, q)
	if err != nil {
		return nil, err
	}

	result := &ListResult{
		Items: toViews(listings),
		Total: total,
		Page:  page,
		Size:  size,
	}
	if search != "" {
		result.SearchHistory, err = s.store.MatchingLocations(ctx, search, searchHistoryLimit)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// Get 获取房源详情
func (s *Service) Get(ctx context.Context, id string) (*View, error) {
	l, err := s.store.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	v := toView(l)
	return &v, nil
}

// Popular 按房源数统计的热门地点和国家
func (s *Service) Popular(ctx context.Context) (*PopularSearches, error) {
	locations, err := s.store.PopularLocations(ctx, popularLimit)
	if err != nil {
		return nil, err
	}
	countries, err := s.store.PopularCountries(ctx, popularLimit)
	if err != nil {
		return nil, err
	}
	return &PopularSearches{Locations: locations, Countries: countries}, nil
}

func normalizePage(page, size int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}

func toView(l *model.Listing) View {
	return View{Listing: l, AverageRating: l.AverageRating(), ReviewCount: len(l.Reviews)}
}

func toViews(listings []*model.Listing) []View {
	views := make([]View, 0, len(listings))
	for _, l := range listings {
		views = append(views, toView(l))
	}
	return views
}
