// Package voice 处理语音搜索转写文本
// 清理口头填充词，识别地点和房型，再查询房源、网页结果和搜索建议
package voice

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ashwinyue/travacasa/internal/model"
	"github.com/ashwinyue/travacasa/internal/repository"
	"github.com/ashwinyue/travacasa/internal/service/websearch"
)

const (
	databaseLimit  = 10
	popularLimit   = 5
	maxSuggestions = 8

	// HitType 房源结果的类型标签
	HitType = "database_listing"
)

var (
	fillerPattern = regexp.MustCompile(`\b(?:um|uh|like|you know|basically|actually)\b`)

	locationMarkers = map[string]struct{}{"near": {}, "in": {}, "at": {}, "around": {}, "nearby": {}}
	propertyTypes   = []string{"hotel", "apartment", "house", "villa", "resort", "cabin"}
	categories      = []string{"beach resorts", "mountain cabins", "city apartments", "luxury villas", "budget hotels"}
)

// Query 清理后的语音查询
type Query struct {
	Original  string   `json:"original"`
	Processed string   `json:"processed"`
	Location  string   `json:"location"`
	Type      string   `json:"type"`
	Keywords  []string `json:"keywords"`
}

// Hit 房源结果
type Hit struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Location    string  `json:"location"`
	Country     string  `json:"country"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Type        string  `json:"type"`
}

// Suggestion 搜索建议，地点类带房源数
type Suggestion struct {
	Text  string `json:"text"`
	Type  string `json:"type"`
	Count int64  `json:"count"`
}

// Result 一次语音搜索的结果
type Result struct {
	Query       *Query             `json:"processedQuery"`
	Listings    []Hit              `json:"databaseResults"`
	Web         []websearch.Result `json:"webResults"`
	WebSource   string             `json:"webSource,omitempty"`
	Suggestions []Suggestion       `json:"suggestions"`
}

// ProcessTranscript 小写并去掉填充词
// 地点取第一个地点介词之后的全部词，没有时使用整句
// 房型取第一个房型词，复数按单数识别
func ProcessTranscript(transcript string) *Query {
	processed := strings.ToLower(strings.TrimSpace(transcript))
	processed = fillerPattern.ReplaceAllString(processed, "")
	words := strings.Fields(processed)
	processed = strings.Join(words, " ")

	q := &Query{
		Original:  transcript,
		Processed: processed,
		Keywords:  []string{},
	}

	for i, w := range words {
		next := i + 1
		if w == "close" && next < len(words) && words[next] == "to" {
			next++
		} else if _, ok := locationMarkers[w]; !ok {
			continue
		}
		if next < len(words) {
			q.Location = strings.Join(words[next:], " ")
			break
		}
	}
	if q.Location == "" {
		q.Location = processed
	}

	for _, w := range words {
		if t := propertyType(w); t != "" {
			q.Type = t
			break
		}
	}

	for _, w := range words {
		if utf8.RuneCountInString(w) > 2 {
			q.Keywords = append(q.Keywords, w)
		}
	}
	return q
}

func propertyType(word string) string {
	singular := strings.TrimSuffix(word, "s")
	for _, t := range propertyTypes {
		if word == t || singular == t {
			return t
		}
	}
	return ""
}

// Service 语音搜索服务
type Service struct {
	store repository.ListingStore
	web   *websearch.Service
}

// NewService 创建语音搜索服务
func NewService(store repository.ListingStore, web *websearch.Service) *Service {
	return &Service{store: store, web: web}
}

// Search 查询房源，没有匹配时补充网页结果，并附带搜索建议
func (s *Service) Search(ctx context.Context, transcript string) (*Result, error) {
	q := ProcessTranscript(transcript)

	listings, err := s.store.Search(ctx, &repository.ListingQuery{
		Terms: []string{q.Location},
		Limit: databaseLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("search listings: %w", err)
	}

	result := &Result{
		Query:    q,
		Listings: make([]Hit, 0, len(listings)),
		Web:      []websearch.Result{},
	}
	for _, l := range listings {
		result.Listings = append(result.Listings, toHit(l))
	}

	if len(result.Listings) == 0 && s.web != nil {
		result.Web, result.WebSource = s.web.Search(ctx, q.Location)
	}

	result.Suggestions, err = s.Suggestions(ctx, q)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Suggestions 热门地点中包含查询地点的项，加上与房型或关键词相关的分类，最多 8 条
func (s *Service) Suggestions(ctx context.Context, q *Query) ([]Suggestion, error) {
	popular, err := s.store.PopularLocations(ctx, popularLimit)
	if err != nil {
		return nil, fmt.Errorf("popular locations: %w", err)
	}

	suggestions := []Suggestion{}
	location := strings.ToLower(q.Location)
	for _, p := range popular {
		if location != "" && strings.Contains(strings.ToLower(p.Name), location) {
			suggestions = append(suggestions, Suggestion{Text: p.Name, Type: "location", Count: p.Count})
		}
	}

	for _, c := range categories {
		if matchesCategory(c, q) {
			suggestions = append(suggestions, Suggestion{Text: c, Type: "category"})
		}
	}

	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}
	return suggestions, nil
}

func matchesCategory(category string, q *Query) bool {
	if q.Type != "" && strings.Contains(category, q.Type) {
		return true
	}
	for _, k := range q.Keywords {
		if strings.Contains(category, k) {
			return true
		}
	}
	return false
}

func toHit(l *model.Listing) Hit {
	return Hit{
		ID:          l.ID,
		Title:       l.Title,
		Description: l.Description,
		Location:    l.Location,
		Country:     l.Country,
		Price:       l.Price,
		Image:       l.ImageURL,
		Type:        HitType,
	}
}
