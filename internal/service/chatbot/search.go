package chatbot

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ashwinyue/travacasa/internal/model"
	"github.com/ashwinyue/travacasa/internal/repository"
)

const (
	defaultSearchLimit = 5
	descriptionLimit   = 150
	maxKeywordTerms    = 3
)

// ListingResult 拼入提示词或兜底回复的房源摘要
type ListingResult struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Location    string  `json:"location"`
	Country     string  `json:"country"`
	Price       float64 `json:"price"`
	Rating      string  `json:"rating"`
	ReviewCount int     `json:"reviewCount"`
	Image       string  `json:"image"`
}

// PriceBounds 预算和高端价格阈值
type PriceBounds struct {
	BudgetMax float64
	LuxuryMin float64
}

var (
	budgetWords = []string{"cheap", "budget", "affordable"}
	luxuryWords = []string{"expensive", "luxury", "premium"}

	// propertyNouns 复数形式在关键词中还原为单数
	propertyNouns = map[string]string{
		"apartment": "apartment", "apartments": "apartment",
		"house": "house", "houses": "house",
		"villa": "villa", "villas": "villa",
		"hotel": "hotel", "hotels": "hotel",
		"cabin": "cabin", "cabins": "cabin",
		"studio": "studio", "studios": "studio",
		"loft": "loft", "lofts": "loft",
		"condo": "condo", "condos": "condo",
		"cottage": "cottage", "cottages": "cottage",
		"suite": "suite", "suites": "suite",
	}

	stopWords = toSet(
		"the", "and", "for", "are", "with", "this", "that", "find", "show", "search",
		"want", "need", "looking", "a", "an", "in", "at", "near", "around", "me",
		"property", "listing", "properties", "listings", "places", "place", "stay", "stays",
		"available", "availability", "please", "some", "any", "what", "which", "there",
		"have", "about", "like", "would", "could", "from", "good", "best", "book", "booking",
		"reserve", "tell", "know", "recommend", "give", "something", "anything", "where",
		"cheap", "budget", "affordable", "expensive", "luxury", "premium",
	)
)

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func isStopWord(w string) bool {
	_, ok := stopWords[w]
	return ok
}

// HasPriceSignal 消息是否带预算或高端价格词
func HasPriceSignal(message string) bool {
	lower := strings.ToLower(message)
	return containsAny(lower, budgetWords) || containsAny(lower, luxuryWords)
}

// ListingSearch 基于关键词的房源检索
type ListingSearch struct {
	store  repository.ListingStore
	limit  int
	bounds PriceBounds
}

// NewListingSearch 创建房源检索
func NewListingSearch(store repository.ListingStore, limit int, bounds PriceBounds) *ListingSearch {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	return &ListingSearch{store: store, limit: limit, bounds: bounds}
}

// Search 按消息中的关键词和价格信号查询房源，最新的在前
func (s *ListingSearch) Search(ctx context.Context, message string) ([]ListingResult, error) {
	listings, err := s.store.Search(ctx, s.Query(message))
	if err != nil {
		return nil, fmt.Errorf("search listings: %w", err)
	}

	results := make([]ListingResult, 0, len(listings))
	for _, l := range listings {
		results = append(results, toListingResult(l))
	}
	return results, nil
}

// Query 把消息转换为仓库查询条件
// 同时出现预算词和高端词时按预算处理
func (s *ListingSearch) Query(message string) *repository.ListingQuery {
	q := &repository.ListingQuery{
		Terms: SearchTerms(message),
		Limit: s.limit,
	}

	lower := strings.ToLower(message)
	switch {
	case containsAny(lower, budgetWords):
		v := s.bounds.BudgetMax
		q.PriceBelow = &v
	case containsAny(lower, luxuryWords):
		v := s.bounds.LuxuryMin
		q.PriceAbove = &v
	}
	return q
}

// SearchTerms 提取检索关键词
// 先取连续首字母大写的词组作为地点候选，再取最多 3 个长度大于 3 的非停用词
// 都没有时退化为前两个过滤后的词
func SearchTerms(message string) []string {
	words := strings.Fields(message)
	cleaned := make([]string, 0, len(words))
	for _, w := range words {
		cleaned = append(cleaned, strings.Trim(w, ".,!?;:"))
	}

	var (
		terms []string
		run   []string
	)
	flush := func() {
		if len(run) > 0 {
			terms = append(terms, strings.Join(run, " "))
			run = nil
		}
	}
	for _, w := range cleaned {
		lower := strings.ToLower(w)
		_, isNoun := propertyNouns[lower]
		if utf8.RuneCountInString(w) < 2 || isStopWord(lower) || isNoun || !startsUpper(w) {
			flush()
			continue
		}
		run = append(run, w)
	}
	flush()

	keywords := 0
	for _, w := range cleaned {
		if keywords == maxKeywordTerms {
			break
		}
		lower := strings.ToLower(w)
		if singular, ok := propertyNouns[lower]; ok {
			lower = singular
		}
		if utf8.RuneCountInString(lower) <= 3 || isStopWord(lower) || coveredBy(terms, lower) {
			continue
		}
		terms = append(terms, lower)
		keywords++
	}

	if len(terms) == 0 {
		var filtered []string
		for _, w := range cleaned {
			if utf8.RuneCountInString(w) > 2 && !isStopWord(strings.ToLower(w)) {
				filtered = append(filtered, w)
			}
			if len(filtered) == 2 {
				break
			}
		}
		if len(filtered) > 0 {
			terms = append(terms, strings.Join(filtered, " "))
		}
	}
	return terms
}

func startsUpper(w string) bool {
	r, _ := utf8.DecodeRuneInString(w)
	return unicode.IsUpper(r)
}

func coveredBy(terms []string, word string) bool {
	for _, t := range terms {
		if strings.Contains(strings.ToLower(t), word) {
			return true
		}
	}
	return false
}

func toListingResult(l *model.Listing) ListingResult {
	return ListingResult{
		ID:          l.ID,
		Title:       l.Title,
		Description: truncate(l.Description, descriptionLimit),
		Location:    l.Location,
		Country:     l.Country,
		Price:       l.Price,
		Rating:      l.AverageRating(),
		ReviewCount: len(l.Reviews),
		Image:       l.ImageURL,
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

// IsPropertyQuery 消息是否与房源相关，决定是否查询房源
func IsPropertyQuery(message string, intent Intent) bool {
	switch intent {
	case IntentSearch, IntentPricing, IntentBooking, IntentLocation, IntentAmenities:
		return true
	}
	return containsAny(strings.ToLower(message), propertyKeywords)
}

var propertyKeywords = []string{
	"property", "properties", "listing", "listings", "accommodation", "accommodations",
	"place", "places", "stay", "rental", "rentals", "hotel", "hotels", "apartment", "apartments",
	"villa", "villas", "house", "houses", "room", "rooms", "find", "search", "show", "available",
	"location", "locations", "city", "cities", "country", "countries", "price", "prices",
	"cheap", "expensive", "budget", "affordable", "near", "nearby",
}
