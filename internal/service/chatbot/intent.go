package chatbot

import (
	"strings"

	"github.com/ashwinyue/travacasa/internal/service/session"
)

// Intent 用户请求的粗粒度类别
type Intent string

const (
	IntentGreeting       Intent = "greeting"
	IntentBooking        Intent = "booking"
	IntentSearch         Intent = "search"
	IntentPricing        Intent = "pricing"
	IntentCancellation   Intent = "cancellation"
	IntentSupport        Intent = "support"
	IntentAmenities      Intent = "amenities"
	IntentLocation       Intent = "location"
	IntentTravelPlanning Intent = "travel_planning"
	IntentReviews        Intent = "reviews"
	IntentGeneral        Intent = "general"
)

// intentRule 一个意图的关键词和追问词
// continuations 仅对 booking/search/pricing 生效
type intentRule struct {
	intent        Intent
	keywords      []string
	continuations []string
}

// intentRules 按检查顺序排列，计数相同时靠前的胜出
var intentRules = []intentRule{
	{
		intent:   IntentGreeting,
		keywords: []string{"hello", "hi", "hey", "good morning", "good afternoon", "good evening", "greetings"},
	},
	{
		intent:        IntentBooking,
		keywords:      []string{"book", "reserve", "reservation", "check in", "check-in", "checkout", "availability", "calendar"},
		continuations: []string{"yes", "yeah", "sure", "ok", "okay", "confirm", "proceed", "go ahead"},
	},
	{
		intent: IntentSearch,
		keywords: []string{"find", "search", "show", "looking for", "apartment", "villa", "house",
			"property", "properties", "listing", "accommodation", "place to stay"},
		continuations: []string{"yes", "more", "other", "another", "else", "similar", "next"},
	},
	{
		intent:        IntentPricing,
		keywords:      []string{"price", "cost", "cheap", "budget", "affordable", "expensive", "luxury", "how much", "per night"},
		continuations: []string{"yes", "compare", "cheaper", "lower", "higher", "more", "difference"},
	},
	{
		intent:   IntentCancellation,
		keywords: []string{"cancel", "refund", "change my booking", "modify"},
	},
	{
		intent: IntentSupport,
		keywords: []string{"help", "support", "assistance", "contact", "problem", "issue", "question",
			"phone", "email", "safety", "security"},
	},
	{
		intent: IntentAmenities,
		keywords: []string{"amenities", "amenity", "wifi", "pool", "parking", "kitchen", "gym",
			"pet-friendly", "air conditioning", "features", "facilities"},
	},
	{
		intent:   IntentLocation,
		keywords: []string{"where", "location", "destination", "city", "country", "nearby"},
	},
	{
		intent:   IntentTravelPlanning,
		keywords: []string{"travel", "trip", "vacation", "holiday", "itinerary", "planning", "plan my"},
	},
	{
		intent:   IntentReviews,
		keywords: []string{"review", "rating", "feedback", "rated", "stars"},
	},
}

// Classify 按关键词命中数选择意图，未命中返回 general
// history 中最近一条带意图的记录为 booking/search/pricing 且消息包含对应追问词时，沿用上一意图
func Classify(message string, history []session.Exchange) Intent {
	lower := strings.ToLower(message)

	if prev, ok := lastIntent(history); ok {
		for _, rule := range intentRules {
			if rule.intent == prev && containsAny(lower, rule.continuations) {
				return prev
			}
		}
	}

	best, bestCount := IntentGeneral, 0
	for _, rule := range intentRules {
		count := 0
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				count++
			}
		}
		if count > bestCount {
			best, bestCount = rule.intent, count
		}
	}
	return best
}

func lastIntent(history []session.Exchange) (Intent, bool) {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Intent != "" {
			return Intent(history[i].Intent), true
		}
	}
	return "", false
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
