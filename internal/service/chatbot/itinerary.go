package chatbot

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const maxItineraryDays = 14

var (
	tripDaysPattern        = regexp.MustCompile(`(?i)\b(\d+)\s*-?\s*days?\b`)
	tripDestinationPattern = regexp.MustCompile(`(?i)\bto\s+([a-z][a-z\s]*)`)
)

// TripDetails 从消息中识别的行程天数和目的地
type TripDetails struct {
	Days        int
	Destination string
}

// Complete 天数和目的地都已识别
func (t TripDetails) Complete() bool {
	return t.Days > 0 && t.Destination != ""
}

// ExtractTripDetails 识别 "3 days" / "3-day" 和 "to <destination>"
// 已抽取的地点实体优先于 "to" 之后的短语
func ExtractTripDetails(message string, entities Entities) TripDetails {
	var trip TripDetails

	if m := tripDaysPattern.FindStringSubmatch(message); m != nil {
		if days, err := strconv.Atoi(m[1]); err == nil {
			trip.Days = days
		}
	}

	if loc := entities.First(EntityLocation); loc != "" {
		trip.Destination = loc
		return trip
	}
	if m := tripDestinationPattern.FindStringSubmatch(message); m != nil {
		var words []string
		for _, w := range strings.Fields(m[1]) {
			if isStopWord(strings.ToLower(w)) {
				break
			}
			words = append(words, w)
		}
		trip.Destination = strings.Join(words, " ")
	}
	return trip
}

// GenerateItinerary 按天生成行程模板和预算估计
// 超过两周时按两周生成
func GenerateItinerary(destination string, days int) string {
	if days > maxItineraryDays {
		days = maxItineraryDays
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🗺️ %d-Day Travel Itinerary for %s\n\n", days, destination)
	for i := 1; i <= days; i++ {
		fmt.Fprintf(&sb, "Day %d:\n", i)
		sb.WriteString("• Morning: Local sightseeing\n")
		sb.WriteString("• Afternoon: Cultural experience\n")
		sb.WriteString("• Evening: Food & leisure\n")
		sb.WriteString("• Tip: Use public transport to save money\n\n")
	}
	fmt.Fprintf(&sb, "💰 Estimated Budget: ₹%d – ₹%d", days*4000, days*7000)
	return sb.String()
}
