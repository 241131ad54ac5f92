package chatbot

import (
	"fmt"
	"math/rand"
	"strings"
)

// Fallback 不依赖外部服务的确定性回复
type Fallback struct {
	pick func(n int) int
}

// NewFallback 创建兜底回复，pick 返回 [0,n) 的下标，nil 时随机
func NewFallback(pick func(n int) int) *Fallback {
	if pick == nil {
		pick = rand.Intn
	}
	return &Fallback{pick: pick}
}

// NewSeededFallback 固定种子的兜底回复
func NewSeededFallback(seed int64) *Fallback {
	r := rand.New(rand.NewSource(seed))
	return NewFallback(r.Intn)
}

// Respond 有房源时列出房源，否则按意图选模板并按实体补充一句
func (f *Fallback) Respond(intent Intent, entities Entities, listings []ListingResult) string {
	if len(listings) > 0 {
		return DescribeListings(listings)
	}

	options := fallbackTemplates[intent]
	if len(options) == 0 {
		options = fallbackTemplates[IntentGeneral]
	}
	i := f.pick(len(options))
	if i < 0 || i >= len(options) {
		i = 0
	}
	return personalize(options[i], entities)
}

// Templates 某意图的候选模板
func Templates(intent Intent) []string {
	if t, ok := fallbackTemplates[intent]; ok {
		return t
	}
	return fallbackTemplates[IntentGeneral]
}

// DescribeListings 枚举房源
func DescribeListings(listings []ListingResult) string {
	var sb strings.Builder
	noun := "properties"
	if len(listings) == 1 {
		noun = "property"
	}
	fmt.Fprintf(&sb, "I found %d %s that might interest you:\n\n", len(listings), noun)
	for i, l := range listings {
		reviews := "reviews"
		if l.ReviewCount == 1 {
			reviews = "review"
		}
		fmt.Fprintf(&sb, "%d. **%s** 🏡\n", i+1, l.Title)
		fmt.Fprintf(&sb, "   📍 Location: %s, %s\n", l.Location, l.Country)
		fmt.Fprintf(&sb, "   💰 Price: $%s per night\n", formatPrice(l.Price))
		fmt.Fprintf(&sb, "   ⭐ Rating: %s (%d %s)\n", l.Rating, l.ReviewCount, reviews)
		fmt.Fprintf(&sb, "   📝 %s\n\n", l.Description)
	}
	sb.WriteString("You can view more details by visiting the property page. Would you like to know more about any specific property?")
	return sb.String()
}

func personalize(text string, entities Entities) string {
	var extra []string
	if loc := entities.First(EntityLocation); loc != "" {
		extra = append(extra, fmt.Sprintf("I see you're interested in %s. Tell me your dates and I can narrow things down.", loc))
	}
	if kind := entities.First(EntityPropertyType); kind != "" {
		extra = append(extra, fmt.Sprintf("%s %s is a great choice!", article(kind), kind))
	}
	if len(extra) == 0 {
		return text
	}
	return text + "\n\n" + strings.Join(extra, " ")
}

func article(word string) string {
	if word != "" && strings.ContainsRune("aeiou", rune(word[0])) {
		return "An"
	}
	return "A"
}

var fallbackTemplates = map[Intent][]string{
	IntentGreeting: {
		"Hello! 👋 Welcome to TravaCasa! I'm your AI travel assistant, ready to help you find the perfect accommodation for your next adventure. How can I assist you today?",
		"Hi there! 😊 Great to see you at TravaCasa. Are you looking for a place to stay, or can I help with an existing booking?",
		"Hey! Welcome to TravaCasa 🏡 Tell me where you'd like to go and I'll help you find a great stay.",
	},
	IntentBooking: {
		"I'd be happy to help you with booking! 🏨 Here's how to make a reservation:\n\n1. Browse our available properties\n2. Select your preferred dates\n3. Choose your desired property\n4. Complete the booking process\n5. Receive confirmation\n\nWould you like me to help you find properties in a specific location or with particular amenities?",
		"Let's get you booked! 📅 Pick a property, choose your dates on the listing page and confirm. Which destination do you have in mind?",
		"Great question about availability! 📅 To check dates:\n\n• **Real-time availability** - Updated instantly\n• **Flexible dates** - Find the best rates\n• **Seasonal availability** - Peak and off-season options\n• **Last-minute bookings** - Often available\n• **Extended stays** - Weekly/monthly discounts\n\nWhat dates are you considering for your stay?",
	},
	IntentSearch: {
		"Great question about properties! 🏡 TravaCasa offers diverse accommodations:\n\n• **Apartments & Condos** - Modern city living\n• **Houses & Villas** - Spacious family options\n• **Hotels & Resorts** - Full-service luxury\n• **Unique stays** - Boutique experiences\n• **Budget-friendly options** - Affordable comfort\n\nWhat type of property and location interests you most?",
		"I can help you search! 🔍 Tell me a city or country, your budget and the kind of place you like, and I'll look for matching stays.",
	},
	IntentPricing: {
		"Property prices vary based on several factors 💰:\n\n• **Location & Demand** - City center vs. suburbs\n• **Property Type & Size** - Studio to luxury villa\n• **Seasonal Rates** - Peak vs. off-season\n• **Amenities Included** - Pool, kitchen, parking\n• **Length of Stay** - Discounts for longer stays\n\nWhat's your budget range? I can help you find the best value options!",
		"Looking for the best value? 💡 Booking early, avoiding weekends and staying longer usually lowers the nightly rate. What's your budget per night?",
	},
	IntentCancellation: {
		"I understand you need help with changes to your booking 📋:\n\n• **Free cancellation** - Usually 24-48 hours before\n• **Partial refund** - Depends on timing and property\n• **Full refund** - Available for eligible bookings\n• **Modification options** - Date or guest changes\n\nPlease check your booking confirmation email for specific policy details, or contact our support team for personalized assistance.",
		"Cancellation and refund rules depend on each property's policy 📋. You'll find them on your booking confirmation. Do you want help finding it?",
	},
	IntentSupport: {
		"I'm here to help! 💪 I can assist you with:\n\n• **Finding properties** - Search by location, price, amenities\n• **Booking assistance** - Step-by-step guidance\n• **Pricing information** - Compare rates and deals\n• **Cancellation policies** - Understanding terms\n• **Travel recommendations** - Local tips and attractions\n\nWhat would you like help with specifically?",
		"You can reach us anytime! 📞 Contact options:\n\n• **Live chat** - Right here with me!\n• **24/7 support** - Always available\n• **Email support** - Detailed inquiries\n• **Phone support** - Speak with our team\n• **Property managers** - Local assistance\n• **Emergency support** - Urgent situations\n\nI'm here to help immediately - what do you need assistance with?",
		"Your safety is our priority! 🔒 TravaCasa ensures:\n\n• **Enhanced cleaning** - Professional sanitization\n• **Health protocols** - Following local guidelines\n• **Secure bookings** - Protected payment systems\n• **Verified properties** - Quality-checked accommodations\n• **24/7 support** - Always available for emergencies\n• **Safe neighborhoods** - Carefully selected locations\n\nWhat safety or cleanliness questions do you have?",
	},
	IntentAmenities: {
		"Our properties offer fantastic amenities! 🌟 Common features include:\n\n• **WiFi & Tech** - High-speed internet, smart TVs\n• **Kitchen facilities** - Full or kitchenette options\n• **Parking** - Free or paid options available\n• **Pool & Fitness** - Recreation facilities\n• **Pet-friendly** - Many properties welcome pets\n\nAre you looking for specific amenities or features?",
		"Each listing page shows its full amenity list 🛎️. Tell me what matters most to you, like a pool, parking or a kitchen, and I'll keep it in mind.",
	},
	IntentLocation: {
		"We have properties in amazing locations worldwide! 🌍 Popular destinations include:\n\n• **Beach destinations** 🏖️ - Coastal retreats\n• **Mountain retreats** 🏔️ - Scenic escapes\n• **City centers** 🏙️ - Urban experiences\n• **Countryside** 🌾 - Peaceful getaways\n\nWhich type of location or specific destination interests you most?",
		"Where would you like to go? 🗺️ I can suggest stays by city, country or the kind of scenery you enjoy.",
	},
	IntentTravelPlanning: {
		"I'm excited to help you plan your trip! 🌍 I can assist with:\n\n• Finding the perfect accommodation\n• Destination recommendations\n• Booking guidance\n• Travel tips and advice\n\nWhat kind of travel experience are you looking for?",
		"Planning a trip? ✈️ Tell me your destination, how many days you have and your budget, and I'll help you put together a plan.",
	},
	IntentReviews: {
		"Reviews help you make informed decisions! ⭐ Here's what to look for:\n\n• **Guest ratings** - Overall satisfaction scores\n• **Detailed reviews** - Real guest experiences\n• **Recent feedback** - Up-to-date information\n\nWould you like help finding highly-rated properties in your preferred location?",
		"Every listing shows its average rating and guest reviews ⭐. Want me to look for the best-rated stays somewhere specific?",
	},
	IntentGeneral: {
		"Thank you for your message! I'm your TravaCasa AI assistant, ready to help with any questions about properties, bookings, travel planning, or our services. Could you please provide more details about what you're looking for? ✈️🏨",
		"I'm here to answer your questions! 🤔 I can help with property details, the booking process and travel planning. What specific information are you looking for?",
	},
}
