package chatbot

import (
	"regexp"
	"strings"
)

// EntityKind 实体类型
type EntityKind string

const (
	EntityLocation     EntityKind = "location"
	EntityDates        EntityKind = "dates"
	EntityNumbers      EntityKind = "numbers"
	EntityPropertyType EntityKind = "propertyType"
	EntityAmenities    EntityKind = "amenities"
	EntityPriceRange   EntityKind = "priceRange"
)

// Entities 实体类型到匹配文本，只包含至少匹配一次的类型
type Entities map[EntityKind][]string

type entityPattern struct {
	kind  EntityKind
	re    *regexp.Regexp
	group int  // 取第几个捕获组，0 为整体
	lower bool // 统一小写
}

var entityPatterns = []entityPattern{
	{
		kind:  EntityLocation,
		re:    regexp.MustCompile(`\b(?:in|at|near|around|to|from)\s+([A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+)*)`),
		group: 1,
	},
	{
		kind: EntityDates,
		re:   regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`),
	},
	{
		kind: EntityNumbers,
		re:   regexp.MustCompile(`\b\d+\b`),
	},
	{
		kind:  EntityPropertyType,
		re:    regexp.MustCompile(`(?i)\b(apartment|house|villa|hotel|condo|cabin|studio|loft|cottage|room|suite|hut)s?\b`),
		group: 1,
		lower: true,
	},
	{
		kind:  EntityAmenities,
		re:    regexp.MustCompile(`(?i)\b(wifi|wi-fi|pool|parking|kitchen|gym|air conditioning|balcony|fireplace|hot tub|pet[- ]friendly|breakfast|washer)\b`),
		group: 1,
		lower: true,
	},
	{
		kind: EntityPriceRange,
		re:   regexp.MustCompile(`\$\s?\d+(?:,\d{3})*(?:\.\d{1,2})?`),
	},
}

// Extract 依次应用固定的正则，收集所有不重叠的匹配
// 不做任何校验，纯函数
func Extract(message string) Entities {
	entities := make(Entities)
	for _, p := range entityPatterns {
		for _, m := range p.re.FindAllStringSubmatch(message, -1) {
			v := strings.TrimSpace(m[p.group])
			if v == "" {
				continue
			}
			if p.lower {
				v = strings.ToLower(v)
			}
			entities[p.kind] = append(entities[p.kind], v)
		}
	}
	return entities
}

// Kinds 按模式顺序返回存在的实体类型
func (e Entities) Kinds() []EntityKind {
	kinds := make([]EntityKind, 0, len(e))
	for _, p := range entityPatterns {
		if len(e[p.kind]) > 0 {
			kinds = append(kinds, p.kind)
		}
	}
	return kinds
}

// First 返回某类实体的第一个匹配
func (e Entities) First(kind EntityKind) string {
	if v := e[kind]; len(v) > 0 {
		return v[0]
	}
	return ""
}
