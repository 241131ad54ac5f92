package chatbot

import (
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/prompts"

	"github.com/ashwinyue/travacasa/internal/service/session"
)

const systemPersona = `You are TravaCasa AI Assistant, an expert AI assistant for a travel and accommodation platform.
You help users find properties, bookings, and travel help.
Be polite, helpful, and concise. Use emojis where appropriate to make responses engaging.`

const promptTemplate = `{{.database}}

Conversation Context:
{{.history}}

User: {{.message}}
Assistant:`

const noListingsNote = "NOTE: No properties found matching the user's query in the database. Apologize and suggest they try different search terms or browse all listings."

// Prompt 发给模型的提示词
type Prompt struct {
	System string
	Body   string
	// Message 原始用户消息
	Message string
}

// Full 拼接人设和正文，用于只接受单段文本的接口
func (p *Prompt) Full() string {
	return p.System + "\n\n" + p.Body
}

// PromptBuilder 组装提示词
type PromptBuilder struct {
	template     prompts.PromptTemplate
	historyTurns int
}

// NewPromptBuilder 创建提示词构建器，historyTurns 为带入的最近历史条数
func NewPromptBuilder(historyTurns int) *PromptBuilder {
	return &PromptBuilder{
		template:     prompts.NewPromptTemplate(promptTemplate, []string{"database", "history", "message"}),
		historyTurns: historyTurns,
	}
}

// Build 根据请求生成提示词
func (b *PromptBuilder) Build(req *GenerateRequest) (*Prompt, error) {
	history, err := b.renderHistory(req.History, req.Context)
	if err != nil {
		return nil, err
	}

	body, err := b.template.Format(map[string]any{
		"database": databaseContext(req),
		"history":  history,
		"message":  req.Message,
	})
	if err != nil {
		return nil, fmt.Errorf("format prompt: %w", err)
	}

	return &Prompt{
		System:  systemPersona,
		Body:    strings.TrimSpace(body),
		Message: req.Message,
	}, nil
}

// renderHistory 最近几轮会话加上客户端传来的上下文
func (b *PromptBuilder) renderHistory(history []session.Exchange, clientContext []any) (string, error) {
	if b.historyTurns > 0 && len(history) > b.historyTurns {
		history = history[len(history)-b.historyTurns:]
	}

	messages := make([]llms.ChatMessage, 0, len(history))
	for _, e := range history {
		switch e.Role {
		case session.RoleAssistant:
			messages = append(messages, llms.AIChatMessage{Content: e.Text})
		default:
			messages = append(messages, llms.HumanChatMessage{Content: e.Text})
		}
	}

	buf, err := llms.GetBufferString(messages, "User", "Assistant")
	if err != nil {
		return "", fmt.Errorf("render history: %w", err)
	}

	lines := make([]string, 0, len(clientContext)+1)
	if buf != "" {
		lines = append(lines, buf)
	}
	for _, c := range clientContext {
		lines = append(lines, fmt.Sprintf("- %v", c))
	}
	return strings.Join(lines, "\n"), nil
}

// databaseContext 房源检索结果块，未检索时为空
func databaseContext(req *GenerateRequest) string {
	if !req.SearchRan {
		return ""
	}
	if len(req.Listings) == 0 {
		return noListingsNote
	}

	var sb strings.Builder
	sb.WriteString("AVAILABLE PROPERTIES FROM DATABASE:\n")
	for i, l := range req.Listings {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "%d. %s\n", i+1, l.Title)
		fmt.Fprintf(&sb, "   - Location: %s, %s\n", l.Location, l.Country)
		fmt.Fprintf(&sb, "   - Price: $%s per night\n", formatPrice(l.Price))
		fmt.Fprintf(&sb, "   - Rating: %s (%d reviews)\n", l.Rating, l.ReviewCount)
		fmt.Fprintf(&sb, "   - Description: %s\n", l.Description)
		fmt.Fprintf(&sb, "   - Property ID: %s", l.ID)
	}
	sb.WriteString("\n\nIMPORTANT: Reference these actual properties when answering. Include specific details like location, price, and ratings. If user asks about a specific property, use the Property ID to help them find it.")
	return sb.String()
}

// formatPrice 整数价格不带小数
func formatPrice(p float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", p), "0"), ".")
}
