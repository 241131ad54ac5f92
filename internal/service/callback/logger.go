// Package callback 记录对话模型调用的 eino 回调
package callback

import (
	"context"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/ashwinyue/travacasa/internal/logger"
)

// Logger 日志回调处理器
// 实现 callbacks.Handler，错误总是记录，其余事件只在 debug 时记录
type Logger struct {
	debug bool
}

var _ callbacks.Handler = (*Logger)(nil)

// NewLogger 创建日志回调处理器
func NewLogger(debug bool) *Logger {
	return &Logger{debug: debug}
}

func runFields(info *callbacks.RunInfo) []zap.Field {
	if info == nil {
		return nil
	}
	return []zap.Field{
		zap.String("name", info.Name),
		zap.String("type", info.Type),
		zap.String("component", string(info.Component)),
	}
}

// OnStart 记录输入消息数
func (l *Logger) OnStart(ctx context.Context, info *callbacks.RunInfo, input callbacks.CallbackInput) context.Context {
	if !l.debug {
		return ctx
	}
	fields := runFields(info)
	if in := model.ConvCallbackInput(input); in != nil {
		fields = append(fields, zap.Int("messages", len(in.Messages)))
	}
	logger.Debug("chat model start", fields...)
	return ctx
}

// OnEnd 记录 token 用量
func (l *Logger) OnEnd(ctx context.Context, info *callbacks.RunInfo, output callbacks.CallbackOutput) context.Context {
	if !l.debug {
		return ctx
	}
	fields := runFields(info)
	if out := model.ConvCallbackOutput(output); out != nil && out.TokenUsage != nil {
		fields = append(fields,
			zap.Int("prompt_tokens", out.TokenUsage.PromptTokens),
			zap.Int("completion_tokens", out.TokenUsage.CompletionTokens),
		)
	}
	logger.Debug("chat model end", fields...)
	return ctx
}

// OnError 组件执行出错时调用
func (l *Logger) OnError(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
	logger.Warn("chat model error", append(runFields(info), zap.Error(err))...)
	return ctx
}

// OnStartWithStreamInput 不读取流，直接关闭
func (l *Logger) OnStartWithStreamInput(ctx context.Context, info *callbacks.RunInfo, input *schema.StreamReader[callbacks.CallbackInput]) context.Context {
	input.Close()
	return ctx
}

// OnEndWithStreamOutput 不读取流，直接关闭
func (l *Logger) OnEndWithStreamOutput(ctx context.Context, info *callbacks.RunInfo, output *schema.StreamReader[callbacks.CallbackOutput]) context.Context {
	output.Close()
	return ctx
}
