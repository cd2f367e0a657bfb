package query

import (
	"context"
	"fmt"

	"github.com/ecokids/ecokids-hub/internal/domain/content"
	"github.com/ecokids/ecokids-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONTENT QUERIES
// Чтение статического образовательного контента: случайный эко-совет и
// обучающие темы. Без состояния, кроме источника случайности.
// ══════════════════════════════════════════════════════════════════════════════

// TipDTO - эко-совет для главного экрана.
type TipDTO struct {
	Tip string `json:"tip"`
}

// GetRandomTipHandler возвращает случайный эко-совет.
type GetRandomTipHandler struct {
	selector *content.Selector
}

// NewGetRandomTipHandler создаёт обработчик случайного совета.
func NewGetRandomTipHandler(selector *content.Selector) *GetRandomTipHandler {
	return &GetRandomTipHandler{selector: selector}
}

// Handle выполняет запрос совета.
func (h *GetRandomTipHandler) Handle(ctx context.Context) *TipDTO {
	return &TipDTO{Tip: h.selector.RandomTip()}
}

// GetTopicQuery содержит ключ обучающей темы.
type GetTopicQuery struct {
	Key string
}

// Validate проверяет корректность параметров.
func (q GetTopicQuery) Validate() error {
	if q.Key == "" {
		return shared.NewValidationError("key", "is required")
	}
	return nil
}

// TopicDTO - обучающая тема для отображения. Неизвестные ключи дают
// заглушку, а не ошибку.
type TopicDTO struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// GetTopicHandler возвращает обучающую тему по ключу.
type GetTopicHandler struct{}

// NewGetTopicHandler создаёт обработчик обучающих тем.
func NewGetTopicHandler() *GetTopicHandler {
	return &GetTopicHandler{}
}

// Handle выполняет запрос темы.
func (h *GetTopicHandler) Handle(ctx context.Context, q GetTopicQuery) (*TopicDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("get_topic: %w", err)
	}

	topic := content.Lookup(q.Key)
	return &TopicDTO{
		Key:   q.Key,
		Title: topic.Title,
		Body:  topic.Body,
	}, nil
}
