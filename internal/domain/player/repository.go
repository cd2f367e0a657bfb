package player

import (
	"context"
	"errors"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Контракты для работы с хранилищем. Реализации находятся в
// infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// ErrKeyNotFound - ключ отсутствует в key-value хранилище.
var ErrKeyNotFound = errors.New("player: key not found")

// KeyValue - внешний интерфейс персистентности: синхронное локальное
// строковое хранилище (Redis в продакшене, память в тестах).
type KeyValue interface {
	// Get возвращает значение по ключу или ErrKeyNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set сохраняет значение по ключу.
	Set(ctx context.Context, key, value string) error
}

// Store - единственная граница персистентности профиля.
type Store interface {
	// Load читает профиль игрока. Отсутствующие или повреждённые данные
	// не являются ошибкой: возвращается свежий профиль по умолчанию.
	Load(ctx context.Context, playerKey string) (*Profile, error)

	// Save сериализует и сохраняет полный профиль.
	Save(ctx context.Context, playerKey string, p *Profile) error
}
