// Package player содержит доменную модель игрока EcoKids Adventure.
// Это ядро бизнес-логики - здесь нет внешних зависимостей.
package player

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// EcoPoints представляет эко-очки игрока - единственную валюту прогрессии.
type EcoPoints int

// IsValid проверяет, что количество очков неотрицательное.
func (p EcoPoints) IsValid() bool {
	return p >= 0
}

// Add складывает очки.
func (p EcoPoints) Add(delta EcoPoints) EcoPoints {
	return p + delta
}

// Level представляет уровень игрока, вычисляемый из эко-очков.
type Level int

// PointsPerLevel - количество очков на один уровень.
const PointsPerLevel = 100

// CalculateLevel вычисляет уровень на основе эко-очков.
// Формула: floor(points/100) + 1. Новый игрок начинает с 1 уровня.
func CalculateLevel(points EcoPoints) Level {
	if points < 0 {
		return 1
	}
	return Level(points/PointsPerLevel) + 1
}

// Category представляет категорию челленджа.
type Category string

const (
	// CategoryRecycling - сортировка мусора (drag-and-drop).
	CategoryRecycling Category = "recycling"
	// CategoryEnergy - поиск утечек энергии (клики).
	CategoryEnergy Category = "energy"
	// CategoryWater - устранение протечек воды (клики).
	CategoryWater Category = "water"
	// CategoryWildlife - подбор среды обитания для животных (drag-and-drop).
	CategoryWildlife Category = "wildlife"
)

// Categories возвращает все категории в фиксированном порядке.
func Categories() []Category {
	return []Category{CategoryRecycling, CategoryEnergy, CategoryWater, CategoryWildlife}
}

// IsValid проверяет, что категория известна.
func (c Category) IsValid() bool {
	switch c {
	case CategoryRecycling, CategoryEnergy, CategoryWater, CategoryWildlife:
		return true
	default:
		return false
	}
}

// String возвращает строковое представление категории.
func (c Category) String() string {
	return string(c)
}

// Производные счётчики: завершение конкретных категорий двигает
// дополнительную статистику с фиксированными дельтами. Константы взяты
// из исходных правил игры и не обобщаются на другие категории.
const (
	// WasteReducedPerRecycling - сколько единиц мусора засчитывается
	// за один завершённый челлендж сортировки.
	WasteReducedPerRecycling = 6

	// TreesPlantedPerWildlife - сколько деревьев засчитывается за один
	// завершённый челлендж дикой природы.
	TreesPlantedPerWildlife = 2
)

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidPoints - невалидное (отрицательное) количество очков.
	ErrInvalidPoints = errors.New("player: points must be non-negative")

	// ErrInvalidCategory - неизвестная категория челленджа.
	ErrInvalidCategory = errors.New("player: unknown challenge category")

	// ErrProfileNotFound - профиль не найден в хранилище.
	ErrProfileNotFound = errors.New("player: profile not found")
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: PROFILE
// ══════════════════════════════════════════════════════════════════════════════

// Profile - долговременное состояние игрока. Один профиль на игрока,
// все мутации проходят через методы агрегата, чтобы сохранять инварианты:
// уровень всегда равен CalculateLevel(очки), достижения только добавляются,
// счётчики неотрицательные.
type Profile struct {
	// EcoPoints - текущее количество эко-очков. Монотонно растёт,
	// кроме явного сброса администратором.
	EcoPoints EcoPoints

	// Level - кэш производного уровня. Пересчитывается при каждой
	// мутации очков и при загрузке из хранилища.
	Level Level

	// ChallengesCompleted - сколько челленджей завершено (все категории).
	ChallengesCompleted int

	// TreesPlanted - производный счётчик (категория wildlife).
	TreesPlanted int

	// WasteReduced - производный счётчик (категория recycling).
	WasteReduced int

	// achievements - множество разблокированных достижений.
	// Только растёт, никогда не уменьшается.
	achievements map[AchievementID]struct{}

	// ChallengeProgress - количество завершений по каждой категории.
	// Ключи фиксированы: четыре категории.
	ChallengeProgress map[Category]int

	// UpdatedAt - время последней мутации.
	UpdatedAt time.Time
}

// NewProfile создаёт профиль нового игрока со стартовыми значениями.
func NewProfile() *Profile {
	return &Profile{
		EcoPoints:           0,
		Level:               1,
		ChallengesCompleted: 0,
		TreesPlanted:        0,
		WasteReduced:        0,
		achievements:        make(map[AchievementID]struct{}),
		ChallengeProgress: map[Category]int{
			CategoryRecycling: 0,
			CategoryEnergy:    0,
			CategoryWater:     0,
			CategoryWildlife:  0,
		},
		UpdatedAt: time.Now().UTC(),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS (Business Logic)
// ══════════════════════════════════════════════════════════════════════════════

// AddPoints добавляет очки и пересчитывает уровень.
// Отрицательная дельта запрещена: очки монотонно растут.
func (p *Profile) AddPoints(delta EcoPoints) error {
	if delta < 0 {
		return ErrInvalidPoints
	}

	p.EcoPoints = p.EcoPoints.Add(delta)
	p.Level = CalculateLevel(p.EcoPoints)
	p.UpdatedAt = time.Now().UTC()

	return nil
}

// RecordChallenge фиксирует завершение челленджа: общий счётчик,
// счётчик категории и производная статистика конкретных категорий.
func (p *Profile) RecordChallenge(category Category) error {
	if !category.IsValid() {
		return ErrInvalidCategory
	}

	p.ChallengesCompleted++
	p.ChallengeProgress[category]++

	switch category {
	case CategoryRecycling:
		p.WasteReduced += WasteReducedPerRecycling
	case CategoryWildlife:
		p.TreesPlanted += TreesPlantedPerWildlife
	}

	p.UpdatedAt = time.Now().UTC()
	return nil
}

// HasAchievement проверяет, разблокировано ли достижение.
func (p *Profile) HasAchievement(id AchievementID) bool {
	_, ok := p.achievements[id]
	return ok
}

// Unlock добавляет достижение в профиль. Повторная разблокировка -
// безопасный no-op, достижения никогда не удаляются.
func (p *Profile) Unlock(id AchievementID) {
	if p.achievements == nil {
		p.achievements = make(map[AchievementID]struct{})
	}
	p.achievements[id] = struct{}{}
	p.UpdatedAt = time.Now().UTC()
}

// Achievements возвращает отсортированный список разблокированных
// достижений. Порядок стабилен для сериализации и сравнения.
func (p *Profile) Achievements() []AchievementID {
	ids := make([]AchievementID, 0, len(p.achievements))
	for id := range p.achievements {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// SetAchievements заменяет множество достижений. Используется только
// при восстановлении профиля из хранилища.
func (p *Profile) SetAchievements(ids []AchievementID) {
	p.achievements = make(map[AchievementID]struct{}, len(ids))
	for _, id := range ids {
		p.achievements[id] = struct{}{}
	}
}

// Normalize восстанавливает инварианты после загрузки из хранилища:
// пересчитывает уровень, поднимает отрицательные счётчики до нуля и
// достраивает отсутствующие ключи категорий.
func (p *Profile) Normalize() {
	if p.EcoPoints < 0 {
		p.EcoPoints = 0
	}
	p.Level = CalculateLevel(p.EcoPoints)

	if p.ChallengesCompleted < 0 {
		p.ChallengesCompleted = 0
	}
	if p.TreesPlanted < 0 {
		p.TreesPlanted = 0
	}
	if p.WasteReduced < 0 {
		p.WasteReduced = 0
	}

	if p.achievements == nil {
		p.achievements = make(map[AchievementID]struct{})
	}
	if p.ChallengeProgress == nil {
		p.ChallengeProgress = make(map[Category]int, 4)
	}
	for _, c := range Categories() {
		if p.ChallengeProgress[c] < 0 {
			p.ChallengeProgress[c] = 0
		}
		if _, ok := p.ChallengeProgress[c]; !ok {
			p.ChallengeProgress[c] = 0
		}
	}
}

// Reset возвращает профиль к стартовому состоянию. Единственная
// операция, уменьшающая очки и очищающая достижения.
func (p *Profile) Reset() {
	fresh := NewProfile()
	*p = *fresh
}

// String возвращает строковое представление профиля для логирования.
func (p *Profile) String() string {
	return fmt.Sprintf(
		"Profile{Points: %d, Level: %d, Challenges: %d, Achievements: %d}",
		p.EcoPoints, p.Level, p.ChallengesCompleted, len(p.achievements),
	)
}

// Clone создаёт глубокую копию профиля.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}

	clone := *p
	clone.achievements = make(map[AchievementID]struct{}, len(p.achievements))
	for id := range p.achievements {
		clone.achievements[id] = struct{}{}
	}
	clone.ChallengeProgress = make(map[Category]int, len(p.ChallengeProgress))
	for c, n := range p.ChallengeProgress {
		clone.ChallengeProgress[c] = n
	}
	return &clone
}
