package player

// ══════════════════════════════════════════════════════════════════════════════
// ACHIEVEMENTS (Достижения)
// Четыре фиксированных определения. Каждое - предикат над состоянием
// профиля. Предикаты независимы: порядок проверки не влияет на результат.
// ══════════════════════════════════════════════════════════════════════════════

// AchievementID представляет идентификатор достижения.
type AchievementID string

const (
	// AchievementFirstChallenge - завершён первый челлендж.
	AchievementFirstChallenge AchievementID = "first-challenge"
	// AchievementRecyclingPro - переработано 50+ единиц мусора.
	AchievementRecyclingPro AchievementID = "recycling-pro"
	// AchievementEnergySaver - завершено 5+ энергетических челленджей.
	AchievementEnergySaver AchievementID = "energy-saver"
	// AchievementPlanetProtector - набрано 1000+ эко-очков.
	AchievementPlanetProtector AchievementID = "planet-protector"
)

// AchievementDefinition описывает достижение.
type AchievementDefinition struct {
	ID        AchievementID
	Name      string
	Emoji     string
	Condition func(p *Profile) bool
}

// AchievementDefinitions возвращает все определения достижений в
// порядке их проверки.
func AchievementDefinitions() []AchievementDefinition {
	return []AchievementDefinition{
		{
			ID:        AchievementFirstChallenge,
			Name:      "First Challenge",
			Emoji:     "🎯",
			Condition: func(p *Profile) bool { return p.ChallengesCompleted >= 1 },
		},
		{
			ID:        AchievementRecyclingPro,
			Name:      "Recycling Pro",
			Emoji:     "♻️",
			Condition: func(p *Profile) bool { return p.WasteReduced >= 50 },
		},
		{
			ID:        AchievementEnergySaver,
			Name:      "Energy Saver",
			Emoji:     "⚡",
			Condition: func(p *Profile) bool { return p.ChallengeProgress[CategoryEnergy] >= 5 },
		},
		{
			ID:        AchievementPlanetProtector,
			Name:      "Planet Protector",
			Emoji:     "🌍",
			Condition: func(p *Profile) bool { return p.EcoPoints >= 1000 },
		},
	}
}

// GetAchievementDefinition возвращает определение достижения по ID.
func GetAchievementDefinition(id AchievementID) (AchievementDefinition, bool) {
	for _, def := range AchievementDefinitions() {
		if def.ID == id {
			return def, true
		}
	}
	return AchievementDefinition{}, false
}

// EvaluateAchievements проверяет предикаты всех ещё не разблокированных
// достижений против текущего состояния профиля и возвращает список
// новых разблокировок. Сам профиль не мутирует: слияние результата в
// профиль - ответственность вызывающего.
func EvaluateAchievements(p *Profile) []AchievementID {
	var unlocked []AchievementID
	for _, def := range AchievementDefinitions() {
		if p.HasAchievement(def.ID) {
			continue
		}
		if def.Condition(p) {
			unlocked = append(unlocked, def.ID)
		}
	}
	return unlocked
}
