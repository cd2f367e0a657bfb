package player

// ══════════════════════════════════════════════════════════════════════════════
// DISPLAY PROGRESS
// Прогресс-бары на главном экране используют собственную таблицу целей,
// независимую от порогов завершения сессий. Исходная игра не сводит эти
// две таблицы в одну - сохраняем их раздельными.
// ══════════════════════════════════════════════════════════════════════════════

// displayTargets - цели прогресс-баров по категориям.
var displayTargets = map[Category]int{
	CategoryRecycling: 10,
	CategoryEnergy:    8,
	CategoryWater:     6,
	CategoryWildlife:  5,
}

// DisplayTarget возвращает цель прогресс-бара для категории.
func DisplayTarget(c Category) int {
	return displayTargets[c]
}

// ProgressPercent вычисляет процент заполнения прогресс-бара:
// min(100, 100*progress/target).
func ProgressPercent(progress, target int) int {
	if target <= 0 {
		return 0
	}
	pct := progress * 100 / target
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}

// CategoryProgress - прогресс одной категории для отображения.
type CategoryProgress struct {
	Category Category `json:"category"`
	Count    int      `json:"count"`
	Target   int      `json:"target"`
	Percent  int      `json:"percent"`
}

// DisplayProgress возвращает прогресс всех категорий в фиксированном
// порядке для главного экрана.
func (p *Profile) DisplayProgress() []CategoryProgress {
	result := make([]CategoryProgress, 0, len(displayTargets))
	for _, c := range Categories() {
		target := DisplayTarget(c)
		count := p.ChallengeProgress[c]
		result = append(result, CategoryProgress{
			Category: c,
			Count:    count,
			Target:   target,
			Percent:  ProgressPercent(count, target),
		})
	}
	return result
}
