// Package money содержит хелперы для денежной арифметики.
//
// Все суммы в системе хранятся как float64 и округляются до 2 знаков
// ровно один раз - в точке вычисления производной величины (налога,
// скидки, возврата). Повторное выведение компонентов вычитанием уже
// округлённых значений запрещено, иначе накапливается дрейф в центах.
package money

import "math"

// Round2 округляет сумму до 2 знаков после запятой (half-up)
func Round2(amount float64) float64 {
	return math.Floor(amount*100+0.5) / 100
}

// Percent вычисляет percent% от amount с округлением half-up до цента
func Percent(amount, percent float64) float64 {
	return Round2(amount * percent / 100)
}

// ClampPercent ограничивает процент диапазоном [0, 100]
func ClampPercent(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
