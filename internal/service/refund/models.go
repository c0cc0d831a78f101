package refund

import (
	"time"

	"github.com/m04kA/SMC-ActivityBookingService/internal/domain"
)

// Input входные данные расчёта возврата при отмене
type Input struct {
	AmountPaid            float64
	ActivityDateTime      time.Time
	CancellationTime      time.Time
	IsWeatherCancellation bool

	// Уже разрешённая политика (см. ResolvePolicy); nil - применяется
	// дефолтная лестница >=48ч/100%, >=24ч/50%, иначе 0%
	Policy *domain.CancellationPolicy
}

// Result результат расчёта возврата
type Result struct {
	RefundAmount  float64
	RefundPercent float64
	FeeAmount     float64

	// Применённая ступень лестницы; nil при погодной отмене или когда
	// ни одна ступень не подошла (возврат 0%)
	TierApplied *domain.RefundTier

	WeatherApplied bool
}

// NoShowResult результат расчёта штрафа за неявку
type NoShowResult struct {
	FeePercent   float64
	FeeAmount    float64
	RefundAmount float64
}

// RescheduleOption альтернатива возврату: перенос брони за фиксированный
// процент от стоимости. Выбор переноса - отдельное действие вызывающего,
// движок не применяет его автоматически.
type RescheduleOption struct {
	FeePercent float64
	FeeAmount  float64
}
