package quote_price

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ActivityBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-ActivityBookingService/internal/api/middleware"
	quotePrice "github.com/m04kA/SMC-ActivityBookingService/internal/usecase/quote_price"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgInvalidInput       = "некорректные параметры запроса"
	msgTenantNotFound     = "оператор не найден"
	msgProductNotFound    = "продукт не найден"
	msgScheduleNotFound   = "расписание не найдено"
)

type Handler struct {
	useCase QuotePriceUseCase
	logger  Logger
}

func NewHandler(useCase QuotePriceUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/pricing/quote
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req QuotePriceRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /pricing/quote - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /pricing/quote - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(userID))
	if err != nil {
		switch {
		case errors.Is(err, quotePrice.ErrInvalidInput):
			h.logger.Warn("POST /pricing/quote - Invalid input: user_id=%d, error=%v", userID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, quotePrice.ErrTenantNotFound):
			h.logger.Warn("POST /pricing/quote - Tenant not found: tenant_id=%d", req.TenantID)
			handlers.RespondNotFound(w, msgTenantNotFound)

		case errors.Is(err, quotePrice.ErrProductNotFound):
			h.logger.Warn("POST /pricing/quote - Product not found: product_id=%d", req.ProductID)
			handlers.RespondNotFound(w, msgProductNotFound)

		case errors.Is(err, quotePrice.ErrScheduleNotFound):
			h.logger.Warn("POST /pricing/quote - Schedule not found: tenant_id=%d", req.TenantID)
			handlers.RespondNotFound(w, msgScheduleNotFound)

		default:
			h.logger.Error("POST /pricing/quote - Failed to compute quote: user_id=%d, product_id=%d, error=%v",
				userID, req.ProductID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /pricing/quote - Quote computed: user_id=%d, product_id=%d, total=%.2f",
		userID, req.ProductID, result.Pricing.TotalAmount)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
