package validate_booking

import (
	validateBooking "github.com/m04kA/SMC-ActivityBookingService/internal/usecase/validate_booking"
)

// ValidateBookingRequest HTTP request model
type ValidateBookingRequest struct {
	TenantID         int64 `json:"tenantId"`
	ProductID        int64 `json:"productId"`
	ScheduleID       int64 `json:"scheduleId"`
	ParticipantCount int   `json:"participantCount"`
}

// IssueResponse одно нарушение правила или предупреждение
type IssueResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RequirementStatusResponse результат проверки одного требования
type RequirementStatusResponse struct {
	RequirementID int64  `json:"requirementId"`
	Kind          string `json:"kind"`
	Name          string `json:"name"`
	Blocking      bool   `json:"blocking"`
	CanOverride   bool   `json:"canOverride,omitempty"`
	Detail        string `json:"detail,omitempty"`
}

// RequirementsResponse требования по результатам проверки
type RequirementsResponse struct {
	Passed  []RequirementStatusResponse `json:"passed,omitempty"`
	Failed  []RequirementStatusResponse `json:"failed,omitempty"`
	Pending []RequirementStatusResponse `json:"pending,omitempty"`
}

// ValidationResponse HTTP response model
type ValidationResponse struct {
	CanBook              bool                 `json:"canBook"`
	Errors               []IssueResponse      `json:"errors,omitempty"`
	Warnings             []IssueResponse      `json:"warnings,omitempty"`
	Requirements         RequirementsResponse `json:"requirements"`
	RequiresManualReview bool                 `json:"requiresManualReview,omitempty"`
	AvailableSpots       int                  `json:"availableSpots"`
	TotalSpots           int                  `json:"totalSpots"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *ValidateBookingRequest) ToUseCaseRequest(userID int64) *validateBooking.Request {
	return &validateBooking.Request{
		TenantID:         r.TenantID,
		ProductID:        r.ProductID,
		ScheduleID:       r.ScheduleID,
		MemberID:         userID,
		ParticipantCount: r.ParticipantCount,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *validateBooking.Response) *ValidationResponse {
	out := &ValidationResponse{
		CanBook:              resp.CanBook,
		RequiresManualReview: resp.RequiresManualReview,
		AvailableSpots:       resp.AvailableSpots,
		TotalSpots:           resp.TotalSpots,
	}
	for _, issue := range resp.Errors {
		out.Errors = append(out.Errors, IssueResponse{Code: issue.Code, Message: issue.Message})
	}
	for _, issue := range resp.Warnings {
		out.Warnings = append(out.Warnings, IssueResponse{Code: issue.Code, Message: issue.Message})
	}
	out.Requirements = RequirementsResponse{
		Passed:  fromRequirementStatuses(resp.Requirements.Passed),
		Failed:  fromRequirementStatuses(resp.Requirements.Failed),
		Pending: fromRequirementStatuses(resp.Requirements.Pending),
	}
	return out
}

func fromRequirementStatuses(statuses []validateBooking.RequirementStatus) []RequirementStatusResponse {
	if len(statuses) == 0 {
		return nil
	}
	out := make([]RequirementStatusResponse, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, RequirementStatusResponse{
			RequirementID: s.RequirementID,
			Kind:          string(s.Kind),
			Name:          s.Name,
			Blocking:      s.Blocking,
			CanOverride:   s.CanOverride,
			Detail:        s.Detail,
		})
	}
	return out
}
