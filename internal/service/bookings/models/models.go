package models

import (
	"errors"
	"time"

	"github.com/fairwaylabs/GLM-BookingService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Request модели

// CancelBookingRequest запрос на отмену бронирования
type CancelBookingRequest struct {
	AmateurID int64  `json:"amateurId"`
	Reason    string `json:"reason,omitempty"`
}

// GetAmateurBookingsRequest запрос на получение бронирований любителя
type GetAmateurBookingsRequest struct {
	AmateurID int64   `json:"amateurId"`
	Status    *string `json:"status,omitempty"`
}

// GetProfessionalBookingsRequest запрос на получение бронирований профессионала
type GetProfessionalBookingsRequest struct {
	ProfessionalID int64      `json:"professionalId"`
	CourseID       *int64     `json:"courseId,omitempty"`   // Фильтр по полю (опционально)
	StartDate      *time.Time `json:"startDate,omitempty"`  // Начало периода (опционально)
	EndDate        *time.Time `json:"endDate,omitempty"`    // Конец периода (опционально)
	Status         *string    `json:"status,omitempty"`     // Фильтр по статусу (опционально)
	IncludeClosed  bool       `json:"includeClosed,omitempty"`
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetProfessionalBookingsRequest) ToDomainFilter() (domain.ProfessionalBookingsFilter, error) {
	filter := domain.ProfessionalBookingsFilter{
		ProfessionalID: r.ProfessionalID,
		CourseID:       r.CourseID,
		StartDate:      r.StartDate,
		EndDate:        r.EndDate,
		IncludeClosed:  r.IncludeClosed,
	}

	if r.Status != nil {
		status, err := ToDomainBookingStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID              int64   `json:"id"`
	AmateurID       int64   `json:"amateurId"`
	ProfessionalID  int64   `json:"professionalId"`
	SlotID          int64   `json:"slotId"`
	CourseID        int64   `json:"courseId"`
	LessonDate      string  `json:"lessonDate"` // "2026-04-18"
	StartTime       string  `json:"startTime"`  // "10:00"
	Players         int     `json:"players"`
	AmountMinor     int64   `json:"amountMinor"`
	Currency        string  `json:"currency"`
	SpecialRequests *string `json:"specialRequests,omitempty"`

	PaymentTransactionID string `json:"paymentTransactionId"`
	PaymentStatus        string `json:"paymentStatus"`

	Status     string  `json:"status"`
	AdminNotes *string `json:"adminNotes,omitempty"`

	ProposedDate      *string `json:"proposedDate,omitempty"`
	ProposedStartTime *string `json:"proposedStartTime,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// ValidationRecordResponse запись аудита решения администратора
type ValidationRecordResponse struct {
	ID                   int64     `json:"id"`
	BookingID            int64     `json:"bookingId"`
	AdminID              int64     `json:"adminId"`
	Decision             string    `json:"decision"`
	Notes                string    `json:"notes,omitempty"`
	AlternativeDate      *string   `json:"alternativeDate,omitempty"`
	AlternativeStartTime *string   `json:"alternativeStartTime,omitempty"`
	CreatedAt            time.Time `json:"createdAt"`
}

// ValidationHistoryResponse история решений по бронированию
type ValidationHistoryResponse struct {
	Records []ValidationRecordResponse `json:"records"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:                   b.ID,
		AmateurID:            b.AmateurID,
		ProfessionalID:       b.ProfessionalID,
		SlotID:               b.SlotID,
		CourseID:             b.CourseID,
		LessonDate:           b.LessonDate.Format(domain.DateFormat),
		StartTime:            b.StartTime.String(),
		Players:              b.Players,
		AmountMinor:          b.AmountMinor,
		Currency:             b.Currency,
		SpecialRequests:      b.SpecialRequests,
		PaymentTransactionID: b.PaymentTransactionID,
		PaymentStatus:        string(b.PaymentStatus),
		Status:               string(b.Status),
		AdminNotes:           b.AdminNotes,
		CreatedAt:            b.CreatedAt,
		UpdatedAt:            b.UpdatedAt,
	}

	if b.ProposedDate != nil {
		proposedDate := b.ProposedDate.Format(domain.DateFormat)
		resp.ProposedDate = &proposedDate
	}
	if b.ProposedStartTime != nil {
		proposedTime := b.ProposedStartTime.String()
		resp.ProposedStartTime = &proposedTime
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}
	for _, b := range bookings {
		resp.Bookings = append(resp.Bookings, *FromDomainBooking(b))
	}
	return resp
}

// FromDomainValidationRecords конвертирует записи аудита в DTO
func FromDomainValidationRecords(records []*domain.AdminValidationRecord) *ValidationHistoryResponse {
	resp := &ValidationHistoryResponse{
		Records: make([]ValidationRecordResponse, 0, len(records)),
	}
	for _, rec := range records {
		item := ValidationRecordResponse{
			ID:        rec.ID,
			BookingID: rec.BookingID,
			AdminID:   rec.AdminID,
			Decision:  string(rec.Decision),
			Notes:     rec.Notes,
			CreatedAt: rec.CreatedAt,
		}
		if rec.AlternativeDate != nil {
			altDate := rec.AlternativeDate.Format(domain.DateFormat)
			item.AlternativeDate = &altDate
		}
		if rec.AlternativeStartTime != nil {
			altTime := rec.AlternativeStartTime.String()
			item.AlternativeStartTime = &altTime
		}
		resp.Records = append(resp.Records, item)
	}
	return resp
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	switch domain.BookingStatus(status) {
	case domain.StatusPendingAdminValidation,
		domain.StatusConfirmed,
		domain.StatusRejected,
		domain.StatusAlternativeProposed,
		domain.StatusAlternativeAccepted,
		domain.StatusAlternativeDeclined,
		domain.StatusCancelled,
		domain.StatusRefunded:
		return domain.BookingStatus(status), nil
	default:
		return "", ErrInvalidStatus
	}
}
