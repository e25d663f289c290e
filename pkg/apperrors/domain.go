package apperrors

import (
	"net/http"
)

// =========================================================================
// Фабрики
// =========================================================================

// ErrNotFound - 404 для ресурса
func ErrNotFound(err error, domain, message string) *AppError {
	return Wrap(err, CodeNotFound, domain, message, http.StatusNotFound)
}

// ErrConflict - 409
func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusConflict)
}

// ErrInvalidStatus - недопустимый переход статуса (409)
func ErrInvalidStatus(domain, message string) *AppError {
	return New(CodeInvalidStatus, domain, message, http.StatusConflict)
}

// ErrInvalidOperation - 400
func ErrInvalidOperation(domain, message string) *AppError {
	return New(CodeInvalidOperation, domain, message, http.StatusBadRequest)
}

// =========================================================================
// Предопределенные ошибки
// =========================================================================

var (
	ErrInvalidCredentials = New(CodeInvalidCredentials, "auth", "Invalid email or password", http.StatusUnauthorized)
	ErrInvalidToken       = New(CodeInvalidToken, "auth", "Invalid or expired token", http.StatusUnauthorized)
	ErrUnauthenticated    = New(CodeUnauthorized, "auth", "Unauthenticated.", http.StatusUnauthorized)
	ErrAccountSuspended   = New(CodeAccountSuspended, "auth", "Account is suspended", http.StatusForbidden)
	ErrAdminOnly          = New(CodeForbidden, "auth", "This action is restricted to administrators", http.StatusForbidden)
	ErrTooManyRequests    = New(CodeTooManyRequests, "request", "Too many attempts, please slow down", http.StatusTooManyRequests)
	ErrEmailTaken         = FieldError("email", "The email has already been taken.")
	ErrWrongPassword      = FieldError("current_password", "The current password is incorrect.")

	ErrUserNotFound         = New(CodeNotFound, "user", "User not found", http.StatusNotFound)
	ErrPropertyNotFound     = New(CodeNotFound, "property", "Property not found", http.StatusNotFound)
	ErrPropertyForbidden    = New(CodeForbidden, "property", "You are not allowed to access this property", http.StatusForbidden)
	ErrPropertyLocked       = New(CodeForbidden, "property", "Only pending properties can be modified by their owner", http.StatusForbidden)
	ErrBlogPostNotFound     = New(CodeNotFound, "blog", "Blog post not found", http.StatusNotFound)
	ErrBlogPostForbidden    = New(CodeForbidden, "blog", "You are not allowed to modify this post", http.StatusForbidden)
	ErrInquiryNotFound      = New(CodeNotFound, "inquiry", "Inquiry not found", http.StatusNotFound)
	ErrInquiryForbidden     = New(CodeForbidden, "inquiry", "You are not allowed to access this inquiry", http.StatusForbidden)
	ErrConsultationNotFound = New(CodeNotFound, "consultation", "Consultation not found", http.StatusNotFound)
	ErrServiceNotFound      = New(CodeNotFound, "service", "Service not found", http.StatusNotFound)
	ErrNotificationNotFound = New(CodeNotFound, "notification", "Notification not found", http.StatusNotFound)
	ErrSubscriptionNotFound = New(CodeNotFound, "push", "Push subscription not found", http.StatusNotFound)

	ErrFileTooLarge    = New(CodeFileTooLarge, "upload", "File size exceeds the allowed limit", http.StatusUnprocessableEntity)
	ErrInvalidFileType = New(CodeInvalidFileType, "upload", "The file must be an image", http.StatusUnprocessableEntity)
	ErrUnknownCategory = FieldError("category", "The selected category is invalid.")
)
