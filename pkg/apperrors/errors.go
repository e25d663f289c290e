package apperrors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError - основная структура ошибки приложения
type AppError struct {
	Code     ErrorCode         `json:"code"`
	Domain   string            `json:"-"`
	Message  string            `json:"message"`
	Fields   map[string]string `json:"errors,omitempty"` // ошибки валидации по полям
	Details  interface{}       `json:"details,omitempty"`
	Err      error             `json:"-"`
	HTTPCode int               `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s:%s] %s (%v)", e.Domain, e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Domain, e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New - базовый конструктор
func New(code ErrorCode, domain, message string, httpCode int) *AppError {
	return &AppError{
		Code:     code,
		Domain:   domain,
		Message:  message,
		HTTPCode: httpCode,
	}
}

// Wrap - оборачивает существующую ошибку в AppError
func Wrap(err error, code ErrorCode, domain, message string, httpCode int) *AppError {
	return &AppError{
		Code:     code,
		Domain:   domain,
		Message:  message,
		Err:      err,
		HTTPCode: httpCode,
	}
}

// WithDetails возвращает копию: предопределенные ошибки являются общими переменными
func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

func (e *AppError) WithError(err error) *AppError {
	cp := *e
	cp.Err = err
	return &cp
}

// WithField добавляет ошибку поля (ответ 422 с картой errors)
func (e *AppError) WithField(field, message string) *AppError {
	cp := *e
	cp.Fields = make(map[string]string, len(e.Fields)+1)
	for k, v := range e.Fields {
		cp.Fields[k] = v
	}
	cp.Fields[field] = message
	return &cp
}

// MarshalJSON - формат ответа: {"message": ..., "code": ..., "errors": {...}}
func (e *AppError) MarshalJSON() ([]byte, error) {
	type alias struct {
		Message string            `json:"message"`
		Code    ErrorCode         `json:"code"`
		Errors  map[string]string `json:"errors,omitempty"`
		Details interface{}       `json:"details,omitempty"`
	}
	return json.Marshal(&alias{
		Message: e.Message,
		Code:    e.Code,
		Errors:  e.Fields,
		Details: e.Details,
	})
}

func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// --- ОБЩИЕ ХЕЛПЕРЫ ---

// InternalError оборачивает неизвестную системную ошибку
func InternalError(err error) *AppError {
	return Wrap(err, CodeInternalError, "system", "Internal server error", http.StatusInternalServerError)
}

// ValidationError создает ошибку валидации (422) с картой "поле -> сообщение"
func ValidationError(fields map[string]string) *AppError {
	e := New(CodeValidationFailed, "validation", "The given data was invalid.", http.StatusUnprocessableEntity)
	e.Fields = fields
	return e
}

// FieldError - ошибка валидации одного поля
func FieldError(field, message string) *AppError {
	return ValidationError(map[string]string{field: message})
}

func NewUnauthorizedError(message string) *AppError {
	return New(CodeUnauthorized, "auth", message, http.StatusUnauthorized)
}

func NewForbiddenError(message string) *AppError {
	return New(CodeForbidden, "auth", message, http.StatusForbidden)
}

// NewBadRequestError создает ошибку 400 (неразбираемый запрос)
func NewBadRequestError(message string) *AppError {
	return New(CodeBadRequest, "request", message, http.StatusBadRequest)
}
