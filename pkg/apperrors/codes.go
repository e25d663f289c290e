package apperrors

// ErrorCode - тип для кодов ошибок
type ErrorCode string

const (
	// Системные
	CodeInternalError        ErrorCode = "INTERNAL_ERROR"
	CodeExternalServiceError ErrorCode = "EXTERNAL_SERVICE_ERROR"

	// Бизнес-логика
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeAlreadyExists    ErrorCode = "ALREADY_EXISTS"
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeBadRequest       ErrorCode = "BAD_REQUEST"
	CodeConflict         ErrorCode = "CONFLICT"
	CodeInvalidStatus    ErrorCode = "INVALID_STATUS"
	CodeInvalidOperation ErrorCode = "INVALID_OPERATION"
	CodeTooManyRequests  ErrorCode = "TOO_MANY_REQUESTS"

	// Аутентификация и авторизация
	CodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	CodeForbidden          ErrorCode = "FORBIDDEN"
	CodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	CodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	CodeAccountSuspended   ErrorCode = "ACCOUNT_SUSPENDED"

	// Файлы
	CodeFileTooLarge    ErrorCode = "FILE_TOO_LARGE"
	CodeInvalidFileType ErrorCode = "INVALID_FILE_TYPE"
)
