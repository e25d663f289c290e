package contextkeys

// Используем кастомный тип, чтобы избежать коллизий
type contextKey string

const (
	// DBContextKey - ключ, по которому хранится *gorm.DB
	DBContextKey = contextKey("db")

	// Ключи gin.Context, заполняемые auth middleware
	UserIDKey   = contextKey("userID")
	RoleKey     = contextKey("role")
	TokenIDKey  = contextKey("tokenID")
	TokenExpKey = contextKey("tokenExp")

	// CommitHooksKey - действия, отложенные до COMMIT транзакции outbox
	CommitHooksKey = contextKey("commitHooks")
)
