// Package common - errors.go определяет пользовательские ошибки,
// которые используются во всех модулях сервиса.
// Каждая ошибка несёт вид (Kind) для выбора HTTP-статуса и машинный код,
// а текст показывается клиенту как есть.
package common

// Kind - категория ошибки.
type Kind int

const (
	KindInternal        Kind = iota // Неожиданная ошибка (БД, сеть)
	KindInvalid                     // Ошибка валидации, неверный переход состояния
	KindNotFound                    // Сущность не найдена
	KindUnauthenticated             // Нет сессии или она истекла
	KindForbidden                   // Нет прав
	KindTooManyRequests             // Превышен лимит попыток
)

// Error - ошибка предметной области.
type Error struct {
	Kind    Kind
	Code    string // Машинный код для клиента
	Message string // Текст для клиента (на испанском)
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Invalid создаёт ошибку валидации с произвольным кодом.
func Invalid(code, message string) *Error {
	return newError(KindInvalid, code, message)
}

// NotFound создаёт ошибку "не найдено".
func NotFound(code, message string) *Error {
	return newError(KindNotFound, code, message)
}

// Ошибки аутентификации и прав
var (
	// ErrUnauthenticated - нет токена или токен неизвестен
	ErrUnauthenticated = newError(KindUnauthenticated, "unauthenticated", "Sesión no válida")
	// ErrSessionExpired - сессия истекла
	ErrSessionExpired = newError(KindUnauthenticated, "session_expired", "La sesión expiró, inicie sesión nuevamente")
	// ErrForbidden - у пользователя нет роли admin
	ErrForbidden = newError(KindForbidden, "forbidden", "No tiene permisos para esta acción")
	// ErrInvalidCredentials - неверный email или пароль
	ErrInvalidCredentials = newError(KindUnauthenticated, "invalid_credentials", "Correo o contraseña incorrectos")
	// ErrTooManyAttempts - слишком много неудачных попыток входа
	ErrTooManyAttempts = newError(KindTooManyRequests, "too_many_attempts", "Demasiados intentos, intente más tarde")
	// ErrUserInactive - аккаунт отключён администратором
	ErrUserInactive = newError(KindForbidden, "user_inactive", "La cuenta está desactivada")
	// ErrRateLimited - слишком много запросов с одного адреса
	ErrRateLimited = newError(KindTooManyRequests, "rate_limited", "Demasiadas solicitudes")
)

// Ошибки пользователей
var (
	ErrUserNotFound        = NotFound("user_not_found", "Usuario no encontrado")
	ErrEmailTaken          = Invalid("email_taken", "El correo ya está registrado")
	ErrInvalidEmail        = Invalid("invalid_email", "Correo inválido")
	ErrWeakPassword        = Invalid("weak_password", "La contraseña debe tener al menos 8 caracteres")
	ErrNameRequired        = Invalid("name_required", "El nombre es obligatorio")
	ErrInvalidReferralCode = Invalid("invalid_referral_code", "Código de referido inválido")
	ErrSelfReferral        = Invalid("self_referral", "No puede referirse a sí mismo")
)

// Ошибки баллов
var (
	// ErrInvalidPoints - начисление должно быть положительным
	ErrInvalidPoints = Invalid("invalid_points", "La cantidad de puntos debe ser positiva")
)

// Ошибки чеков (comprobantes)
var (
	ErrReceiptNotFound         = NotFound("receipt_not_found", "Comprobante no encontrado")
	ErrReceiptAlreadyProcessed = Invalid("receipt_already_processed", "El comprobante ya fue procesado")
	ErrInvalidAmount           = Invalid("invalid_amount", "El monto debe ser mayor a cero")
	ErrInvalidFile             = Invalid("invalid_file", "El archivo debe ser una imagen o PDF válido")
	ErrFileTooLarge            = Invalid("file_too_large", "El archivo es demasiado grande")
	ErrInvalidReviewAction     = Invalid("invalid_action", "La acción debe ser aprobar o rechazar")
)

// Ошибки уровней
var (
	ErrTierNotFound = NotFound("tier_not_found", "Nivel no encontrado")
	ErrInvalidTier  = Invalid("invalid_tier", "Nombre y puntos mínimos (>= 0) son obligatorios")
)

// Ошибки призов и обменов (canjes)
var (
	ErrPrizeNotFound               = NotFound("prize_not_found", "Premio no encontrado")
	ErrInvalidPrize                = Invalid("invalid_prize", "Nombre, puntos requeridos (> 0) y stock (>= 0) son obligatorios")
	ErrPrizeInactive               = Invalid("prize_inactive", "El premio no está disponible")
	ErrPrizeOutOfStock             = Invalid("prize_out_of_stock", "El premio no tiene stock")
	ErrInsufficientPoints          = Invalid("insufficient_points", "No tiene puntos suficientes para este premio")
	ErrDuplicateRedemption         = Invalid("duplicate_redemption", "Ya canjeó este premio")
	ErrRedemptionNotAllowed        = newError(KindForbidden, "redemption_not_allowed", "Su cuenta no está habilitada para canjear")
	ErrRedemptionNotFound          = NotFound("redemption_not_found", "Canje no encontrado")
	ErrInvalidRedemptionTransition = Invalid("invalid_redemption_transition", "Cambio de estado de canje no permitido")
)

// Ошибки реферальной программы
var (
	ErrInvalidReferralConfig = Invalid("invalid_referral_config", "Porcentaje entre 0 y 100 y bono >= 0")
)
