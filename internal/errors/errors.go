package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType тип ошибки
type ErrorType string

const (
	// ErrorTypeValidation ошибка ввода, исправляется пользователем
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypePayment отказ или сбой платежного шлюза
	ErrorTypePayment ErrorType = "payment"
	// ErrorTypeShipping сбой сервиса расчета доставки
	ErrorTypeShipping ErrorType = "shipping"
	// ErrorTypeStorage ошибка хранилища
	ErrorTypeStorage ErrorType = "storage"
	// ErrorTypeNotFound ресурс не найден
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeConflict операция не допускается в текущем состоянии
	ErrorTypeConflict ErrorType = "conflict"
	// ErrorTypeTimeout таймаут
	ErrorTypeTimeout ErrorType = "timeout"
	// ErrorTypeInternal внутренняя ошибка
	ErrorTypeInternal ErrorType = "internal"
)

// AppError ошибка приложения
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	Code       string    `json:"code,omitempty"`
	Details    string    `json:"details,omitempty"`
	HTTPStatus int       `json:"-"`
	Cause      error     `json:"-"`
}

// Error реализует интерфейс error
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap возвращает причину ошибки
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is сравнивает ошибки по коду, чтобы errors.Is работал с копиями предопределенных ошибок
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	if e.Code != "" || t.Code != "" {
		return e.Code == t.Code
	}
	return e.Type == t.Type && e.Message == t.Message
}

// WithDetails возвращает копию ошибки с деталями
func (e *AppError) WithDetails(details string) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

// WithCause возвращает копию ошибки с причиной
func (e *AppError) WithCause(cause error) *AppError {
	cp := *e
	cp.Cause = cause
	return &cp
}

// New создает новую ошибку
func New(errorType ErrorType, message string) *AppError {
	return &AppError{
		Type:       errorType,
		Message:    message,
		HTTPStatus: getDefaultHTTPStatus(errorType),
	}
}

// NewWithCode создает новую ошибку с кодом
func NewWithCode(errorType ErrorType, message, code string) *AppError {
	return &AppError{
		Type:       errorType,
		Message:    message,
		Code:       code,
		HTTPStatus: getDefaultHTTPStatus(errorType),
	}
}

// Wrap оборачивает существующую ошибку
func Wrap(err error, errorType ErrorType, message string) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	return &AppError{
		Type:       errorType,
		Message:    message,
		HTTPStatus: getDefaultHTTPStatus(errorType),
		Cause:      err,
	}
}

// WrapWithCode оборачивает существующую ошибку с кодом
func WrapWithCode(err error, errorType ErrorType, message, code string) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	return &AppError{
		Type:       errorType,
		Message:    message,
		Code:       code,
		HTTPStatus: getDefaultHTTPStatus(errorType),
		Cause:      err,
	}
}

// As достает AppError из цепочки
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HTTPStatus возвращает HTTP статус для любой ошибки
func HTTPStatus(err error) int {
	if appErr, ok := As(err); ok && appErr.HTTPStatus != 0 {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// getDefaultHTTPStatus возвращает HTTP статус по умолчанию для типа ошибки
func getDefaultHTTPStatus(errorType ErrorType) int {
	switch errorType {
	case ErrorTypeValidation:
		return http.StatusBadRequest
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeConflict:
		return http.StatusConflict
	case ErrorTypePayment:
		return http.StatusPaymentRequired
	case ErrorTypeShipping:
		return http.StatusBadGateway
	case ErrorTypeTimeout:
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

// Предопределенные ошибки

// Checkout
var (
	ErrShippingNotSelected = NewWithCode(
		ErrorTypeValidation,
		"Please select a shipping method",
		"SHIPPING_NOT_SELECTED",
	)

	ErrDetailsIncomplete = NewWithCode(
		ErrorTypeValidation,
		"Please fill in all required fields",
		"DETAILS_INCOMPLETE",
	)

	ErrEmptyCart = NewWithCode(
		ErrorTypeValidation,
		"Cart is empty",
		"EMPTY_CART",
	)

	ErrUnknownDeliveryOption = NewWithCode(
		ErrorTypeValidation,
		"Unknown delivery option",
		"UNKNOWN_DELIVERY_OPTION",
	)

	ErrWrongStep = NewWithCode(
		ErrorTypeConflict,
		"Operation is not available at this checkout step",
		"WRONG_CHECKOUT_STEP",
	)

	ErrCheckoutCompleted = NewWithCode(
		ErrorTypeConflict,
		"Checkout is already completed",
		"CHECKOUT_COMPLETED",
	)
)

// Payment
var (
	ErrPaymentFailed = NewWithCode(
		ErrorTypePayment,
		"Payment failed. Try again.",
		"PAYMENT_FAILED",
	)

	ErrPaymentInProgress = NewWithCode(
		ErrorTypeConflict,
		"Payment is already being processed",
		"PAYMENT_IN_PROGRESS",
	)
)

// Shipping
var (
	ErrQuoteFailed = NewWithCode(
		ErrorTypeShipping,
		"Could not calculate delivery. Try again.",
		"QUOTE_FAILED",
	)
)

// Catalog and ledger
var (
	ErrDuplicateProduct = NewWithCode(
		ErrorTypeConflict,
		"Product with this id already exists",
		"DUPLICATE_PRODUCT",
	)

	ErrProductNotFound = NewWithCode(
		ErrorTypeNotFound,
		"Product not found",
		"PRODUCT_NOT_FOUND",
	)

	ErrOutOfStock = NewWithCode(
		ErrorTypeValidation,
		"Product is out of stock",
		"OUT_OF_STOCK",
	)

	ErrOrderNotFound = NewWithCode(
		ErrorTypeNotFound,
		"Order not found",
		"ORDER_NOT_FOUND",
	)

	ErrInvalidStatus = NewWithCode(
		ErrorTypeValidation,
		"Invalid order status",
		"INVALID_ORDER_STATUS",
	)
)

// Storage and config
var (
	ErrStorageUnavailable = NewWithCode(
		ErrorTypeStorage,
		"Storage is unavailable",
		"STORAGE_UNAVAILABLE",
	)

	ErrConfigValidationFailed = NewWithCode(
		ErrorTypeValidation,
		"Configuration validation failed",
		"CONFIG_VALIDATION_FAILED",
	)
)
