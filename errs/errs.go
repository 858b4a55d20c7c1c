// Package errs defines the failure taxonomy shared by every component:
// typed error kinds carrying a machine-readable code, a technical message
// for logs, a user-safe message, and a flat payload form for API responses.
package errs

import (
	"errors"
	"fmt"
)

// Kind discriminates the failure categories.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindURLFetch
	KindTextExtraction
	KindPostGeneration
	KindUpstreamAPI
	KindRateLimited
	KindConfiguration
)

// Code returns the machine-readable error code for the kind.
func (k Kind) Code() string {
	switch k {
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindURLFetch:
		return "URL_FETCH_ERROR"
	case KindTextExtraction:
		return "TEXT_EXTRACTION_ERROR"
	case KindPostGeneration:
		return "POST_GENERATION_ERROR"
	case KindUpstreamAPI:
		return "OPENAI_ERROR"
	case KindRateLimited:
		return "RATE_LIMIT_ERROR"
	case KindConfiguration:
		return "CONFIGURATION_ERROR"
	default:
		return "INTERNAL_ERROR"
	}
}

// userMessage is the default user-facing text per kind. The product UI is
// Russian, so these strings are shown verbatim to end users.
func (k Kind) userMessage() string {
	switch k {
	case KindValidation:
		return "Некорректные входные данные. Пожалуйста, проверьте правильность введенной информации."
	case KindURLFetch:
		return "Не удалось загрузить страницу. Проверьте правильность URL и доступность сайта."
	case KindTextExtraction:
		return "На странице не найдено достаточно текста для генерации поста. Попробуйте другой URL."
	case KindPostGeneration:
		return "Не удалось сгенерировать пост. Пожалуйста, попробуйте другой URL или стиль."
	case KindUpstreamAPI:
		return "Временные проблемы с генерацией. Мы уже работаем над решением. Попробуйте позже."
	case KindRateLimited:
		return "Превышен лимит запросов. Пожалуйста, подождите немного перед следующей попыткой."
	case KindConfiguration:
		return "Ошибка конфигурации приложения. Пожалуйста, обратитесь к администратору."
	default:
		return "Произошла ошибка при обработке запроса. Администратор уже уведомлен о проблеме."
	}
}

// Error is the taxonomy error. Message is technical and may carry internal
// detail; UserMessage is always safe to expose.
type Error struct {
	Kind        Kind
	Message     string
	UserMessage string
	Code        string
	Details     map[string]any
	Err         error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Payload converts the error to the flat mapping returned to API callers:
// {success: false, error: <user message>, error_code: <code>, ...details}.
func (e *Error) Payload() map[string]any {
	out := make(map[string]any, len(e.Details)+3)
	out["success"] = false
	out["error"] = e.UserMessage
	out["error_code"] = e.Code
	for k, v := range e.Details {
		out[k] = v
	}
	return out
}

func newError(kind Kind, message string, details map[string]any, cause error) *Error {
	return &Error{
		Kind:        kind,
		Message:     message,
		UserMessage: kind.userMessage(),
		Code:        kind.Code(),
		Details:     details,
		Err:         cause,
	}
}

// NewURLValidation reports a malformed, empty, or unsupported URL.
func NewURLValidation(url, reason string) *Error {
	message := fmt.Sprintf("invalid url %q", url)
	if reason != "" {
		message += ": " + reason
	}
	e := newError(KindValidation, message, map[string]any{"url": url, "reason": reason}, nil)
	e.UserMessage = "Некорректный URL. Пожалуйста, укажите полный URL с протоколом (http:// или https://)"
	return e
}

// NewURLFetch reports a failed page download. statusCode is zero when the
// failure happened before any response arrived.
func NewURLFetch(url, reason string, statusCode int) *Error {
	message := "failed to fetch " + url
	if statusCode != 0 {
		message += fmt.Sprintf(" (HTTP %d)", statusCode)
	}
	if reason != "" {
		message += ": " + reason
	}
	details := map[string]any{"url": url, "reason": reason}
	if statusCode != 0 {
		details["status_code"] = statusCode
	}
	return newError(KindURLFetch, message, details, nil)
}

// NewTextExtraction reports a parse failure or insufficient extracted text.
func NewTextExtraction(url, reason string) *Error {
	message := "failed to extract text from " + url
	if reason != "" {
		message += ": " + reason
	}
	return newError(KindTextExtraction, message, map[string]any{"url": url, "reason": reason}, nil)
}

// NewPostGeneration re-tags a failure surfaced during pipeline
// orchestration. The cause is preserved for Unwrap.
func NewPostGeneration(reason, url, style string, cause error) *Error {
	details := map[string]any{"reason": reason}
	if url != "" {
		details["url"] = url
	}
	if style != "" {
		details["style"] = style
	}
	return newError(KindPostGeneration, "post generation failed: "+reason, details, cause)
}

// NewUpstreamAPI reports a terminal LLM provider failure after retryCount
// attempts.
func NewUpstreamAPI(reason string, cause error, retryCount int) *Error {
	details := map[string]any{"reason": reason, "retry_count": retryCount}
	if cause != nil {
		details["api_error"] = cause.Error()
	}
	return newError(KindUpstreamAPI, "openai api error: "+reason, details, cause)
}

// NewRateLimited reports provider quota exhaustion. retryAfter is in
// seconds; zero means the provider gave no hint.
func NewRateLimited(retryAfter int) *Error {
	reason := "rate limit exceeded"
	details := map[string]any{"retry_count": 0}
	if retryAfter > 0 {
		reason = fmt.Sprintf("rate limit exceeded, retry after %d seconds", retryAfter)
		details["retry_after"] = retryAfter
	}
	details["reason"] = reason
	return newError(KindRateLimited, "openai api error: "+reason, details, nil)
}

// NewConfiguration reports missing or invalid configuration discovered at
// construction time.
func NewConfiguration(parameter, reason string) *Error {
	message := fmt.Sprintf("configuration error %q: %s", parameter, reason)
	return newError(KindConfiguration, message, map[string]any{"parameter": parameter, "reason": reason}, nil)
}

// As unwraps err to the taxonomy type.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind reports whether err is a taxonomy error of the given kind.
func IsKind(err error, kind Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == kind
}

// Payload renders any error as an API response mapping. Errors outside the
// taxonomy surface only the generic internal message: technical detail must
// never leak to callers.
func Payload(err error) map[string]any {
	if e, ok := As(err); ok {
		return e.Payload()
	}
	return map[string]any{
		"success":    false,
		"error":      "Произошла непредвиденная ошибка. Администратор уже уведомлен.",
		"error_code": "INTERNAL_ERROR",
	}
}
