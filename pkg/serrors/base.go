package serrors

import "maps"

// BaseError is a coded error shared across packages.
//
// Sentinels are declared once with NewError and wrapped with %w at the call
// site, so callers can match them with errors.Is or read the code with
// errors.As.
type BaseError struct {
	Code         string            `json:"code"`
	Message      string            `json:"message"`
	LocaleKey    string            `json:"locale_key,omitempty"`
	TemplateData map[string]string `json:"-"`
}

func NewError(code, message, localeKey string) *BaseError {
	return &BaseError{
		Code:      code,
		Message:   message,
		LocaleKey: localeKey,
	}
}

func (e *BaseError) Error() string {
	return e.Message
}

// WithTemplateData returns a copy of e carrying data. The receiver is left
// untouched so package-level sentinels stay immutable.
func (e *BaseError) WithTemplateData(data map[string]string) *BaseError {
	cp := *e
	cp.TemplateData = maps.Clone(data)
	return &cp
}
