package service

import "errors"

var (
	// ErrValidation ввод не прошел проверку, шаг диалога не меняется.
	ErrValidation = errors.New("invalid input")
	// ErrUnexpectedInput событие не подходит к текущему шагу (или сессии нет).
	ErrUnexpectedInput = errors.New("unexpected input for current step")
	// ErrAdminNotConfigured chat_id администратора равен 0.
	ErrAdminNotConfigured = errors.New("admin chat is not configured")
	ErrNotFound           = errors.New("booking not found or already resolved")
	ErrForbidden          = errors.New("not allowed")
	ErrScheduling         = errors.New("failed to schedule reminders")
	ErrDelivery           = errors.New("failed to deliver message")
)
