package assistant

import "errors"

// ErrEmptyMessage is returned when the chat message is blank.
var ErrEmptyMessage = errors.New("message cannot be empty")

// ErrAssistantDisabled is returned when no model backend is configured.
var ErrAssistantDisabled = errors.New("assistant is not configured")

// ErrChat is returned when the model call fails.
var ErrChat = errors.New("assistant failed to answer")
