package model

import (
	"errors"

	"github.com/aws/smithy-go"

	"github.com/tabsync/tabsync/internal/dao"
)

// ErrorMessage extracts the message to display for a failed fetch.
// Upstream API errors yield their own message; a recovered panic whose value
// is not an error yields no message.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorMessage() != "" {
		return apiErr.ErrorMessage()
	}

	var pe *dao.PanicError
	if errors.As(err, &pe) {
		if cause := pe.Unwrap(); cause != nil {
			return cause.Error()
		}
		return ""
	}

	return err.Error()
}
