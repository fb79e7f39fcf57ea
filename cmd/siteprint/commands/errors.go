package commands

import "errors"

// errorCode returns the code attached to err, or "" for errors raised without one.
func errorCode(err error) string {
	var coded interface{ Code() string }
	if errors.As(err, &coded) {
		return coded.Code()
	}
	return ""
}
