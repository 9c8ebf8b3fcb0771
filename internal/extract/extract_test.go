package extract

import "errors"

// asExtractError reports whether err (or anything it wraps) is an *Error.
func asExtractError(err error, target **Error) bool {
	return errors.As(err, target)
}
