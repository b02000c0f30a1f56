package core

import "errors"

var (
	ErrTemplateNotFound = errors.New("hello: template not found")
	ErrUnknownRoute     = errors.New("hello: unknown route")
	ErrUnsafePurge      = errors.New("hello: refusing to purge a directory holding site files")
)

// IsNotFoundError reports whether err is a missing template or route.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrTemplateNotFound) || errors.Is(err, ErrUnknownRoute)
}
