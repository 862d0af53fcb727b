package mode

import "errors"

var (
	ErrUnknownMode   = errors.New("unknown mode")
	ErrInvalidMode   = errors.New("invalid mode definition")
	ErrInvalidStyle  = errors.New("invalid style")
	ErrNoGrammar     = errors.New("mode has no grammar")
	ErrUnknownFormat = errors.New("unknown mode file format")
)
