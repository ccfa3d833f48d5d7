package a

import (
	"errors"
	"io"
)

var ErrMissing = errors.New("missing")

var ErrCode = 42

func check(err error) bool {
	if err == ErrMissing { // want "comparison with sentinel error ErrMissing, use errors.Is"
		return true
	}

	if io.ErrUnexpectedEOF != err { // want "comparison with sentinel error ErrUnexpectedEOF, use errors.Is"
		return false
	}

	if errors.Is(err, ErrMissing) {
		return true
	}

	ErrLocal := errors.New("local")
	if err == ErrLocal {
		return true
	}

	if ErrCode == 7 {
		return true
	}

	return err == nil || err == io.EOF
}
