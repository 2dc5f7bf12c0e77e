package validation

import "fmt"

// Error menandai input request yang tidak valid. Selalu dipetakan ke 4xx oleh
// router; pesan ditampilkan langsung ke pengguna.
type Error struct {
	Message string
}

func (e *Error) Error() string { return e.Message }

func Errorf(format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}
