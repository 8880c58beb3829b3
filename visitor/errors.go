package visitor

import (
	"errors"
	"strings"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrKindMismatch  = errors.New("kind mismatch")
	ErrUnknownKind   = errors.New("unknown kind")
	ErrDuplicateName = errors.New("duplicate name")
	ErrBadMagic      = errors.New("not a state file")
	ErrBadVersion    = errors.New("unsupported version")
)

// PathError records the full region/field path of the first failure in a
// traversal.
type PathError struct {
	Path []string
	Err  error
}

func (e *PathError) Error() string {
	return strings.Join(e.Path, ".") + ": " + e.Err.Error()
}

func (e *PathError) Unwrap() error { return e.Err }

// pathErr attaches path to err unless err already carries one from a deeper
// level.
func pathErr(path []string, err error) error {
	var pe *PathError
	if errors.As(err, &pe) {
		return err
	}
	return &PathError{Path: append([]string(nil), path...), Err: err}
}

func join(path []string, name string) []string {
	out := make([]string, 0, len(path)+1)
	out = append(out, path...)
	return append(out, name)
}

type mismatchError struct {
	want, got Kind
}

func (e mismatchError) Error() string {
	return "kind mismatch: want " + e.want.String() + ", got " + e.got.String()
}

func (e mismatchError) Is(target error) bool { return target == ErrKindMismatch }

func kindMismatch(want, got Kind) error { return mismatchError{want: want, got: got} }
