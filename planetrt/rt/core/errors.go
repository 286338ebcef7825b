package core

import "errors"

// Error kinds shared by every stage of the bake. Callers match them with errors.Is.
var (
	ErrInvalidFaceIndex         = errors.New("invalid face index")
	ErrUnsupportedImageEncoding = errors.New("unsupported image encoding")
	ErrDimensionMismatch        = errors.New("dimension mismatch")
	ErrUnresolvedMaterialColor  = errors.New("unresolved material color")
)

// IsFatal reports whether err must stop the whole bake rather than the current face.
func IsFatal(err error) bool {
	return errors.Is(err, ErrInvalidFaceIndex) || errors.Is(err, ErrDimensionMismatch)
}
