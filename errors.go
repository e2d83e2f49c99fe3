package sparsegrid

import (
	"errors"
	"fmt"

	"github.com/hupe1980/sparsegrid/design"
	"github.com/hupe1980/sparsegrid/multiindex"
)

// ErrInvalidGridParameters indicates d or eta outside the supported range.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInvalidGridParameters struct {
	Dim   int
	Level int
	cause error
}

func (e *ErrInvalidGridParameters) Error() string {
	return fmt.Sprintf("invalid grid parameters: d=%d, eta=%d", e.Dim, e.Level)
}

func (e *ErrInvalidGridParameters) Unwrap() error { return e.cause }

// ErrInvalidDesignParameters indicates a bad degree or bounds for a
// one-dimensional design.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInvalidDesignParameters struct {
	Degree int
	Lower  float64
	Upper  float64
	cause  error
}

func (e *ErrInvalidDesignParameters) Error() string {
	return fmt.Sprintf("invalid design parameters: degree=%d, bounds=[%g, %g]", e.Degree, e.Lower, e.Upper)
}

func (e *ErrInvalidDesignParameters) Unwrap() error { return e.cause }

// ErrUnsupportedFamily indicates an unknown design family selector.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrUnsupportedFamily struct {
	Family design.Family
	cause  error
}

func (e *ErrUnsupportedFamily) Error() string {
	return fmt.Sprintf("unsupported design family: %v", e.Family)
}

func (e *ErrUnsupportedFamily) Unwrap() error { return e.cause }

// translateError normalizes subpackage errors into the root taxonomy.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var gp *multiindex.ErrInvalidGridParameters
	if errors.As(err, &gp) {
		return &ErrInvalidGridParameters{Dim: gp.Dim, Level: gp.Level, cause: err}
	}

	var dp *design.ErrInvalidParameters
	if errors.As(err, &dp) {
		return &ErrInvalidDesignParameters{Degree: dp.Degree, Lower: dp.Lower, Upper: dp.Upper, cause: err}
	}

	var uf *design.ErrUnsupportedFamily
	if errors.As(err, &uf) {
		return &ErrUnsupportedFamily{Family: uf.Family, cause: err}
	}

	return err
}
