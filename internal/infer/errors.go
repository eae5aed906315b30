package infer

import "github.com/unbound-force/scry/internal/unify"

// ErrorKind is the four-way failure taxonomy of §4.4: these are
// recorded per function and never abort the run.
type ErrorKind string

const (
	ErrCannotUnify        ErrorKind = "cannot_unify"
	ErrCannotUnifyEffects ErrorKind = "cannot_unify_effects"
	ErrUndefinedVariable  ErrorKind = "undefined_variable"
	ErrOccursCheck        ErrorKind = "occurs_check"
)

// FuncError is one recorded inference failure, attached to a
// ClauseResult (§7: "Recorded per function in an errors list").
type FuncError struct {
	Kind    ErrorKind
	Message string
}

// kindForUnifyError classifies a unify package error into the §4.4
// taxonomy.
func kindForUnifyError(err error) ErrorKind {
	switch err.(type) {
	case *unify.OccursCheck:
		return ErrOccursCheck
	case *unify.CannotUnifyEffects:
		return ErrCannotUnifyEffects
	default:
		return ErrCannotUnify
	}
}
