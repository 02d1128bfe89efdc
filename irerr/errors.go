// Package irerr holds the errors type inference and IR passes can fail with.
// Every error carries an ErrCode so callers can tell them apart after wrapping.
package irerr

import (
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/pkg/errors"
)

// enableDebugErrorPrinting makes errors include where they were created when printed
const enableDebugErrorPrinting bool = true
const enableDebugFullStacktrace bool = false

type ErrCode int

const (
	None ErrCode = iota
	UnificationConflictCode
	IllFormedBuiltinUsageCode
	UnsupportedBuiltinCode
)

type IrError interface {
	Error() string
	Code() ErrCode

	withStack([]byte) IrError
	getStack() []byte
}

func FormatWithCode(e IrError) string {
	if enableDebugErrorPrinting && e.getStack() != nil {
		stack := string(e.getStack())
		if !enableDebugFullStacktrace {
			lines := strings.Split(stack, "\n")
			if len(lines) > 6 {
				stack = strings.TrimSpace(lines[6])
			}
		}
		return fmt.Sprintf("%s:(E%03d) %s", stack, e.Code(), e.Error())
	}
	return fmt.Sprintf("(E%03d) %s", e.Code(), e.Error())
}

// New records where err was created, so it can be shown by FormatWithCode
func New[E IrError](err E) IrError {
	return err.withStack(debug.Stack())
}

// CodeOf finds the ErrCode of err, even if it was wrapped. Errors which are not
// IrError have code None
func CodeOf(err error) ErrCode {
	var irErr IrError
	if errors.As(err, &irErr) {
		return irErr.Code()
	}
	return None
}

type Unclassified struct {
	From  error
	stack []byte
}

func (e Unclassified) Error() string {
	return fmt.Sprintf("unclassified error: %v", e.From)
}
func (e Unclassified) Unwrap() error    { return e.From }
func (e Unclassified) Code() ErrCode    { return None }
func (e Unclassified) getStack() []byte { return e.stack }
func (e Unclassified) withStack(stack []byte) IrError {
	e.stack = stack
	return e
}

// NewUnificationConflict is raised when two types are constrained to be equal but
// cannot be: different primitives, different shapes, or a type variable that
// would have to contain itself
type NewUnificationConflict struct {
	First  fmt.Stringer
	Second fmt.Stringer
	// Reason is optional
	Reason string
	stack  []byte
}

func (e NewUnificationConflict) Error() string {
	msg := fmt.Sprintf("type conflict: can not satisfy constraint %v ≡ %v", e.First, e.Second)
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	return msg
}
func (e NewUnificationConflict) Code() ErrCode    { return UnificationConflictCode }
func (e NewUnificationConflict) getStack() []byte { return e.stack }
func (e NewUnificationConflict) withStack(stack []byte) IrError {
	e.stack = stack
	return e
}

// NewIllFormedBuiltinUsage is raised when a builtin is used outside the shape
// the type checker supports, like a bare reference to shift or a non-literal
// tuple_get index. Duplicate function definitions also fall in this category.
type NewIllFormedBuiltinUsage struct {
	Builtin string
	Reason  string
	stack   []byte
}

func (e NewIllFormedBuiltinUsage) Error() string {
	if e.Builtin == "" {
		return e.Reason
	}
	return fmt.Sprintf("ill-formed use of '%s': %s", e.Builtin, e.Reason)
}
func (e NewIllFormedBuiltinUsage) Code() ErrCode    { return IllFormedBuiltinUsageCode }
func (e NewIllFormedBuiltinUsage) getStack() []byte { return e.stack }
func (e NewIllFormedBuiltinUsage) withStack(stack []byte) IrError {
	e.stack = stack
	return e
}

type NewUnsupportedBuiltin struct {
	Builtin string
	stack   []byte
}

func (e NewUnsupportedBuiltin) Error() string {
	return fmt.Sprintf("missing type definition for builtin '%s'", e.Builtin)
}
func (e NewUnsupportedBuiltin) Code() ErrCode    { return UnsupportedBuiltinCode }
func (e NewUnsupportedBuiltin) getStack() []byte { return e.stack }
func (e NewUnsupportedBuiltin) withStack(stack []byte) IrError {
	e.stack = stack
	return e
}
