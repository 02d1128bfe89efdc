package irerr

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

type name string

func (n name) String() string { return string(n) }

func TestCodeOfWrapped(t *testing.T) {
	err := New(NewUnificationConflict{First: name("int"), Second: name("float")})
	wrapped := errors.Wrap(err, "while inferring fencil")

	assert.Equal(t, UnificationConflictCode, CodeOf(wrapped))
	assert.Equal(t, None, CodeOf(errors.New("plain")))
	assert.Contains(t, wrapped.Error(), "int ≡ float")
}

func TestFormatWithCode(t *testing.T) {
	err := New(NewUnsupportedBuiltin{Builtin: "power"})
	formatted := FormatWithCode(err)

	assert.True(t, strings.HasSuffix(formatted, "(E003) missing type definition for builtin 'power'"), formatted)
	// the location of the caller is kept
	assert.Contains(t, formatted, "errors_test.go")

	plain := NewIllFormedBuiltinUsage{Builtin: "tuple_get", Reason: "requires exactly two arguments"}
	assert.Equal(t, "(E002) ill-formed use of 'tuple_get': requires exactly two arguments", FormatWithCode(plain))
}

func TestUnclassifiedUnwraps(t *testing.T) {
	cause := errors.New("boom")
	err := New(Unclassified{From: cause})
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, None, CodeOf(err))
}
