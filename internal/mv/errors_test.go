package mv

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorStringIncludesKindAndMessage(t *testing.T) {
	err := newError(KindBadArguments, nil, "view %s: bad clause", "default.v1")
	require.Equal(t, "BadArguments: view default.v1: bad clause", err.Error())
}

func TestErrorStringIncludesWrappedCause(t *testing.T) {
	cause := errors.New("disk full")
	err := newError(KindLogicalError, cause, "writing part")
	require.Contains(t, err.Error(), "LogicalError")
	require.Contains(t, err.Error(), "disk full")
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := newError(KindUnknownStorage, cause, "table missing")
	require.ErrorIs(t, err, cause)
}

func TestKindStringUnknown(t *testing.T) {
	require.Equal(t, "Unknown", Kind(999).String())
}

func TestKindStrings(t *testing.T) {
	cases := map[Kind]string{
		KindLogicalError:             "LogicalError",
		KindBadArguments:              "BadArguments",
		KindIncorrectQuery:            "IncorrectQuery",
		KindNotImplemented:            "NotImplemented",
		KindTooManyMaterializedViews:  "TooManyMaterializedViews",
		KindUnknownStorage:            "UnknownStorage",
	}
	for k, want := range cases {
		require.Equal(t, want, k.String())
	}
}
