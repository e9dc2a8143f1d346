package updater

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorKind
	}{
		{nil, KindUnknown},
		{errors.New("plain"), KindUnknown},
		{fmt.Errorf("%w: timeout", ErrNetwork), KindNetwork},
		{fmt.Errorf("%w: bad json", ErrParse), KindParse},
		{fmt.Errorf("wrap: %w", fmt.Errorf("%w: rename", ErrFileSystem)), KindFileSystem},
		{fmt.Errorf("%w: exec", ErrSpawn), KindSpawn},
		{fmt.Errorf("%w: no url", ErrInvalidTask), KindInvalidTask},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, KindOf(tt.err), "KindOf(%v)", tt.err)
	}
}

func TestErrorKind_String(t *testing.T) {
	assert.Equal(t, "network", KindNetwork.String())
	assert.Equal(t, "parse", KindParse.String())
	assert.Equal(t, "filesystem", KindFileSystem.String())
	assert.Equal(t, "spawn", KindSpawn.String())
	assert.Equal(t, "invalid_task", KindInvalidTask.String())
	assert.Equal(t, "unknown", KindUnknown.String())
}
