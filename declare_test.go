package bootseq

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeclaration(t *testing.T) {
	t.Parallel()

	t.Run("it requires both actions", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, NilFuncError(missingUpMessage), Declare().Validate())
		assert.Equal(t, NilFuncError(missingDownMessage), Declare().Up(NoOp).Validate())
		assert.Equal(t, NilFuncError(missingUpMessage), Declare().Down(NoOp).Validate())
		assert.NoError(t, Declare().Up(NoOp).Down(NoOp).Validate())
	})

	t.Run("it keeps dependencies in declaration order", func(t *testing.T) {
		t.Parallel()

		mgr := New("deps")
		a := Must(mgr.Register("a", NoOp, NoOp))
		b := Must(mgr.Register("b", NoOp, NoOp))
		c := Must(mgr.Register("c", NoOp, NoOp))

		d := Declare().After(b).AfterNoKeepAlive(a).With(KeepAlive(c))
		assert.Equal(t, []Dependency{
			{Target: b, KeepAlive: true},
			{Target: a, KeepAlive: false},
			{Target: c, KeepAlive: true},
		}, d.deps)
	})

	t.Run("it returns the actions it was given", func(t *testing.T) {
		t.Parallel()

		d := Declare().Up(errOp).Down(NoOp)
		assert.ErrorIs(t, d.up(context.Background()), errService)
		assert.NoError(t, d.down(context.Background()))
	})
}

func TestMust(t *testing.T) {
	t.Parallel()

	t.Run("should panic on error", func(t *testing.T) {
		t.Parallel()

		expectedErr := errors.New("look at me, I'm an error")
		fn := func() (string, error) {
			return "", expectedErr
		}

		require.PanicsWithError(t, expectedErr.Error(), func() {
			Must(fn())
		})
	})

	t.Run("should not panic on success", func(t *testing.T) {
		t.Parallel()

		require.NotPanics(t, func() {
			res := Must(New("must").Register("ok", NoOp, NoOp))
			assert.Equal(t, "ok", res.Name())
		})
	})
}
