package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueNumbers(t *testing.T) {
	t.Run("parses strings and integral floats", func(t *testing.T) {
		f := value("1250.5").Float()
		require.NotNil(t, f)
		assert.Equal(t, 1250.5, *f)

		n := value("1925.0").Int()
		require.NotNil(t, n)
		assert.Equal(t, 1925, *n)
	})

	t.Run("blank and garbage are unknown", func(t *testing.T) {
		assert.Nil(t, value("").Float())
		assert.Nil(t, value("n/a").Float())
	})

	t.Run("non-finite figures are unknown", func(t *testing.T) {
		for _, raw := range []string{"NaN", "nan", "Inf", "+Inf", "-Inf", "Infinity", "1e400"} {
			assert.Nil(t, value(raw).Float(), raw)
			assert.Nil(t, value(raw).PositiveFloat(), raw)
			assert.Nil(t, value(raw).Int(), raw)
		}
	})

	t.Run("zero is unknown only for positive accessors", func(t *testing.T) {
		require.NotNil(t, value("0").Float())
		assert.Nil(t, value("0").PositiveFloat())
		assert.Nil(t, value("0").PositiveInt())
	})
}
