package transcript

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "take me to the cafe", want: "take me to the cafe"},
		{name: "leading and trailing space", in: "  where is the gym  ", want: "where is the gym"},
		{name: "internal runs", in: "go \t to  the\nlibrary", want: "go to the library"},
		{name: "empty", in: "", want: ""},
		{name: "whitespace only", in: " \t\n ", want: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Normalize(tc.in))
		})
	}
}

func TestUsable(t *testing.T) {
	require.True(t, Usable("hello"))
	require.False(t, Usable("   "))
	require.False(t, Usable(""))
}
