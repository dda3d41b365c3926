package indicator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseNotifyID(t *testing.T) {
	id, err := parseNotifyID("u 42")
	require.NoError(t, err)
	require.Equal(t, uint32(42), id)

	_, err = parseNotifyID("")
	require.Error(t, err)

	_, err = parseNotifyID("s hello")
	require.Error(t, err)

	_, err = parseNotifyID("u not-a-number")
	require.Error(t, err)
}
