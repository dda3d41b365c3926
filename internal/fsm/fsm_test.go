package fsm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTransitionWakeToListening(t *testing.T) {
	next, err := Transition(ModeIdle, EventWake)
	require.NoError(t, err)
	require.Equal(t, ModeProcessing, next)

	next, err = Transition(next, EventSessionReady)
	require.NoError(t, err)
	require.Equal(t, ModeListening, next)
}

func TestTransitionCaptureRoundTrip(t *testing.T) {
	next, err := Transition(ModeListening, EventCaptureDone)
	require.NoError(t, err)
	require.Equal(t, ModeProcessing, next)

	next, err = Transition(next, EventReplyNavigating)
	require.NoError(t, err)
	require.Equal(t, ModeNavigating, next)

	next, err = Transition(ModeProcessing, EventReplySpeaking)
	require.NoError(t, err)
	require.Equal(t, ModeSpeaking, next)
}

func TestTransitionFailFromAnyMode(t *testing.T) {
	modes := []Mode{ModeIdle, ModeListening, ModeProcessing, ModeSpeaking, ModeNavigating, ModeError}
	for _, mode := range modes {
		next, err := Transition(mode, EventFail)
		require.NoError(t, err)
		require.Equal(t, ModeError, next)
	}
}

func TestTransitionResetFromAnyMode(t *testing.T) {
	modes := []Mode{ModeIdle, ModeListening, ModeProcessing, ModeSpeaking, ModeNavigating, ModeError}
	for _, mode := range modes {
		next, err := Transition(mode, EventReset)
		require.NoError(t, err)
		require.Equal(t, ModeIdle, next)
	}
}

func TestTransitionMatrixInvalidTransitions(t *testing.T) {
	tests := []struct {
		name    string
		mode    Mode
		event   Event
		want    Mode
		wantErr bool
	}{
		{name: "idle capture-done invalid", mode: ModeIdle, event: EventCaptureDone, want: ModeIdle, wantErr: true},
		{name: "idle session-ready invalid", mode: ModeIdle, event: EventSessionReady, want: ModeIdle, wantErr: true},
		{name: "listening wake invalid", mode: ModeListening, event: EventWake, want: ModeListening, wantErr: true},
		{name: "listening retoggle valid", mode: ModeListening, event: EventListen, want: ModeListening, wantErr: false},
		{name: "processing listen invalid", mode: ModeProcessing, event: EventListen, want: ModeProcessing, wantErr: true},
		{name: "processing wake invalid", mode: ModeProcessing, event: EventWake, want: ModeProcessing, wantErr: true},
		{name: "speaking capture-done invalid", mode: ModeSpeaking, event: EventCaptureDone, want: ModeSpeaking, wantErr: true},
		{name: "navigating listen valid", mode: ModeNavigating, event: EventListen, want: ModeListening, wantErr: false},
		{name: "error wake valid", mode: ModeError, event: EventWake, want: ModeProcessing, wantErr: false},
		{name: "error listen valid", mode: ModeError, event: EventListen, want: ModeListening, wantErr: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			next, err := Transition(tc.mode, tc.event)
			require.Equal(t, tc.want, next)
			if tc.wantErr {
				require.Error(t, err)
				require.Contains(t, err.Error(), "invalid transition")
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestTransitionUnknownMode(t *testing.T) {
	next, err := Transition(Mode("mystery"), EventWake)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown mode")
	require.Equal(t, Mode("mystery"), next)
}

func TestValid(t *testing.T) {
	for _, mode := range []Mode{ModeIdle, ModeListening, ModeProcessing, ModeSpeaking, ModeNavigating, ModeError} {
		require.True(t, Valid(mode))
	}
	require.False(t, Valid(Mode("recording")))
	require.False(t, Valid(Mode("")))
}
