package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, 2*time.Second, nil)
}

func TestWakeSuccess(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/wake", r.URL.Path)
		require.NotEmpty(t, r.Header.Get("X-Request-ID"))
		_ = json.NewEncoder(w).Encode(map[string]string{
			"session_id": "s1",
			"message":    "Hi, I'm BMO",
		})
	}))

	session, err := client.Wake(context.Background())
	require.NoError(t, err)
	require.Equal(t, "s1", session.ID)
	require.Equal(t, "Hi, I'm BMO", session.Greeting)
}

func TestWakeMissingSessionID(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "hello"})
	}))

	_, err := client.Wake(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing session_id")
}

func TestRespondSuccess(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/respond", r.URL.Path)

		var request struct {
			SessionID  string `json:"session_id"`
			Transcript string `json:"transcript"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&request))
		require.Equal(t, "s1", request.SessionID)
		require.Equal(t, "take me to the cafe", request.Transcript)

		_ = json.NewEncoder(w).Encode(NarrationReply{
			Narration:   "Follow me to the cafe.",
			Destination: "Cafe",
			Directions:  []string{"go east", "arrive"},
			Mode:        "NAVIGATING",
			Speech:      &SpeechPayload{MIMEType: "audio/mpeg", Base64: "aGk="},
		})
	}))

	reply, err := client.Respond(context.Background(), "s1", "take me to the cafe")
	require.NoError(t, err)
	require.Equal(t, []string{"go east", "arrive"}, reply.Directions)
	require.Equal(t, "Cafe", reply.Destination)
	require.NotNil(t, reply.Speech)
	require.Equal(t, "audio/mpeg", reply.Speech.MIMEType)
}

func TestRespondErrorStatusSurfacesBodyDetail(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "model overloaded"})
	}))

	_, err := client.Respond(context.Background(), "s1", "where is the gym")
	require.Error(t, err)
	require.Equal(t, "model overloaded", Detail(err))
	require.False(t, IsUnreachable(err))
}

func TestRespondErrorStatusPlainBody(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("something broke"))
	}))

	_, err := client.Respond(context.Background(), "s1", "hello")
	require.Error(t, err)
	require.Equal(t, "something broke", Detail(err))
}

func TestUnreachableKind(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()
	client := NewClient(server.URL, 500*time.Millisecond, nil)

	_, err := client.Wake(context.Background())
	require.Error(t, err)
	require.True(t, IsUnreachable(err))
}

func TestTranscribeMultipart(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/transcription", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		file, header, err := r.FormFile("audio")
		require.NoError(t, err)
		defer file.Close()
		require.Equal(t, "capture.wav", header.Filename)

		data, err := io.ReadAll(file)
		require.NoError(t, err)
		require.Equal(t, []byte("pcm-bytes"), data)

		_ = json.NewEncoder(w).Encode(map[string]string{"transcript": "where is the library"})
	}))

	transcript, err := client.Transcribe(context.Background(), Clip{
		Filename: "capture.wav",
		MIMEType: "audio/wav",
		Data:     []byte("pcm-bytes"),
	})
	require.NoError(t, err)
	require.Equal(t, "where is the library", transcript)
}

func TestHealth(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/health", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))

	require.NoError(t, client.Health(context.Background()))
}
