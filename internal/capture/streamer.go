package capture

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"github.com/Ahmed-Hamed789/BMO-AI/internal/config"
	"github.com/Ahmed-Hamed789/BMO-AI/internal/transcript"
)

// Streamer is the streaming-recognition capture variant: microphone PCM is
// pumped over a websocket to a Deepgram-protocol recognizer, and the first
// non-empty final segment completes the attempt.
type Streamer struct {
	cfg        config.RecognizerConfig
	sampleRate int
	sink       Sink
	logger     *slog.Logger
	sources    SourceFactory

	mu     sync.Mutex
	active *streamAttempt
}

type streamAttempt struct {
	gen    uint64
	conn   *websocket.Conn
	source Source

	discard  atomic.Bool
	finished atomic.Bool
	stopOnce sync.Once
}

// NewStreamer builds the streaming variant against the configured recognizer.
func NewStreamer(cfg config.RecognizerConfig, audioCfg config.AudioConfig, sampleRate int, sink Sink, logger *slog.Logger) *Streamer {
	return &Streamer{
		cfg:        cfg,
		sampleRate: sampleRate,
		sink:       sink,
		logger:     logger,
		sources:    pulseSourceFactory(audioCfg, sampleRate),
	}
}

// Start dials the recognizer and begins pumping microphone audio. URL and
// dial problems are failures of a started attempt and arrive through the
// sink; only an availability miss (no usable microphone) fails synchronously.
func (s *Streamer) Start(ctx context.Context, gen uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil && !s.active.finished.Load() {
		return fmt.Errorf("capture already active")
	}

	listenURL, err := s.listenURL()
	if err != nil {
		s.failBeforeAttach(gen, &FailedError{Cause: CauseOther, Detail: err.Error()})
		return nil
	}

	headers := http.Header{}
	if s.cfg.APIKey != "" {
		headers.Set("Authorization", "Token "+s.cfg.APIKey)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, listenURL, headers)
	if err != nil {
		s.failBeforeAttach(gen, classifyDialFailure(resp, err))
		return nil
	}

	source, err := s.sources(ctx)
	if err != nil {
		_ = conn.Close()
		return err
	}

	attempt := &streamAttempt{gen: gen, conn: conn, source: source}
	s.active = attempt

	go s.pumpAudio(attempt)
	go s.readResults(attempt)
	return nil
}

// Stop ends the active attempt. With discard=true any in-flight or
// late-arriving result is dropped and no completion event fires.
func (s *Streamer) Stop(discard bool) {
	s.mu.Lock()
	attempt := s.active
	s.mu.Unlock()

	if attempt == nil {
		return
	}
	if discard {
		attempt.discard.Store(true)
	}
	attempt.close()
}

// FinalizeOnStop is false: completion comes from final segments, and a
// non-discard Stop ends the attempt silently.
func (s *Streamer) FinalizeOnStop() bool { return false }

// SetSourceFactory replaces the microphone source, for tests.
func (s *Streamer) SetSourceFactory(f SourceFactory) {
	s.sources = f
}

// Busy reports whether an attempt is currently listening.
func (s *Streamer) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active != nil && !s.active.finished.Load()
}

// listenURL appends recognition parameters to the configured endpoint.
func (s *Streamer) listenURL() (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(s.cfg.URL))
	if err != nil {
		return "", fmt.Errorf("invalid recognizer URL: %w", err)
	}

	query := parsed.Query()
	query.Set("encoding", "linear16")
	query.Set("sample_rate", fmt.Sprintf("%d", s.sampleRate))
	query.Set("channels", "1")
	query.Set("interim_results", fmt.Sprintf("%t", s.cfg.InterimResults))
	if s.cfg.Model != "" {
		query.Set("model", s.cfg.Model)
	}
	if s.cfg.Language != "" {
		query.Set("language", s.cfg.Language)
	}
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

// pumpAudio forwards microphone chunks until the source closes, then signals
// end-of-stream to the recognizer.
func (s *Streamer) pumpAudio(attempt *streamAttempt) {
	for chunk := range attempt.source.Chunks() {
		if len(chunk) == 0 {
			continue
		}
		if err := attempt.conn.WriteMessage(websocket.BinaryMessage, chunk); err != nil {
			s.fail(attempt, &FailedError{Cause: CauseConnectivity, Detail: fmt.Sprintf("send audio: %v", err)})
			return
		}
	}
	_ = attempt.conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"CloseStream"}`))
}

// readResults consumes recognizer events until a usable final segment, a
// recognition error, or stream end.
func (s *Streamer) readResults(attempt *streamAttempt) {
	for {
		_, payload, err := attempt.conn.ReadMessage()
		if err != nil {
			if isNormalClose(err) || attempt.discard.Load() {
				// Ended without a final result: resolve silently to idle.
				attempt.close()
				return
			}
			s.fail(attempt, &FailedError{Cause: CauseConnectivity, Detail: fmt.Sprintf("recognizer stream: %v", err)})
			return
		}

		var result recognizerResult
		if err := json.Unmarshal(payload, &result); err != nil {
			continue
		}

		if strings.EqualFold(result.Type, "Error") {
			detail := strings.TrimSpace(result.Message)
			if detail == "" {
				detail = "recognizer reported an unspecified error"
			}
			s.fail(attempt, &FailedError{Cause: CauseOther, Detail: detail})
			return
		}

		text := transcript.Normalize(result.transcript())
		if text == "" {
			continue
		}

		if result.IsFinal || result.SpeechFinal {
			s.complete(attempt, text)
			return
		}

		if !attempt.discard.Load() && !attempt.finished.Load() {
			s.sink.CaptureInterim(attempt.gen, text)
		}
	}
}

// complete delivers the finalized transcript and tears the attempt down.
func (s *Streamer) complete(attempt *streamAttempt, text string) {
	if !attempt.finished.CompareAndSwap(false, true) {
		return
	}
	attempt.close()
	if attempt.discard.Load() {
		return
	}
	s.sink.CaptureCompleted(attempt.gen, text)
}

// failBeforeAttach reports an attempt that died before any goroutine ran.
// Delivery goes through the sink asynchronously, same as a mid-stream error.
func (s *Streamer) failBeforeAttach(gen uint64, failure *FailedError) {
	if s.logger != nil {
		s.logger.Warn("streaming capture failed", "cause", string(failure.Cause), "detail", failure.Detail)
	}
	go s.sink.CaptureFailed(gen, failure)
}

func (s *Streamer) fail(attempt *streamAttempt, failure *FailedError) {
	if !attempt.finished.CompareAndSwap(false, true) {
		return
	}
	attempt.close()
	if attempt.discard.Load() {
		return
	}
	if s.logger != nil {
		s.logger.Warn("streaming capture failed", "cause", string(failure.Cause), "detail", failure.Detail)
	}
	s.sink.CaptureFailed(attempt.gen, failure)
}

func (a *streamAttempt) close() {
	a.stopOnce.Do(func() {
		_ = a.source.Stop()
		_ = a.conn.Close()
	})
	a.finished.Store(true)
}

// classifyDialFailure distinguishes rejected credentials from plain
// connectivity problems at websocket dial time.
func classifyDialFailure(resp *http.Response, err error) *FailedError {
	if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
		return &FailedError{Cause: CausePermission, Detail: fmt.Sprintf("recognizer rejected credentials (status %d)", resp.StatusCode)}
	}
	return &FailedError{Cause: CauseConnectivity, Detail: fmt.Sprintf("dial recognizer: %v", err)}
}

func isNormalClose(err error) bool {
	return errors.Is(err, net.ErrClosed) ||
		websocket.IsCloseError(err,
			websocket.CloseNormalClosure,
			websocket.CloseGoingAway,
			websocket.CloseNoStatusReceived,
		)
}

// recognizerResult is the Deepgram-style streaming payload shape.
type recognizerResult struct {
	Type        string `json:"type"`
	Message     string `json:"message"`
	IsFinal     bool   `json:"is_final"`
	SpeechFinal bool   `json:"speech_final"`

	Channel struct {
		Alternatives []struct {
			Transcript string `json:"transcript"`
		} `json:"alternatives"`
	} `json:"channel"`
}

func (r recognizerResult) transcript() string {
	if len(r.Channel.Alternatives) == 0 {
		return ""
	}
	return r.Channel.Alternatives[0].Transcript
}
