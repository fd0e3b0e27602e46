// Package engine implements the dual-stem audio engine: playlist queue,
// synchronized vocal/instrumental playback sessions, spectral analysis
// taps, transport control, and end-of-track notification.
package engine

import (
	"context"
	"log/slog"
	"sync"

	"github.com/gopxl/beep/v2"

	"github.com/stellarsound/ringlight/internal/domain"
	"github.com/stellarsound/ringlight/internal/ports"
)

// Config holds the engine's audio parameters.
type Config struct {
	// SampleRate is the output sample rate in Hz
	SampleRate int

	// BufferMillis is the output device buffer length in milliseconds
	BufferMillis int

	// FFTSize is the analyzer window length in samples
	FFTSize int

	// Smoothing is the analyzer time smoothing constant [0, 1)
	Smoothing float64
}

// DefaultConfig returns the standard engine parameters: CD-rate output and
// a 32768-sample analysis window smoothed at 0.8.
func DefaultConfig() Config {
	return Config{
		SampleRate:   44100,
		BufferMillis: 100,
		FFTSize:      32768,
		Smoothing:    0.8,
	}
}

// endListener is one entry of the ordered end-of-track subscriber list.
type endListener struct {
	id domain.ListenerID
	fn func(domain.Track)
}

// Engine owns the playlist, the active playback session, transport state,
// the master gain, and the end-of-track subscriber list.
//
// All operations are thread-safe. Playlist-advance operations (PlayNext,
// PlayPrevious, Seek) are additionally serialized against each other, so
// two overlapping advances can never construct two sessions; a stop or a
// later advance supersedes an in-flight decode, whose result is then
// discarded on arrival.
type Engine struct {
	// Dependencies (injected)
	logger  *slog.Logger
	cfg     Config
	decoder ports.StemDecoder
	output  ports.Output
	bus     ports.EventBus

	// advanceMu serializes playlist-advance operations end to end,
	// including the decode they await.
	advanceMu sync.Mutex

	// mu guards all state below.
	mu          sync.RWMutex
	initialized bool
	playlist    []domain.Track
	current     int // -1 before the first PlayNext
	status      domain.PlaybackStatus
	phase       domain.SessionPhase
	sess        *session
	offset      float64 // last requested offset in seconds; the clock base while stopped
	generation  uint64  // bumped on every teardown; stale loads and callbacks check it

	// volume is the master gain, read lock-free from the audio path.
	volume atomicFloat

	// End-of-track subscribers: primary handler first, then listeners in
	// registration order, fired sequentially.
	endMu      sync.Mutex
	primaryEnd func(domain.Track)
	listeners  []endListener
	nextID     domain.ListenerID
}

// New creates an engine. Initialize must be called before any transport
// operation.
func New(logger *slog.Logger, cfg Config, decoder ports.StemDecoder, output ports.Output, bus ports.EventBus) *Engine {
	e := &Engine{
		logger:  logger,
		cfg:     cfg,
		decoder: decoder,
		output:  output,
		bus:     bus,
		current: -1,
		status:  domain.StatusStopped,
		phase:   domain.PhaseNoSession,
	}
	e.volume.Store(1.0)
	return e
}

// Initialize opens the output device. Idempotent: calling again while
// already initialized is a no-op returning nil. On failure the engine
// stays uninitialized and every transport call is a safe error return.
func (e *Engine) Initialize() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.initialized {
		return nil
	}

	bufFrames := e.cfg.SampleRate * e.cfg.BufferMillis / 1000
	if err := e.output.Init(beep.SampleRate(e.cfg.SampleRate), bufFrames); err != nil {
		e.logger.Error("output initialization failed", slog.Any("error", err))
		return domain.NewAudioEngineError("initialize", "", "output unavailable", err)
	}

	e.initialized = true
	e.logger.Debug("engine initialized",
		slog.Int("sample_rate", e.cfg.SampleRate),
		slog.Int("fft_size", e.cfg.FFTSize))
	return nil
}

// Initialized reports whether the output device is open.
func (e *Engine) Initialized() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.initialized
}

// RegisterPlaylist replaces the playlist and resets the play position to
// "not yet started". Valid in any state; an active session keeps playing.
func (e *Engine) RegisterPlaylist(tracks []domain.Track) {
	copied := make([]domain.Track, len(tracks))
	copy(copied, tracks)

	e.mu.Lock()
	e.playlist = copied
	e.current = -1
	e.mu.Unlock()

	e.logger.Info("playlist registered", slog.Int("tracks", len(copied)))
	e.bus.Publish(domain.NewPlaylistRegisteredEvent(copied))
}

// PlayNext advances to the next track (circular) and plays it from the
// start. On an empty playlist this is a logged no-op.
func (e *Engine) PlayNext() error {
	e.advanceMu.Lock()
	defer e.advanceMu.Unlock()

	e.mu.RLock()
	if !e.initialized {
		e.mu.RUnlock()
		return domain.ErrNotInitialized
	}
	if len(e.playlist) == 0 {
		e.mu.RUnlock()
		e.logger.Debug("play next ignored: playlist is empty")
		return nil
	}
	next := (e.current + 1) % len(e.playlist)
	e.mu.RUnlock()

	return e.playIndex(next, 0, "play_next")
}

// PlayPrevious steps back to the previous track (circular, wrapping from
// the first track to the last) and plays it from the start.
func (e *Engine) PlayPrevious() error {
	e.advanceMu.Lock()
	defer e.advanceMu.Unlock()

	e.mu.RLock()
	if !e.initialized {
		e.mu.RUnlock()
		return domain.ErrNotInitialized
	}
	n := len(e.playlist)
	if n == 0 {
		e.mu.RUnlock()
		e.logger.Debug("play previous ignored: playlist is empty")
		return nil
	}
	prev := e.current - 1
	if prev < 0 {
		prev = n - 1
	}
	e.mu.RUnlock()

	return e.playIndex(prev, 0, "play_previous")
}

// playIndex tears down any existing session, decodes both stems of the
// indexed track concurrently, and starts a fresh session at offsetSec.
// Caller must hold advanceMu.
func (e *Engine) playIndex(index int, offsetSec float64, op string) error {
	e.mu.Lock()
	if index < 0 || index >= len(e.playlist) {
		e.mu.Unlock()
		return domain.ErrPlaylistEmpty
	}
	track := e.playlist[index]

	e.generation++
	gen := e.generation
	e.teardownLocked()
	e.phase = domain.PhaseLoading
	e.current = index
	e.offset = offsetSec
	e.mu.Unlock()

	e.logger.Debug("loading track",
		slog.String("track", track.Name),
		slog.String("op", op))

	vocalBuf, instrBuf, err := e.decodeStems(track)
	if err != nil {
		e.mu.Lock()
		if gen == e.generation {
			e.phase = domain.PhaseNoSession
			e.status = domain.StatusStopped
		}
		e.mu.Unlock()

		e.logger.Error("stem decode failed",
			slog.String("track", track.Name),
			slog.Any("error", err))
		e.bus.Publish(domain.NewTrackErrorEvent(track, err))
		return domain.NewAudioEngineError(op, track.Name, "stem decode failed", err)
	}

	sess := &session{
		track:           track,
		index:           index,
		vocalBuf:        vocalBuf,
		instrumentalBuf: instrBuf,
	}
	stream := sess.buildStreams(offsetSec, e.cfg.SampleRate, e.cfg.FFTSize, e.cfg.Smoothing, func() {
		go e.handleTrackEnd(gen)
	})

	e.mu.Lock()
	if gen != e.generation {
		e.mu.Unlock()
		e.logger.Debug("superseded load discarded", slog.String("track", track.Name))
		return domain.ErrDecodeCancelled
	}
	e.sess = sess
	e.status = domain.StatusPlaying
	e.phase = domain.PhaseActive
	e.output.Play(&gainStreamer{s: stream, level: &e.volume})
	e.mu.Unlock()

	e.bus.Publish(domain.NewTrackStartedEvent(track, index))
	return nil
}

// decodeStems fetches and decodes both stems concurrently.
func (e *Engine) decodeStems(track domain.Track) (vocal, instrumental *domain.StemBuffer, err error) {
	type result struct {
		buf *domain.StemBuffer
		err error
	}

	ctx := context.Background()
	vocalCh := make(chan result, 1)
	instrCh := make(chan result, 1)

	go func() {
		buf, decodeErr := e.decoder.Decode(ctx, track.VocalRef)
		vocalCh <- result{buf, decodeErr}
	}()
	go func() {
		buf, decodeErr := e.decoder.Decode(ctx, track.InstrumentalRef)
		instrCh <- result{buf, decodeErr}
	}()

	vocalRes, instrRes := <-vocalCh, <-instrCh
	if vocalRes.err != nil {
		return nil, nil, vocalRes.err
	}
	if instrRes.err != nil {
		return nil, nil, instrRes.err
	}
	return vocalRes.buf, instrRes.buf, nil
}

// Pause suspends playback without tearing down the session.
func (e *Engine) Pause() error {
	e.mu.Lock()

	if !e.initialized {
		e.mu.Unlock()
		return domain.ErrNotInitialized
	}
	if e.sess == nil {
		e.mu.Unlock()
		return domain.ErrNoSession
	}
	if e.status == domain.StatusPaused {
		e.mu.Unlock()
		return nil
	}

	e.output.Lock()
	e.sess.ctrl.Paused = true
	e.output.Unlock()

	e.status = domain.StatusPaused
	e.phase = domain.PhaseSuspended
	track := e.sess.track
	pos := e.sess.position(e.cfg.SampleRate)
	e.mu.Unlock()

	e.bus.Publish(domain.NewTrackPausedEvent(track, pos))
	return nil
}

// Resume continues paused playback. Safe to call when already playing.
func (e *Engine) Resume() error {
	e.mu.Lock()

	if !e.initialized {
		e.mu.Unlock()
		return domain.ErrNotInitialized
	}
	if e.sess == nil {
		e.mu.Unlock()
		return domain.ErrNoSession
	}
	if e.status == domain.StatusPlaying {
		e.mu.Unlock()
		return nil
	}

	e.output.Lock()
	e.sess.ctrl.Paused = false
	e.output.Unlock()

	e.status = domain.StatusPlaying
	e.phase = domain.PhaseActive
	track := e.sess.track
	pos := e.sess.position(e.cfg.SampleRate)
	e.mu.Unlock()

	e.bus.Publish(domain.NewTrackResumedEvent(track, pos))
	return nil
}

// Stop discards the session and leaves the engine cleanly stopped.
// Idempotent and callable in any state, including mid-decode: an in-flight
// decode is invalidated and its result discarded on arrival. The playlist
// and current index survive.
func (e *Engine) Stop() error {
	e.mu.Lock()

	e.generation++
	var stopped *domain.Track
	if e.sess != nil {
		track := e.sess.track
		stopped = &track
	}
	e.output.Clear()
	e.sess = nil
	e.status = domain.StatusStopped
	e.phase = domain.PhaseNoSession
	e.mu.Unlock()

	if stopped != nil {
		e.logger.Debug("playback stopped", slog.String("track", stopped.Name))
		e.bus.Publish(domain.NewTrackStoppedEvent(*stopped))
	}
	return nil
}

// Seek restarts the session's streams at the given position. Streams
// cannot be repositioned once started, so seeking reallocates streamers
// against the session's decoded buffers; nothing is re-decoded. With no
// active session the offset is recorded for the transport clock only.
func (e *Engine) Seek(seconds float64) error {
	e.advanceMu.Lock()
	defer e.advanceMu.Unlock()

	e.mu.Lock()

	if !e.initialized {
		e.mu.Unlock()
		return domain.ErrNotInitialized
	}
	if seconds < 0 {
		seconds = 0
	}

	if e.sess == nil {
		e.offset = seconds
		e.mu.Unlock()
		return nil
	}

	sess := e.sess
	if d := sess.duration(); seconds > d {
		seconds = d
	}
	wasPaused := e.status == domain.StatusPaused

	e.generation++
	gen := e.generation
	e.output.Clear()

	stream := sess.buildStreams(seconds, e.cfg.SampleRate, e.cfg.FFTSize, e.cfg.Smoothing, func() {
		go e.handleTrackEnd(gen)
	})
	sess.ctrl.Paused = wasPaused
	e.offset = seconds
	e.output.Play(&gainStreamer{s: stream, level: &e.volume})
	track := sess.track
	e.mu.Unlock()

	e.bus.Publish(domain.NewTrackSeekedEvent(track, seconds))
	return nil
}

// SetVolume sets the master gain, clamped to [0, 1]. Takes effect on the
// next mixer pull.
func (e *Engine) SetVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	e.volume.Store(v)
	e.bus.Publish(domain.NewVolumeChangedEvent(v))
}

// Volume returns the master gain.
func (e *Engine) Volume() float64 {
	return e.volume.Load()
}

// CurrentTime returns the playback position in seconds: the last requested
// offset while stopped, the live position while a session exists.
func (e *Engine) CurrentTime() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.sess == nil {
		return e.offset
	}
	return e.sess.position(e.cfg.SampleRate)
}

// Duration returns the current track's duration in seconds, or 0 with no
// session. The vocal stem is the timing reference.
func (e *Engine) Duration() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.sess == nil {
		return 0
	}
	return e.sess.duration()
}

// CurrentTrack returns the track of the active session, or the currently
// indexed playlist entry when stopped. ok is false before the first play.
func (e *Engine) CurrentTrack() (track domain.Track, ok bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.sess != nil {
		return e.sess.track, true
	}
	if e.current >= 0 && e.current < len(e.playlist) {
		return e.playlist[e.current], true
	}
	return domain.Track{}, false
}

// CurrentIndex returns the playlist index, -1 before the first PlayNext.
func (e *Engine) CurrentIndex() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.current
}

// Status returns the transport status.
func (e *Engine) Status() domain.PlaybackStatus {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.status
}

// State returns a point-in-time snapshot of the transport.
func (e *Engine) State() domain.PlaybackState {
	e.mu.RLock()
	defer e.mu.RUnlock()

	state := domain.PlaybackState{
		CurrentIndex: e.current,
		Status:       e.status,
		Phase:        e.phase,
		Position:     e.offset,
		Volume:       e.volume.Load(),
	}
	if e.sess != nil {
		track := e.sess.track
		state.CurrentTrack = &track
		state.Position = e.sess.position(e.cfg.SampleRate)
		state.Duration = e.sess.duration()
	}
	return state
}

// VocalData returns the vocal analyzer's current spectrum, or an empty
// slice when no session is active. The returned slice is a snapshot.
func (e *Engine) VocalData() []float64 {
	e.mu.RLock()
	sess := e.sess
	e.mu.RUnlock()

	if sess == nil {
		return []float64{}
	}
	return sess.vocalTap.FrequencyData()
}

// InstrumentalData returns the instrumental analyzer's current spectrum,
// or an empty slice when no session is active.
func (e *Engine) InstrumentalData() []float64 {
	e.mu.RLock()
	sess := e.sess
	e.mu.RUnlock()

	if sess == nil {
		return []float64{}
	}
	return sess.instrumentalTap.FrequencyData()
}

// MergedData returns the element-wise maximum of the vocal and
// instrumental spectra, truncated to the shorter of the two. If only one
// source is active its data is returned verbatim; with none, an empty slice.
func (e *Engine) MergedData() []float64 {
	return mergeMax(e.VocalData(), e.InstrumentalData())
}

// mergeMax combines two magnitude arrays per the merge rule.
func mergeMax(a, b []float64) []float64 {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}

	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		if a[i] >= b[i] {
			out[i] = a[i]
		} else {
			out[i] = b[i]
		}
	}
	return out
}

// SetOnEndedHandler installs the primary end-of-track handler. It fires
// before all listeners. Passing nil clears it.
func (e *Engine) SetOnEndedHandler(fn func(domain.Track)) {
	e.endMu.Lock()
	defer e.endMu.Unlock()
	e.primaryEnd = fn
}

// AddOnEndedListener appends a listener to the end-of-track subscriber
// list. Listeners fire after the primary handler, in registration order.
func (e *Engine) AddOnEndedListener(fn func(domain.Track)) domain.ListenerID {
	e.endMu.Lock()
	defer e.endMu.Unlock()

	e.nextID++
	e.listeners = append(e.listeners, endListener{id: e.nextID, fn: fn})
	return e.nextID
}

// RemoveOnEndedListener removes a listener. Safe to call from within the
// listener's own callback: the firing pass works on a defensive copy.
func (e *Engine) RemoveOnEndedListener(id domain.ListenerID) {
	e.endMu.Lock()
	defer e.endMu.Unlock()

	for i, l := range e.listeners {
		if l.id == id {
			e.listeners = append(e.listeners[:i], e.listeners[i+1:]...)
			return
		}
	}
}

// handleTrackEnd runs when the vocal stream reaches its natural end. The
// instrumental stem never triggers it: the vocal stream is the clock.
func (e *Engine) handleTrackEnd(gen uint64) {
	e.mu.Lock()
	if gen != e.generation || e.sess == nil {
		e.mu.Unlock()
		return
	}
	track := e.sess.track
	index := e.sess.index

	e.generation++
	e.output.Clear()
	e.sess = nil
	e.status = domain.StatusStopped
	e.phase = domain.PhaseNoSession
	e.offset = 0
	e.mu.Unlock()

	e.logger.Debug("track completed", slog.String("track", track.Name))
	e.bus.Publish(domain.NewTrackCompletedEvent(track, index))

	e.endMu.Lock()
	primary := e.primaryEnd
	listeners := make([]endListener, len(e.listeners))
	copy(listeners, e.listeners)
	e.endMu.Unlock()

	if primary != nil {
		primary(track)
	}
	for _, l := range listeners {
		l.fn(track)
	}
}

// teardownLocked discards the session and clears the output.
// Caller must hold e.mu.
func (e *Engine) teardownLocked() {
	e.output.Clear()
	e.sess = nil
	e.status = domain.StatusStopped
	e.phase = domain.PhaseNoSession
}

// Close stops playback and releases the output device.
func (e *Engine) Close() error {
	if err := e.Stop(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.initialized {
		return nil
	}
	e.initialized = false
	return e.output.Close()
}
