package engine

import (
	"github.com/gopxl/beep/v2"

	"github.com/stellarsound/ringlight/internal/domain"
	"github.com/stellarsound/ringlight/internal/spectral"
)

// session is one active pair of synchronized stem streams with their
// analysis taps. Sessions are created fresh on every play and discarded
// whole on stop; individual streams are never restarted.
type session struct {
	track domain.Track
	index int

	// Decoded PCM, kept for seek: restarting at a new offset allocates new
	// streamers against these buffers without re-decoding.
	vocalBuf        *domain.StemBuffer
	instrumentalBuf *domain.StemBuffer

	vocalTap        *spectral.Analyzer
	instrumentalTap *spectral.Analyzer

	// ctrl pauses/resumes the whole mix; mutate only under output.Lock.
	ctrl *beep.Ctrl

	// offset is the position in seconds at which the current streamers started.
	offset float64
}

// duration returns the track length in seconds. The vocal stem is the
// timing reference, so its buffer defines the duration.
func (s *session) duration() float64 {
	return s.vocalBuf.Duration().Seconds()
}

// position returns the playback position in seconds: the start offset plus
// the time represented by the frames that have flowed through the vocal tap.
func (s *session) position(sampleRate int) float64 {
	pos := s.offset + float64(s.vocalTap.Consumed())/float64(sampleRate)
	if d := s.duration(); pos > d {
		pos = d
	}
	return pos
}

// buildStreams allocates fresh streamers and analyzer taps at the given
// offset, wires the end-of-track callback to the vocal stream's natural
// end, and returns the streamer to hand to the output.
//
// Analyzers are constructed before the streams are handed out, so the first
// mixer pull already flows through them. Vocal and instrumental join in a
// single Mix passed to the output in one call, which starts both on the
// same mixer pull.
func (s *session) buildStreams(offsetSec float64, sampleRate, fftSize int, smoothing float64, onVocalEnd func()) beep.Streamer {
	s.offset = offsetSec
	fromFrame := int(offsetSec * float64(sampleRate))

	vocal := newBufferStreamer(s.vocalBuf, fromFrame)
	instrumental := newBufferStreamer(s.instrumentalBuf, fromFrame)

	s.vocalTap = spectral.NewAnalyzer(vocal, fftSize, smoothing)
	s.instrumentalTap = spectral.NewAnalyzer(instrumental, fftSize, smoothing)

	mix := beep.Mix(
		beep.Seq(s.vocalTap, beep.Callback(onVocalEnd)),
		s.instrumentalTap,
	)
	s.ctrl = &beep.Ctrl{Streamer: mix}

	return s.ctrl
}
