package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// pollInterval is how often playback completion is checked.
const pollInterval = 10 * time.Millisecond

// ErrFormatMismatch is returned when a clip does not match the format the
// audio context was opened with. A process can open only one context.
var ErrFormatMismatch = errors.New("clip format differs from the audio context")

// Player plays WAV clips.
type Player interface {
	Play(ctx context.Context, wav []byte) error
}

// DevicePlayer plays clips on the system audio device through oto.
// The device context is opened lazily with the format of the first clip.
type DevicePlayer struct {
	// once guards context creation.
	once sync.Once
	// device is the shared oto context, nil when opening failed.
	device *oto.Context
	// format is the format the context was opened with.
	format Format
	// initErr is the context creation failure, if any.
	initErr error
	// mu serializes playback so announcements never talk over each other.
	mu sync.Mutex
}

// NewDevicePlayer creates a player; the audio device is opened on first use.
func NewDevicePlayer() *DevicePlayer {
	return new(DevicePlayer)
}

// Play decodes wav and blocks until playback finishes or ctx is done.
func (p *DevicePlayer) Play(ctx context.Context, wav []byte) error {
	format, samples, err := ParseWAV(wav)
	if err != nil {
		return fmt.Errorf("decode clip: %w", err)
	}

	if err = p.open(format); err != nil {
		return err
	}

	if format != p.format {
		return fmt.Errorf("%w: clip %+v, context %+v", ErrFormatMismatch, format, p.format)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	player := p.device.NewPlayer(bytes.NewReader(samples))

	defer func() {
		//nolint:errcheck // Closing a finished player only releases buffers.
		_ = player.Close()
	}()

	player.Play()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()

			return ctx.Err()
		case <-ticker.C:
		}
	}

	if err = player.Err(); err != nil {
		return fmt.Errorf("playback: %w", err)
	}

	return nil
}

// open creates the oto context once and waits for the device to be ready.
func (p *DevicePlayer) open(format Format) error {
	p.once.Do(func() {
		options := &oto.NewContextOptions{
			SampleRate:   format.SampleRate,
			ChannelCount: format.Channels,
			Format:       oto.FormatSignedInt16LE,
		}

		device, ready, err := oto.NewContext(options)
		if err != nil {
			p.initErr = fmt.Errorf("open audio device: %w", err)

			return
		}

		<-ready

		p.device = device
		p.format = format
	})

	return p.initErr
}
