package timesignal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/oshokin/flipclock/internal/audio"
	"github.com/oshokin/flipclock/internal/config"
	"github.com/oshokin/flipclock/internal/domain/alarm"
	"github.com/oshokin/flipclock/internal/logger"
	"github.com/oshokin/flipclock/internal/scheduler"
	"github.com/oshokin/flipclock/internal/voice"
)

// errPlayerRequired is returned when no audio player is supplied.
var errPlayerRequired = errors.New("audio player must be provided")

// Speaker turns text into a WAV payload.
type Speaker interface {
	Speak(ctx context.Context, text string) ([]byte, error)
}

// SoundAction plays a fixed clip.
type SoundAction struct {
	// clip is the WAV file played on every alarm.
	clip []byte
	// player outputs the clip.
	player audio.Player
}

// NewSoundAction creates an action playing clip through player.
func NewSoundAction(clip []byte, player audio.Player) *SoundAction {
	return &SoundAction{
		clip:   clip,
		player: player,
	}
}

// Fire plays the clip.
func (a *SoundAction) Fire(ctx context.Context, _ alarm.Entry) error {
	if err := a.player.Play(ctx, a.clip); err != nil {
		return fmt.Errorf("play clip: %w", err)
	}

	return nil
}

// VoiceAction announces the alarm time through speech synthesis.
type VoiceAction struct {
	// speaker synthesizes the phrase.
	speaker Speaker
	// player outputs the synthesized audio.
	player audio.Player
}

// NewVoiceAction creates an action announcing through speaker and player.
func NewVoiceAction(speaker Speaker, player audio.Player) *VoiceAction {
	return &VoiceAction{
		speaker: speaker,
		player:  player,
	}
}

// Fire synthesizes and plays the announcement for at.
func (a *VoiceAction) Fire(ctx context.Context, at alarm.Entry) error {
	phrase := voice.Phrase(at.Hour, at.Minute)
	logger.DebugKV(ctx, "Requesting announcement", "phrase", phrase)

	wav, err := a.speaker.Speak(ctx, phrase)
	if err != nil {
		return fmt.Errorf("synthesize announcement: %w", err)
	}

	if err = a.player.Play(ctx, wav); err != nil {
		return fmt.Errorf("play announcement: %w", err)
	}

	return nil
}

// New builds the action selected by settings.
//
//nolint:ireturn // The caller only needs the Action capability.
func New(ctx context.Context, settings *config.TimeSignal, player audio.Player) (scheduler.Action, error) {
	if player == nil {
		return nil, errPlayerRequired
	}

	switch settings.Mode {
	case config.ModeVoice:
		client, err := voice.NewClient(
			settings.Voice.BaseURL,
			settings.Voice.Speaker,
			voice.WithTimeout(settings.Voice.Timeout),
		)
		if err != nil {
			return nil, err
		}

		logger.InfoKV(ctx, "Time signal uses speech synthesis",
			"base_url", settings.Voice.BaseURL, "speaker", settings.Voice.Speaker)

		return NewVoiceAction(client, player), nil
	default:
		clip, err := loadClip(settings.SoundFile)
		if err != nil {
			return nil, err
		}

		logger.InfoKV(ctx, "Time signal uses a sound clip", "sound_file", settings.SoundFile)

		return NewSoundAction(clip, player), nil
	}
}

// loadClip reads and checks a WAV file; an empty path yields the built-in chime.
func loadClip(path string) ([]byte, error) {
	if path == "" {
		return audio.Chime(), nil
	}

	clip, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read sound file: %w", err)
	}

	if _, _, err = audio.ParseWAV(clip); err != nil {
		return nil, fmt.Errorf("sound file %s: %w", path, err)
	}

	return clip, nil
}
