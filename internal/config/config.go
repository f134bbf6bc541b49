package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by the flipclock binaries.
type Config struct {
	// AlarmsFile is the JSON file holding the stored alarm list.
	AlarmsFile string `yaml:"alarms_file" env:"FLIPCLOCK_ALARMS_FILE" env-default:"flipclock-alarms.json"`
	// ControlAddress is the gRPC address the clock listens on and flipclock-ctl dials.
	// Empty or AddressOff disables the control server.
	ControlAddress string `yaml:"control_addr" env:"FLIPCLOCK_CONTROL_ADDR" env-default:"127.0.0.1:50061"`
	// HTTPAddress is the HTTP API listen address. Empty or AddressOff disables it.
	HTTPAddress string `yaml:"http_addr" env:"FLIPCLOCK_HTTP_ADDR" env-default:"127.0.0.1:8061"`
	// CORS configures cross-origin access to the HTTP API.
	CORS CORS `yaml:"cors"`
	// LogLevel is the minimum log level.
	LogLevel string `yaml:"log_level" env:"FLIPCLOCK_LOG_LEVEL" env-default:"info"`
	// LogFile receives logs while the terminal display owns stdout.
	LogFile string `yaml:"log_file" env:"FLIPCLOCK_LOG_FILE" env-default:"flipclock.log"`
	// Timeout is the duration for control RPC calls.
	Timeout time.Duration `yaml:"timeout" env:"FLIPCLOCK_TIMEOUT" env-default:"5s"`
	// DailyChime enables the built-in 20:50 announcement.
	DailyChime bool `yaml:"daily_chime" env:"FLIPCLOCK_DAILY_CHIME"`
	// Flip configures the digit flip animation.
	Flip Flip `yaml:"flip"`
	// TimeSignal selects and configures the alarm action.
	TimeSignal TimeSignal `yaml:"time_signal"`
}

// CORS lists the origins allowed to call the HTTP API from a browser.
type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"FLIPCLOCK_CORS_ORIGINS" env-separator:","`
}

// Flip configures the digit flip engine.
type Flip struct {
	// Overlap is "keep" or "replace"; see flip.OverlapPolicy.
	Overlap string `yaml:"overlap" env:"FLIPCLOCK_FLIP_OVERLAP" env-default:"keep"`
}

// TimeSignal selects the alarm action.
type TimeSignal struct {
	// Mode is "sound" or "voice".
	Mode string `yaml:"mode" env:"FLIPCLOCK_SIGNAL_MODE" env-default:"sound"`
	// SoundFile is a WAV clip for the sound mode. Empty uses the built-in chime.
	SoundFile string `yaml:"sound_file" env:"FLIPCLOCK_SOUND_FILE"`
	// Voice configures the speech synthesis engine for the voice mode.
	Voice Voice `yaml:"voice"`
}

// Voice configures the speech synthesis engine.
type Voice struct {
	// BaseURL is the synthesis engine root, e.g. http://127.0.0.1:50021.
	BaseURL string `yaml:"base_url" env:"FLIPCLOCK_VOICE_URL" env-default:"http://127.0.0.1:50021"`
	// Speaker is the synthesis speaker id.
	Speaker int `yaml:"speaker" env:"FLIPCLOCK_VOICE_SPEAKER" env-default:"3"`
	// Timeout bounds each synthesis request.
	Timeout time.Duration `yaml:"timeout" env:"FLIPCLOCK_VOICE_TIMEOUT" env-default:"10s"`
}

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "flipclock-settings.yaml"

	// DefaultAlarmsFilename is the default filename for the alarm list.
	DefaultAlarmsFilename = "flipclock-alarms.json"

	// DefaultControlAddress is the default gRPC control address.
	DefaultControlAddress = "127.0.0.1:50061"

	// DefaultHTTPAddress is the default HTTP API address.
	DefaultHTTPAddress = "127.0.0.1:8061"

	// AddressOff disables a listener. An empty value in the YAML file is
	// replaced by the default, so the file needs an explicit keyword.
	AddressOff = "off"

	// DefaultLogFilename is the default log file for the terminal display.
	DefaultLogFilename = "flipclock.log"

	// DefaultTimeout is the default duration for control RPC calls.
	DefaultTimeout = 5 * time.Second

	// DefaultVoiceURL is the default speech synthesis engine address.
	DefaultVoiceURL = "http://127.0.0.1:50021"

	// DefaultVoiceSpeaker is the default synthesis speaker id.
	DefaultVoiceSpeaker = 3

	// DefaultVoiceTimeout bounds each synthesis request.
	DefaultVoiceTimeout = 10 * time.Second

	// DefaultFilePermissions is the default file permission for config and data files.
	DefaultFilePermissions = 0o600
)

const (
	// ModeSound plays a local clip.
	ModeSound = "sound"
	// ModeVoice announces the time through speech synthesis.
	ModeVoice = "voice"

	// OverlapKeep lets an in-flight flip commit finish.
	OverlapKeep = "keep"
	// OverlapReplace cancels an in-flight flip commit.
	OverlapReplace = "replace"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errUnknownMode is returned for an unsupported time signal mode.
	errUnknownMode = errors.New("unknown time signal mode")
	// errUnknownOverlap is returned for an unsupported flip overlap policy.
	errUnknownOverlap = errors.New("unknown flip overlap policy")
	// errNegativeSpeaker is returned for a negative speaker id.
	errNegativeSpeaker = errors.New("speaker id must not be negative")
)

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{
		ControlAddress: DefaultControlAddress,
		HTTPAddress:    DefaultHTTPAddress,
		TimeSignal:     TimeSignal{Voice: Voice{Speaker: DefaultVoiceSpeaker}},
	}

	//nolint:errcheck // Validate only fails on invalid explicit values; defaults are valid.
	_ = Validate(cfg)

	return cfg
}

// Load reads configuration from the provided path and validates it.
// A missing file at the default path yields defaults plus environment overrides.
func Load(path string) (*Config, error) {
	explicit := path != "" && path != DefaultConfigFilename
	if !explicit {
		path = DefaultConfigFilename
	}

	var cfg Config

	_, err := os.Stat(filepath.Clean(path))

	switch {
	case err == nil:
		if err = cleanenv.ReadConfig(filepath.Clean(path), &cfg); err != nil {
			return nil, fmt.Errorf("read settings: %w", err)
		}

		if err = restoreZeroSpeaker(path, &cfg); err != nil {
			return nil, err
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		if err = cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("read environment: %w", err)
		}
	default:
		return nil, fmt.Errorf("read settings: %w", err)
	}

	if err = Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	// An empty address would read back as the default.
	out := *cfg
	if out.ControlAddress == "" {
		out.ControlAddress = AddressOff
	}

	if out.HTTPAddress == "" {
		out.HTTPAddress = AddressOff
	}

	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Enabled reports whether a listen address turns its server on.
func Enabled(address string) bool {
	return address != "" && !strings.EqualFold(address, AddressOff)
}

// ControlEnabled reports whether the gRPC control server is on.
func (c *Config) ControlEnabled() bool {
	return Enabled(c.ControlAddress)
}

// HTTPEnabled reports whether the HTTP API is on.
func (c *Config) HTTPEnabled() bool {
	return Enabled(c.HTTPAddress)
}

// restoreZeroSpeaker keeps an explicit "speaker: 0" from the file,
// which cleanenv treats as unset and replaces with the default.
func restoreZeroSpeaker(path string, cfg *Config) error {
	if _, ok := os.LookupEnv("FLIPCLOCK_VOICE_SPEAKER"); ok {
		return nil
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("read settings: %w", err)
	}

	var raw struct {
		TimeSignal struct {
			Voice struct {
				Speaker *int `yaml:"speaker"`
			} `yaml:"voice"`
		} `yaml:"time_signal"`
	}

	// Non-YAML files were already decoded by cleanenv.
	if yaml.Unmarshal(data, &raw) != nil {
		return nil
	}

	if speaker := raw.TimeSignal.Voice.Speaker; speaker != nil {
		cfg.TimeSignal.Voice.Speaker = *speaker
	}

	return nil
}

// Validate checks the provided settings and fills defaults for empty fields.
//
//nolint:cyclop // A flat list of field checks reads better than helpers.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if settings.AlarmsFile == "" {
		settings.AlarmsFile = DefaultAlarmsFilename
	}

	if Enabled(settings.ControlAddress) {
		if _, err := net.ResolveTCPAddr("tcp", settings.ControlAddress); err != nil {
			return fmt.Errorf("invalid control address: %w", err)
		}
	}

	if Enabled(settings.HTTPAddress) {
		if _, err := net.ResolveTCPAddr("tcp", settings.HTTPAddress); err != nil {
			return fmt.Errorf("invalid http address: %w", err)
		}
	}

	if settings.LogLevel == "" {
		settings.LogLevel = "info"
	}

	if settings.LogFile == "" {
		settings.LogFile = DefaultLogFilename
	}

	if settings.Timeout <= 0 {
		settings.Timeout = DefaultTimeout
	}

	settings.Flip.Overlap = strings.ToLower(strings.TrimSpace(settings.Flip.Overlap))
	switch settings.Flip.Overlap {
	case "":
		settings.Flip.Overlap = OverlapKeep
	case OverlapKeep, OverlapReplace:
	default:
		return fmt.Errorf("%w: %q", errUnknownOverlap, settings.Flip.Overlap)
	}

	return validateTimeSignal(&settings.TimeSignal)
}

func validateTimeSignal(signal *TimeSignal) error {
	signal.Mode = strings.ToLower(strings.TrimSpace(signal.Mode))
	switch signal.Mode {
	case "":
		signal.Mode = ModeSound
	case ModeSound, ModeVoice:
	default:
		return fmt.Errorf("%w: %q", errUnknownMode, signal.Mode)
	}

	voice := &signal.Voice
	if voice.BaseURL == "" {
		voice.BaseURL = DefaultVoiceURL
	}

	if _, err := url.ParseRequestURI(voice.BaseURL); err != nil {
		return fmt.Errorf("invalid voice base URL: %w", err)
	}

	if voice.Speaker < 0 {
		return errNegativeSpeaker
	}

	if voice.Timeout <= 0 {
		voice.Timeout = DefaultVoiceTimeout
	}

	return nil
}
