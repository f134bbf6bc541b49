package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

const (
	// pcmFormat is the WAVE_FORMAT_PCM tag.
	pcmFormat = 1
	// supportedBitDepth is the only sample size the player accepts.
	supportedBitDepth = 16
	// fmtChunkSize is the size of the plain PCM fmt chunk.
	fmtChunkSize = 16
)

var (
	// ErrNotWAV is returned when the data has no RIFF/WAVE header.
	ErrNotWAV = errors.New("not a RIFF/WAVE file")
	// ErrUnsupportedFormat is returned for anything other than 16-bit PCM.
	ErrUnsupportedFormat = errors.New("unsupported WAV format")
	// ErrNoData is returned when the file has no data chunk.
	ErrNoData = errors.New("WAV file has no data chunk")
)

// Format describes a PCM stream.
type Format struct {
	// SampleRate is in Hz.
	SampleRate int
	// Channels is 1 for mono, 2 for stereo.
	Channels int
	// BitDepth is bits per sample.
	BitDepth int
}

// ParseWAV reads the format and the raw PCM samples of a WAV file.
//
//nolint:cyclop // Chunk walking is a flat loop with a few cases.
func ParseWAV(data []byte) (Format, []byte, error) {
	var format Format

	reader := bytes.NewReader(data)

	header := make([]byte, 12)
	if _, err := io.ReadFull(reader, header); err != nil {
		return format, nil, fmt.Errorf("%w: %w", ErrNotWAV, err)
	}

	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return format, nil, ErrNotWAV
	}

	var sawFormat bool

	for {
		var chunk struct {
			ID   [4]byte
			Size uint32
		}

		if err := binary.Read(reader, binary.LittleEndian, &chunk); err != nil {
			if errors.Is(err, io.EOF) {
				return format, nil, ErrNoData
			}

			return format, nil, fmt.Errorf("read chunk header: %w", err)
		}

		switch string(chunk.ID[:]) {
		case "fmt ":
			var fmtChunk struct {
				AudioFormat   uint16
				Channels      uint16
				SampleRate    uint32
				ByteRate      uint32
				BlockAlign    uint16
				BitsPerSample uint16
			}

			if err := binary.Read(reader, binary.LittleEndian, &fmtChunk); err != nil {
				return format, nil, fmt.Errorf("read fmt chunk: %w", err)
			}

			if fmtChunk.AudioFormat != pcmFormat || fmtChunk.BitsPerSample != supportedBitDepth {
				return format, nil, fmt.Errorf("%w: format %d, %d bits",
					ErrUnsupportedFormat, fmtChunk.AudioFormat, fmtChunk.BitsPerSample)
			}

			format = Format{
				SampleRate: int(fmtChunk.SampleRate),
				Channels:   int(fmtChunk.Channels),
				BitDepth:   int(fmtChunk.BitsPerSample),
			}
			sawFormat = true

			if _, err := reader.Seek(int64(chunk.Size)-fmtChunkSize, io.SeekCurrent); err != nil {
				return format, nil, fmt.Errorf("skip fmt extension: %w", err)
			}
		case "data":
			if !sawFormat {
				return format, nil, fmt.Errorf("%w: data before fmt", ErrUnsupportedFormat)
			}

			size := min(int(chunk.Size), reader.Len())
			samples := make([]byte, size)

			if _, err := io.ReadFull(reader, samples); err != nil {
				return format, nil, fmt.Errorf("read samples: %w", err)
			}

			return format, samples, nil
		default:
			// Chunks are word-aligned.
			skip := int64(chunk.Size) + int64(chunk.Size%2)
			if _, err := reader.Seek(skip, io.SeekCurrent); err != nil {
				return format, nil, fmt.Errorf("skip chunk: %w", err)
			}
		}
	}
}

// EncodeWAV wraps 16-bit PCM samples in a WAV container.
//
//nolint:gosec // Sizes fit in 32 bits for any clip this package produces.
func EncodeWAV(format Format, samples []byte) []byte {
	blockAlign := format.Channels * format.BitDepth / 8

	out := make([]byte, 0, 44+len(samples))
	out = append(out, "RIFF"...)
	out = binary.LittleEndian.AppendUint32(out, uint32(36+len(samples)))
	out = append(out, "WAVEfmt "...)
	out = binary.LittleEndian.AppendUint32(out, fmtChunkSize)
	out = binary.LittleEndian.AppendUint16(out, pcmFormat)
	out = binary.LittleEndian.AppendUint16(out, uint16(format.Channels))
	out = binary.LittleEndian.AppendUint32(out, uint32(format.SampleRate))
	out = binary.LittleEndian.AppendUint32(out, uint32(format.SampleRate*blockAlign))
	out = binary.LittleEndian.AppendUint16(out, uint16(blockAlign))
	out = binary.LittleEndian.AppendUint16(out, uint16(format.BitDepth))
	out = append(out, "data"...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(samples)))
	out = append(out, samples...)

	return out
}

// ChimeFormat matches the usual speech synthesis output so the chime and
// synthesized announcements share one audio context.
//
//nolint:gochecknoglobals // Immutable value type.
var ChimeFormat = Format{SampleRate: 24000, Channels: 1, BitDepth: supportedBitDepth}

// Chime returns the built-in two-tone time signal as a WAV file.
func Chime() []byte {
	const (
		noteSeconds = 0.45
		amplitude   = 0.35
	)

	notes := []float64{880, 659.25}
	perNote := int(noteSeconds * float64(ChimeFormat.SampleRate))
	samples := make([]byte, 0, len(notes)*perNote*2)

	for _, frequency := range notes {
		for i := range perNote {
			t := float64(i) / float64(ChimeFormat.SampleRate)
			// Linear fade-out avoids a click at each note end.
			envelope := 1 - float64(i)/float64(perNote)
			value := int16(math.Sin(2*math.Pi*frequency*t) * amplitude * envelope * math.MaxInt16)
			samples = binary.LittleEndian.AppendUint16(samples, uint16(value))
		}
	}

	return EncodeWAV(ChimeFormat, samples)
}
