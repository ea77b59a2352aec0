// Package codec decodes compressed and PCM audio files into planar buffers
// and writes rendered buffers back out as WAV.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"

	"github.com/cbegin/spatialfx-go/internal/pcm"
)

var (
	ErrUnknownFormat = errors.New("codec: unknown audio format")
	ErrDecode        = errors.New("codec: decode failed")
)

type Format string

const (
	FormatUnknown Format = ""
	FormatWAV     Format = "wav"
	FormatMP3     Format = "mp3"
	FormatOgg     Format = "ogg"
)

const wavFormatIEEEFloat = 3

// FormatFromPath guesses the format from a file extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".wave":
		return FormatWAV
	case ".mp3":
		return FormatMP3
	case ".ogg", ".oga":
		return FormatOgg
	default:
		return FormatUnknown
	}
}

// Sniff identifies a format from the first bytes of a file.
func Sniff(head []byte) Format {
	switch {
	case len(head) >= 12 && bytes.Equal(head[:4], []byte("RIFF")) && bytes.Equal(head[8:12], []byte("WAVE")):
		return FormatWAV
	case len(head) >= 4 && bytes.Equal(head[:4], []byte("OggS")):
		return FormatOgg
	case len(head) >= 3 && bytes.Equal(head[:3], []byte("ID3")):
		return FormatMP3
	case len(head) >= 2 && head[0] == 0xFF && head[1]&0xE0 == 0xE0:
		return FormatMP3
	default:
		return FormatUnknown
	}
}

// Decode reads a whole stream. The content is sniffed first; the extension
// hint is used only when the bytes are not recognised.
func Decode(r io.ReadSeeker, hint Format) (*pcm.Buffer, error) {
	head := make([]byte, 12)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	format := Sniff(head[:n])
	if format == FormatUnknown {
		format = hint
	}
	switch format {
	case FormatWAV:
		return DecodeWAV(r)
	case FormatMP3:
		return DecodeMP3(r)
	case FormatOgg:
		return DecodeOgg(r)
	default:
		return nil, ErrUnknownFormat
	}
}

// DecodeFile opens and decodes path.
func DecodeFile(path string) (*pcm.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	buf, err := Decode(f, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return buf, nil
}

func DecodeWAV(r io.ReadSeeker) (*pcm.Buffer, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: invalid wav file", ErrDecode)
	}
	if dec.WavAudioFormat == wavFormatIEEEFloat {
		return nil, fmt.Errorf("%w: floating point wav is not supported", ErrDecode)
	}
	ib, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	ib.SourceBitDepth = int(dec.BitDepth)
	if ib.SourceBitDepth == 8 {
		// 8-bit wav samples are unsigned
		for i, v := range ib.Data {
			ib.Data[i] = v - 128
		}
	}
	return pcm.FromIntBuffer(ib)
}

// DecodeMP3 decodes an MP3 stream. The decoder always yields 16-bit stereo.
func DecodeMP3(r io.Reader) (*pcm.Buffer, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	samples := make([]float32, len(raw)/2)
	for i := range samples {
		v := int16(uint16(raw[2*i]) | uint16(raw[2*i+1])<<8)
		samples[i] = float32(v) / 32768
	}
	return pcm.FromInterleaved(samples, 2, dec.SampleRate())
}

func DecodeOgg(r io.Reader) (*pcm.Buffer, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	channels := dec.Channels()
	var samples []float32
	chunk := make([]float32, 4096*channels)
	for {
		n, err := dec.Read(chunk)
		samples = append(samples, chunk[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecode, err)
		}
		if n == 0 {
			break
		}
	}
	return pcm.FromInterleaved(samples, channels, dec.SampleRate())
}

// WriteWAV encodes buf as integer PCM. bitDepth defaults to 16.
func WriteWAV(w io.WriteSeeker, buf *pcm.Buffer, bitDepth int) error {
	if err := buf.Validate(); err != nil {
		return err
	}
	if bitDepth <= 0 {
		bitDepth = 16
	}
	enc := wav.NewEncoder(w, buf.SampleRate, bitDepth, buf.NumChannels(), 1)
	if err := enc.Write(buf.ToIntBuffer(bitDepth)); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

// WriteWAVFile creates path and writes buf to it.
func WriteWAVFile(path string, buf *pcm.Buffer, bitDepth int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteWAV(f, buf, bitDepth); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
