package codec

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbegin/spatialfx-go/internal/pcm"
)

func TestSniff(t *testing.T) {
	tests := []struct {
		head []byte
		want Format
	}{
		{[]byte("RIFF\x24\x00\x00\x00WAVE"), FormatWAV},
		{[]byte("OggS\x00\x02"), FormatOgg},
		{[]byte("ID3\x04\x00"), FormatMP3},
		{[]byte{0xFF, 0xFB, 0x90, 0x00}, FormatMP3},
		{[]byte("fLaC"), FormatUnknown},
		{nil, FormatUnknown},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Sniff(tc.head), "%q", tc.head)
	}
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatWAV, FormatFromPath("a/b/take.WAV"))
	assert.Equal(t, FormatMP3, FormatFromPath("song.mp3"))
	assert.Equal(t, FormatOgg, FormatFromPath("x.ogg"))
	assert.Equal(t, FormatUnknown, FormatFromPath("notes.txt"))
}

func TestWAVRoundTrip(t *testing.T) {
	for _, depth := range []int{16, 24} {
		in := pcm.New(22050, 2, 2205)
		for i := range in.Channels[0] {
			in.Channels[0][i] = float32(0.5 * math.Sin(2*math.Pi*440*float64(i)/22050))
			in.Channels[1][i] = -in.Channels[0][i]
		}
		path := filepath.Join(t.TempDir(), "out.wav")
		require.NoError(t, WriteWAVFile(path, in, depth))

		out, err := DecodeFile(path)
		require.NoError(t, err)
		require.Equal(t, in.SampleRate, out.SampleRate)
		require.Equal(t, in.NumChannels(), out.NumChannels())
		require.Equal(t, in.Frames(), out.Frames())
		tol := 1.5 / math.Ldexp(1, depth-1)
		for c := range in.Channels {
			for i, v := range in.Channels[c] {
				require.InDelta(t, v, out.Channels[c][i], tol, "depth %d ch %d frame %d", depth, c, i)
			}
		}
	}
}

func TestDecodeIgnoresMisleadingExtension(t *testing.T) {
	in := pcm.New(8000, 1, 100)
	in.Channels[0][10] = 0.25
	dir := t.TempDir()
	wavPath := filepath.Join(dir, "a.wav")
	require.NoError(t, WriteWAVFile(wavPath, in, 16))
	data, err := os.ReadFile(wavPath)
	require.NoError(t, err)

	out, err := Decode(bytes.NewReader(data), FormatMP3)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, out.Channels[0][10], 1e-4)
}

func TestDecodeUnknown(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("not audio at all")), FormatUnknown)
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = Decode(bytes.NewReader([]byte("garbage")), FormatWAV)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestWriteWAVRejectsInvalidBuffer(t *testing.T) {
	err := WriteWAVFile(filepath.Join(t.TempDir(), "x.wav"), &pcm.Buffer{}, 16)
	assert.ErrorIs(t, err, pcm.ErrInvalidBuffer)
}
