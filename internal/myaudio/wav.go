package myaudio

import (
	"io"
	"os"
	"path/filepath"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/tphakala/lvacfs-go/internal/errors"
)

// pcmBitDepth is the only sample width the file path handles.
const pcmBitDepth = 16

// PCM is interleaved 16-bit little endian audio.
type PCM struct {
	Data       []byte
	SampleRate int
	Channels   int
}

// FrameSize returns the byte size of one frame.
func (p *PCM) FrameSize() int {
	return p.Channels * pcmBitDepth / 8
}

// Frames returns the number of whole frames in Data.
func (p *PCM) Frames() int {
	if fs := p.FrameSize(); fs > 0 {
		return len(p.Data) / fs
	}
	return 0
}

// ReadWAV decodes a 16-bit PCM WAV stream.
func ReadWAV(r io.ReadSeeker) (*PCM, error) {
	decoder := wav.NewDecoder(r)
	decoder.ReadInfo()
	if !decoder.IsValidFile() {
		return nil, errors.Newf("input is not a valid WAV audio file").
			Component("audio").
			Category(errors.CategoryValidation).
			Build()
	}

	if decoder.BitDepth != pcmBitDepth {
		return nil, errors.Newf("unsupported bit depth: %d", decoder.BitDepth).
			Component("audio").
			Category(errors.CategoryValidation).
			Context("bit_depth", decoder.BitDepth).
			Build()
	}
	if decoder.NumChans == 0 {
		return nil, errors.Newf("WAV file declares no channels").
			Component("audio").
			Category(errors.CategoryValidation).
			Build()
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, errors.New(err).
			Component("audio").
			Category(errors.CategoryFileIO).
			Operation("decode-wav").
			Build()
	}

	return &PCM{
		Data:       intsToBytes(buf.Data, nil),
		SampleRate: int(decoder.SampleRate),
		Channels:   int(decoder.NumChans),
	}, nil
}

// WriteWAV encodes pcm as a 16-bit WAV stream.
func WriteWAV(w io.WriteSeeker, pcm *PCM) error {
	enc := wav.NewEncoder(w, pcm.SampleRate, pcmBitDepth, pcm.Channels, 1)

	buf := &audio.IntBuffer{
		Data:           bytesToInts(pcm.Data),
		Format:         &audio.Format{SampleRate: pcm.SampleRate, NumChannels: pcm.Channels},
		SourceBitDepth: pcmBitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return errors.New(err).
			Component("audio").
			Category(errors.CategoryFileIO).
			Operation("encode-wav").
			Build()
	}
	return enc.Close()
}

// ReadWAVFile decodes the WAV file at path.
func ReadWAVFile(path string) (*PCM, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path is an operator supplied input file
	if err != nil {
		return nil, errors.New(err).
			Component("audio").
			Category(errors.CategoryFileIO).
			Operation("open-input").
			Build()
	}
	defer func() { _ = f.Close() }()
	return ReadWAV(f)
}

// SavePCMDataToWAV writes pcm to filePath, creating parent directories.
func SavePCMDataToWAV(filePath string, pcm *PCM) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return errors.New(err).
			Component("audio").
			Category(errors.CategoryFileIO).
			Operation("create-output-dir").
			Build()
	}

	outFile, err := os.Create(filePath) //nolint:gosec // G304: path is an operator supplied output file
	if err != nil {
		return errors.New(err).
			Component("audio").
			Category(errors.CategoryFileIO).
			Operation("create-output").
			Build()
	}

	if err := WriteWAV(outFile, pcm); err != nil {
		_ = outFile.Close()
		return err
	}
	return outFile.Close()
}
