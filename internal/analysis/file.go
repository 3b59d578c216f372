package analysis

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tphakala/lvacfs-go/internal/conf"
	"github.com/tphakala/lvacfs-go/internal/errors"
	"github.com/tphakala/lvacfs-go/internal/logger"
	"github.com/tphakala/lvacfs-go/internal/lvacfs"
	"github.com/tphakala/lvacfs-go/internal/myaudio"
)

// FileResult summarizes one file run.
type FileResult struct {
	StreamID   string
	Frames     uint64
	SampleRate int
	Channels   int
	Elapsed    time.Duration
}

// FileProcessing runs a 16-bit WAV file through one session and writes the processed
// audio to outputPath. Channel count and sample rate come from the file.
func FileProcessing(ctx context.Context, settings *conf.Settings, inputPath, outputPath string, opts ...Option) (FileResult, error) {
	o := newOptions(opts)
	log := GetLogger()

	pcm, err := myaudio.ReadWAVFile(inputPath)
	if err != nil {
		return FileResult{}, err
	}
	if pcm.Frames() == 0 {
		return FileResult{}, errors.Newf("input file contains no samples").
			Component("analysis").
			Category(errors.CategoryValidation).
			Context("path", inputPath).
			Build()
	}

	stream := settings.Stream
	stream.Channels = pcm.Channels
	stream.SampleRate = pcm.SampleRate
	stream.Format = lvacfs.FormatPCM16.String()

	engine := NewEngine(settings, o.engineOptions...)
	if err := engine.Init(); err != nil {
		return FileResult{}, err
	}
	defer func() {
		if err := engine.Deinit(); err != nil {
			log.Warn("engine deinit failed", logger.Error(err))
		}
	}()

	start := time.Now()
	in, err := OpenStream(engine, uuid.NewString(), &stream)
	if err != nil {
		return FileResult{}, err
	}

	procErr := myaudio.ProcessPCM(ctx, engine, in, pcm, stream.PeriodFrames)
	if err := engine.StopInputStream(in); err != nil {
		log.Warn("stream stop failed", logger.Error(err))
	}
	if procErr != nil {
		return FileResult{}, procErr
	}

	if err := myaudio.SavePCMDataToWAV(outputPath, pcm); err != nil {
		return FileResult{}, err
	}

	result := FileResult{
		StreamID:   in.ID,
		Frames:     in.FramesProcessed(),
		SampleRate: pcm.SampleRate,
		Channels:   pcm.Channels,
		Elapsed:    time.Since(start),
	}
	log.Info("file processed",
		logger.String("input", inputPath),
		logger.String("output", outputPath),
		logger.Uint64("frames", result.Frames),
		logger.Duration("elapsed", result.Elapsed))
	return result, nil
}
