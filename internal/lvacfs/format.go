package lvacfs

import (
	"fmt"
	"math/bits"
	"strings"

	"github.com/tphakala/lvacfs-go/internal/errors"
)

// ChannelMask describes the channels of a capture stream. The top two bits select the
// representation: positional masks name physical input channels, index masks simply
// enable channel slots 0..n-1.
type ChannelMask uint32

// Positional input channel bits.
const (
	ChannelInLeft           ChannelMask = 0x4
	ChannelInRight          ChannelMask = 0x8
	ChannelInFront          ChannelMask = 0x10
	ChannelInBack           ChannelMask = 0x20
	ChannelInLeftProcessed  ChannelMask = 0x40
	ChannelInRightProcessed ChannelMask = 0x80
	ChannelInFrontProcessed ChannelMask = 0x100
	ChannelInBackProcessed  ChannelMask = 0x200
	ChannelInPressure       ChannelMask = 0x400
	ChannelInXAxis          ChannelMask = 0x800
	ChannelInYAxis          ChannelMask = 0x1000
	ChannelInZAxis          ChannelMask = 0x2000
	ChannelInVoiceUplink    ChannelMask = 0x4000
	ChannelInVoiceDownlink  ChannelMask = 0x8000
	ChannelInBackLeft       ChannelMask = 0x10000
	ChannelInBackRight      ChannelMask = 0x20000
	ChannelInCenter         ChannelMask = 0x40000
	ChannelInLowFrequency   ChannelMask = 0x100000
	ChannelInTopLeft        ChannelMask = 0x200000
	ChannelInTopRight       ChannelMask = 0x400000

	ChannelInMono      = ChannelInFront
	ChannelInStereo    = ChannelInLeft | ChannelInRight
	ChannelInFrontBack = ChannelInFront | ChannelInBack
)

const (
	channelInAll = ChannelInLeft | ChannelInRight | ChannelInFront | ChannelInBack |
		ChannelInLeftProcessed | ChannelInRightProcessed | ChannelInFrontProcessed |
		ChannelInBackProcessed | ChannelInPressure | ChannelInXAxis | ChannelInYAxis |
		ChannelInZAxis | ChannelInVoiceUplink | ChannelInVoiceDownlink | ChannelInBackLeft |
		ChannelInBackRight | ChannelInCenter | ChannelInLowFrequency | ChannelInTopLeft |
		ChannelInTopRight

	channelCountMax           = 30
	channelRepresentationBits = channelCountMax
	channelValueMask          = ChannelMask(1)<<channelCountMax - 1

	representationPosition = 0
	representationIndex    = 2

	// MaxChannels is the largest channel count an index mask can express.
	MaxChannels = channelCountMax
)

// ChannelIndexMask returns an index-representation mask enabling channels 0..n-1.
func ChannelIndexMask(n int) ChannelMask {
	if n <= 0 || n > MaxChannels {
		return 0
	}
	return ChannelMask(representationIndex)<<channelRepresentationBits | (ChannelMask(1)<<n - 1)
}

// ChannelCount returns the number of channels the mask selects. Unknown representations count as zero.
func (m ChannelMask) ChannelCount() int {
	switch uint32(m) >> channelRepresentationBits {
	case representationPosition:
		return bits.OnesCount32(uint32(m & channelInAll))
	case representationIndex:
		return bits.OnesCount32(uint32(m & channelValueMask))
	default:
		return 0
	}
}

// ChannelMaskForCount returns the conventional positional mask for 1 or 2 channels
// and an index mask for anything wider.
func ChannelMaskForCount(n int) ChannelMask {
	switch n {
	case 1:
		return ChannelInMono
	case 2:
		return ChannelInStereo
	default:
		return ChannelIndexMask(n)
	}
}

// Format is the sample encoding of a capture buffer.
type Format uint32

// Sample formats.
const (
	FormatInvalid     Format = 0
	FormatPCM16       Format = 1
	FormatPCM8        Format = 2
	FormatPCM32       Format = 3
	FormatPCM8_24     Format = 4
	FormatFloat       Format = 5
	FormatPCM24Packed Format = 6
)

var formatNames = map[Format]string{
	FormatPCM16:       "pcm16",
	FormatPCM8:        "pcm8",
	FormatPCM32:       "pcm32",
	FormatPCM8_24:     "pcm8_24",
	FormatFloat:       "float",
	FormatPCM24Packed: "pcm24_packed",
}

// BytesPerSample returns the byte width of one sample, or 0 for unknown formats.
func (f Format) BytesPerSample() int {
	switch f {
	case FormatPCM8:
		return 1
	case FormatPCM16:
		return 2
	case FormatPCM24Packed:
		return 3
	case FormatPCM32, FormatPCM8_24, FormatFloat:
		return 4
	default:
		return 0
	}
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("format(%d)", uint32(f))
}

// ParseFormat converts a configuration name such as "pcm16" into a Format.
func ParseFormat(name string) (Format, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for f, n := range formatNames {
		if n == name {
			return f, nil
		}
	}
	return FormatInvalid, errors.Newf("unknown sample format %q", name).
		Component(componentName).
		Category(errors.CategoryValidation).
		Build()
}

// AudioSource classifies what a capture stream is used for. The value is passed to the
// module unchanged when an instance is created.
type AudioSource int32

// Capture sources.
const (
	SourceDefault AudioSource = iota
	SourceMic
	SourceVoiceUplink
	SourceVoiceDownlink
	SourceVoiceCall
	SourceCamcorder
	SourceVoiceRecognition
	SourceVoiceCommunication
	SourceRemoteSubmix
	SourceUnprocessed
	SourceVoicePerformance
)

var sourceNames = [...]string{
	SourceDefault:            "default",
	SourceMic:                "mic",
	SourceVoiceUplink:        "voice_uplink",
	SourceVoiceDownlink:      "voice_downlink",
	SourceVoiceCall:          "voice_call",
	SourceCamcorder:          "camcorder",
	SourceVoiceRecognition:   "voice_recognition",
	SourceVoiceCommunication: "voice_communication",
	SourceRemoteSubmix:       "remote_submix",
	SourceUnprocessed:        "unprocessed",
	SourceVoicePerformance:   "voice_performance",
}

func (s AudioSource) String() string {
	if s >= 0 && int(s) < len(sourceNames) {
		return sourceNames[s]
	}
	return fmt.Sprintf("source(%d)", int32(s))
}

// ParseAudioSource converts a configuration name such as "camcorder" into an AudioSource.
func ParseAudioSource(name string) (AudioSource, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range sourceNames {
		if n == name {
			return AudioSource(i), nil
		}
	}
	return SourceDefault, errors.Newf("unknown audio source %q", name).
		Component(componentName).
		Category(errors.CategoryValidation).
		Build()
}

// AudioDirection is the capture direction hint passed to the module.
type AudioDirection int32

// Direction hints.
const (
	DirectionFront AudioDirection = iota
	DirectionBack
)

// DeviceOrientation is the physical device rotation passed to the module.
type DeviceOrientation int32

// Orientations in degrees of clockwise rotation.
const (
	Orientation0   DeviceOrientation = 0
	Orientation90  DeviceOrientation = 90
	Orientation180 DeviceOrientation = 180
	Orientation270 DeviceOrientation = 270
)

// PackChannels encodes a channel count as the module expects: input count in the
// upper 16 bits, output count in the lower 16 bits.
func PackChannels(n int) uint32 {
	c := uint32(n) & 0xFFFF
	return c<<16 | c
}

// SampleRateAndFormat combines the sample rate with the module's format selector.
// The selector is always zero because the module does not understand caller formats.
func SampleRateAndFormat(sampleRate uint32) uint64 {
	const noFormat uint64 = 0
	return noFormat<<32 | uint64(sampleRate)
}

// FrameCount returns how many frames a buffer of the given byte length holds.
// The length must be an exact multiple of channels times the sample width.
func FrameCount(byteLen, channels int, f Format) (int, error) {
	bps := f.BytesPerSample()
	if bps == 0 {
		return 0, newInvalidBuffer("unsupported sample format", "format", f.String())
	}
	if channels <= 0 {
		return 0, newInvalidBuffer("channel mask selects no channels", "channels", channels)
	}
	frameSize := channels * bps
	if byteLen < 0 || byteLen%frameSize != 0 {
		return 0, newInvalidBuffer("buffer length is not a whole number of frames",
			"bytes", byteLen, "frame_size", frameSize)
	}
	return byteLen / frameSize, nil
}
