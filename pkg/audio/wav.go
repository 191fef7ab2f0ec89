package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/aretw0/murmur/pkg/core"
)

// EncodeWAV serializes a clip as a PCM16 WAV file.
func EncodeWAV(clip core.Clip) []byte {
	dataLen := len(clip.Samples) * 2
	byteRate := clip.SampleRate * clip.Channels * 2
	blockAlign := clip.Channels * 2

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(clip.Channels))
	binary.Write(&buf, binary.LittleEndian, uint32(clip.SampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(16)) // bits per sample

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataLen))
	binary.Write(&buf, binary.LittleEndian, clip.Samples)

	return buf.Bytes()
}

// DecodeWAV parses a PCM16 WAV file into a clip.
// Non-PCM encodings and malformed headers yield core.ErrCorruptAudio.
func DecodeWAV(data []byte) (core.Clip, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return core.Clip{}, fmt.Errorf("%w: not a RIFF/WAVE file", core.ErrCorruptAudio)
	}

	var (
		clip     core.Clip
		sawFmt   bool
		sawData  bool
		bitDepth uint16
	)

	// Walk the chunk list. Chunks are 2-byte aligned.
	off := 12
	for off+8 <= len(data) {
		id := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		body := off + 8
		if body+size > len(data) {
			return core.Clip{}, fmt.Errorf("%w: chunk %q overruns file", core.ErrCorruptAudio, id)
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return core.Clip{}, fmt.Errorf("%w: short fmt chunk", core.ErrCorruptAudio)
			}
			format := binary.LittleEndian.Uint16(data[body : body+2])
			if format != 1 {
				return core.Clip{}, fmt.Errorf("%w: unsupported wav encoding %d", core.ErrCorruptAudio, format)
			}
			clip.Channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			clip.SampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bitDepth = binary.LittleEndian.Uint16(data[body+14 : body+16])
			sawFmt = true
		case "data":
			if !sawFmt {
				return core.Clip{}, fmt.Errorf("%w: data chunk before fmt", core.ErrCorruptAudio)
			}
			if bitDepth != 16 {
				return core.Clip{}, fmt.Errorf("%w: unsupported bit depth %d", core.ErrCorruptAudio, bitDepth)
			}
			clip.Samples = bytesToSamples(data[body : body+size])
			sawData = true
		}

		off = body + size
		if size%2 == 1 {
			off++
		}
	}

	if !sawFmt || !sawData {
		return core.Clip{}, fmt.Errorf("%w: missing fmt or data chunk", core.ErrCorruptAudio)
	}
	if clip.SampleRate <= 0 || clip.Channels <= 0 {
		return core.Clip{}, fmt.Errorf("%w: invalid format parameters", core.ErrCorruptAudio)
	}
	return clip, nil
}

func bytesToSamples(raw []byte) []int16 {
	samples := make([]int16, len(raw)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(raw[i*2 : i*2+2]))
	}
	return samples
}

func samplesToBytes(samples []int16) []byte {
	raw := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(raw[i*2:i*2+2], uint16(s))
	}
	return raw
}
