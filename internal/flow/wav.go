package flow

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"mime"
	"strconv"
	"strings"

	"kisanmitra/internal/datauri"
)

const (
	defaultSampleRate = 24000
	pcmChannels       = 1
	pcmBitsPerSample  = 16
)

// toWAV wraps 16-bit little-endian PCM ("audio/L16" or "audio/pcm") in a
// RIFF/WAVE container. Any other audio type is returned unchanged.
func toWAV(b datauri.Blob) (datauri.Blob, error) {
	mt, params, err := mime.ParseMediaType(b.MIMEType)
	if err != nil {
		return datauri.Blob{}, fmt.Errorf("audio type %q: %w", b.MIMEType, err)
	}
	if mt != "audio/l16" && mt != "audio/pcm" {
		return b, nil
	}
	rate := defaultSampleRate
	if v, ok := params["rate"]; ok {
		if rate, err = strconv.Atoi(strings.TrimSpace(v)); err != nil || rate <= 0 {
			return datauri.Blob{}, fmt.Errorf("audio sample rate %q", v)
		}
	}

	blockAlign := pcmChannels * pcmBitsPerSample / 8
	var buf bytes.Buffer
	buf.Grow(44 + len(b.Data))
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(36+len(b.Data)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, struct {
		Size          uint32
		Format        uint16
		Channels      uint16
		SampleRate    uint32
		ByteRate      uint32
		BlockAlign    uint16
		BitsPerSample uint16
	}{16, 1, pcmChannels, uint32(rate), uint32(rate * blockAlign), uint16(blockAlign), pcmBitsPerSample})
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(b.Data)))
	buf.Write(b.Data)
	return datauri.Blob{MIMEType: "audio/wav", Data: buf.Bytes()}, nil
}
