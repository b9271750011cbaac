package stt

import "bytes"

// sniffExtension guesses a file extension from audio magic bytes. The
// upload path keeps the real extension in the storage key, but by the
// time the pipeline hands bytes to a provider only the content is left.
func sniffExtension(audio []byte) string {
	switch {
	case len(audio) >= 3 && bytes.Equal(audio[:3], []byte("ID3")):
		return ".mp3"
	case len(audio) >= 2 && audio[0] == 0xFF && audio[1]&0xE0 == 0xE0:
		return ".mp3"
	case len(audio) >= 4 && bytes.Equal(audio[:4], []byte("RIFF")):
		return ".wav"
	case len(audio) >= 4 && bytes.Equal(audio[:4], []byte("OggS")):
		return ".ogg"
	case len(audio) >= 4 && bytes.Equal(audio[:4], []byte("fLaC")):
		return ".flac"
	case len(audio) >= 12 && bytes.Equal(audio[4:8], []byte("ftyp")):
		return ".m4a"
	default:
		return ".mp3"
	}
}

// sniffGoogleConfig maps audio magic bytes to a Google Speech encoding
// and sample rate.
func sniffGoogleConfig(audio []byte) (string, int) {
	switch sniffExtension(audio) {
	case ".wav":
		return "LINEAR16", 16000
	case ".ogg":
		return "OGG_OPUS", 48000
	case ".flac":
		return "FLAC", 44100
	case ".m4a":
		return "AAC", 44100
	default:
		return "MP3", 44100
	}
}
