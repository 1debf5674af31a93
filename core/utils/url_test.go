package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAudioURL(t *testing.T) {
	t.Run("dropbox share links become direct downloads", func(t *testing.T) {
		got := NormalizeAudioURL("https://www.dropbox.com/s/abc123/demo.mp3?dl=0")
		assert.Equal(t, "https://www.dropbox.com/s/abc123/demo.mp3?dl=1", got)
	})

	t.Run("google drive view links become download links", func(t *testing.T) {
		got := NormalizeAudioURL("https://drive.google.com/file/d/FILE_ID/view?usp=sharing")
		assert.Equal(t, "https://drive.google.com/uc?export=download&id=FILE_ID", got)
	})

	t.Run("other urls pass through", func(t *testing.T) {
		raw := "https://cdn.example.com/audio/demo.mp3"
		assert.Equal(t, raw, NormalizeAudioURL(raw))
	})

	t.Run("relative paths pass through", func(t *testing.T) {
		assert.Equal(t, "/audio/demo.mp3", NormalizeAudioURL("/audio/demo.mp3"))
	})

	t.Run("garbage passes through", func(t *testing.T) {
		assert.Equal(t, "::not a url::", NormalizeAudioURL("::not a url::"))
	})
}
