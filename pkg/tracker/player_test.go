package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	assert.Equal(t, PlayerYouTube, Detect("https://www.youtube.com/watch?v=dQw4w9WgXcQ"))
	assert.Equal(t, PlayerYouTube, Detect("https://youtu.be/dQw4w9WgXcQ"))
	assert.Equal(t, PlayerYouTube, Detect("https://m.youtube.com/watch?v=dQw4w9WgXcQ"))
	assert.Equal(t, PlayerNative, Detect("https://cdn.example.com/videos/intro.mp4"))
	assert.Equal(t, PlayerNative, Detect("https://notyoutube.com/watch?v=abc"))
	assert.Equal(t, PlayerNative, Detect("::not a url::"))
}

func TestExtractYouTubeID(t *testing.T) {
	assert.Equal(t, "dQw4w9WgXcQ", ExtractYouTubeID("https://www.youtube.com/watch?v=dQw4w9WgXcQ"))
	assert.Equal(t, "dQw4w9WgXcQ", ExtractYouTubeID("https://youtu.be/dQw4w9WgXcQ"))
	assert.Equal(t, "dQw4w9WgXcQ", ExtractYouTubeID("https://www.youtube.com/embed/dQw4w9WgXcQ"))
	assert.Equal(t, "dQw4w9WgXcQ", ExtractYouTubeID("https://www.youtube.com/embed/dQw4w9WgXcQ/extra"))
	assert.Equal(t, "", ExtractYouTubeID("https://cdn.example.com/videos/intro.mp4"))
	assert.Equal(t, "", ExtractYouTubeID("https://www.youtube.com/feed"))
}

func TestForVideo(t *testing.T) {
	yt := ForVideo("https://youtu.be/dQw4w9WgXcQ", Bridge{})
	assert.Equal(t, PlayerYouTube, yt.Kind())
	assert.Equal(t, "dQw4w9WgXcQ", yt.(*YouTubeAdapter).VideoID())

	native := ForVideo("https://cdn.example.com/videos/intro.mp4", Bridge{})
	assert.Equal(t, PlayerNative, native.Kind())
}
