package tracker

// NativeAdapter bridges a directly hosted media element. Native playback
// reports its clock cheaply, so trackers sample it on the faster interval.
type NativeAdapter struct {
	bridgeAdapter
	sourceURL string
}

// NewNativeAdapter builds the adapter for one hosted media file.
func NewNativeAdapter(sourceURL string, bridge Bridge) *NativeAdapter {
	return &NativeAdapter{
		bridgeAdapter: bridgeAdapter{bridge: bridge, kind: PlayerNative},
		sourceURL:     sourceURL,
	}
}

// SourceURL is the media location this adapter plays.
func (a *NativeAdapter) SourceURL() string {
	return a.sourceURL
}

// ForVideo builds the right adapter for a video link: recognised YouTube
// links get a YouTubeAdapter keyed by their extracted identifier, everything
// else plays natively.
func ForVideo(videoURL string, bridge Bridge) Player {
	if Detect(videoURL) == PlayerYouTube {
		return NewYouTubeAdapter(ExtractYouTubeID(videoURL), bridge)
	}
	return NewNativeAdapter(videoURL, bridge)
}
