package models

// VideoReference identifies a YouTube video extracted from user input.
type VideoReference struct {
	VideoID   string `json:"video_id"`
	SourceURL string `json:"source_url"`
}

// ThumbnailURL returns the max-resolution thumbnail served by img.youtube.com.
func (v VideoReference) ThumbnailURL() string {
	return "https://img.youtube.com/vi/" + v.VideoID + "/maxresdefault.jpg"
}

// VideoDetails is metadata fetched from the YouTube Data API.
type VideoDetails struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	ChannelTitle    string `json:"channel_title"`
	Duration        string `json:"duration"`
	DurationSeconds int    `json:"duration_seconds"`
	PublishedAt     string `json:"published_at"`
	ViewCount       int64  `json:"view_count"`
}

// BackendCapability is the result of one health probe. It is never cached.
type BackendCapability struct {
	Available          bool     `json:"available"`
	SummarizationReady bool     `json:"summarization_ready"`
	TranscriptReady    bool     `json:"transcript_ready"`
	Features           []string `json:"features"`
	Message            string   `json:"message,omitempty"`
	ErrorDetail        string   `json:"error,omitempty"`
}

// Degraded reports whether the backend is up but missing one of its API keys.
func (c BackendCapability) Degraded() bool {
	return c.Available && (!c.SummarizationReady || !c.TranscriptReady)
}
