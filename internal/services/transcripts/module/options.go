package module

import "speakertag/internal/platform/config"

// Options holds configuration settings for the transcripts module
type Options struct {
	PageSize    int
	MaxPageSize int
}

// FromConfig reads CORE_TRANSCRIPTS_ settings
func FromConfig(cfg config.Conf) Options {
	tf := cfg.Prefix("CORE_TRANSCRIPTS_")
	return Options{
		PageSize:    tf.MayInt("PAGE_SIZE", 100),
		MaxPageSize: tf.MayInt("MAX_PAGE_SIZE", 500),
	}
}
