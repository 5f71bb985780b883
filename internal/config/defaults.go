package config

const (
	defaultStagingDir                = "~/.local/share/subsmith/staging"
	defaultLogDir                    = "~/.local/share/subsmith/logs"
	defaultLogFormat                 = "console"
	defaultLogLevel                  = "info"
	defaultTelegramPollTimeout       = 30
	defaultTelegramMaxFileMB         = 50
	defaultWhisperBackend            = "whisper"
	defaultWhisperBinary             = "whisper"
	defaultWhisperModel              = "small"
	defaultWhisperBaseURL            = "https://api.openai.com/v1"
	defaultWhisperTimeoutSeconds     = 1800
	defaultNotifyRequestTimeout      = 10
	defaultWorkflowQueuePoll         = 5
	defaultWorkflowErrorRetry        = 10
	defaultWorkflowHeartbeatInterval = 15
	defaultWorkflowHeartbeatTimeout  = 120
)

// defaultLanguages mirrors the languages the bot originally offered.
var defaultLanguages = []string{"en", "km"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			LogDir:     defaultLogDir,
		},
		Telegram: Telegram{
			PollTimeout: defaultTelegramPollTimeout,
			MaxFileMB:   defaultTelegramMaxFileMB,
		},
		Whisper: Whisper{
			Backend:        defaultWhisperBackend,
			Binary:         defaultWhisperBinary,
			Model:          defaultWhisperModel,
			BaseURL:        defaultWhisperBaseURL,
			TimeoutSeconds: defaultWhisperTimeoutSeconds,
		},
		Subtitles: Subtitles{
			Languages: append([]string{}, defaultLanguages...),
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			JobReceived:    true,
			JobCompleted:   true,
			Errors:         true,
		},
		Workflow: Workflow{
			QueuePollInterval:  defaultWorkflowQueuePoll,
			ErrorRetryInterval: defaultWorkflowErrorRetry,
			HeartbeatInterval:  defaultWorkflowHeartbeatInterval,
			HeartbeatTimeout:   defaultWorkflowHeartbeatTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
