package config

import (
	"errors"
	"fmt"

	"subsmith/internal/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateWhisper(); err != nil {
		return err
	}
	if err := c.validateSubtitles(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateWhisper() error {
	switch c.Whisper.Backend {
	case "whisper":
		if c.Whisper.Binary == "" {
			return errors.New("whisper.binary must be set when whisper.backend is \"whisper\"")
		}
	case "openai":
		if c.Whisper.APIKey == "" {
			defaultPath, err := DefaultConfigPath()
			if err != nil {
				defaultPath = "~/.config/subsmith/config.toml"
			}
			return fmt.Errorf("whisper.api_key is required for the openai backend. Set OPENAI_API_KEY env var or edit %s (create with 'subsmith config init')", defaultPath)
		}
	default:
		return fmt.Errorf("whisper.backend must be \"whisper\" or \"openai\", got %q", c.Whisper.Backend)
	}
	return nil
}

func (c *Config) validateSubtitles() error {
	for _, lang := range c.Subtitles.Languages {
		if language.DisplayName(lang) == "" {
			return fmt.Errorf("subtitles.languages: unrecognized language code %q", lang)
		}
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if err := ensurePositiveMap(map[string]int{
		"telegram.poll_timeout":         c.Telegram.PollTimeout,
		"telegram.max_file_mb":          c.Telegram.MaxFileMB,
		"whisper.timeout_seconds":       c.Whisper.TimeoutSeconds,
		"notifications.request_timeout": c.Notifications.RequestTimeout,
		"workflow.queue_poll_interval":  c.Workflow.QueuePollInterval,
		"workflow.error_retry_interval": c.Workflow.ErrorRetryInterval,
	}); err != nil {
		return err
	}
	if c.Workflow.HeartbeatInterval <= 0 {
		return errors.New("workflow.heartbeat_interval must be positive")
	}
	if c.Workflow.HeartbeatTimeout <= c.Workflow.HeartbeatInterval {
		return errors.New("workflow.heartbeat_timeout must be greater than workflow.heartbeat_interval")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
