package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the process-wide configuration. It is loaded once at startup
// and treated as immutable afterwards; handlers receive it by value.
type Config struct {
	ListenAddr       string
	SlackToken       string
	SlackChannel     string
	SlackUsername    string
	SlackIconEmoji   string
	MaxMessageLength int
	Verbose          bool
	LogFile          string
}

// Load initializes viper from an optional .env file, a config file and
// environment variables.
func Load(cfgFile string) {
	// explicit .env loading; a missing .env is not an error
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("INTELRELAY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// Honor the conventional SLACK_BOT_TOKEN if the prefixed variable is unset.
	if os.Getenv("INTELRELAY_SLACK_TOKEN") == "" && os.Getenv("SLACK_BOT_TOKEN") != "" {
		viper.SetDefault("slack.token", os.Getenv("SLACK_BOT_TOKEN"))
	}

	viper.SetDefault("listen_addr", ":8080")
	viper.SetDefault("max_message_length", 3000)
	viper.SetDefault("verbose", false)
	viper.SetDefault("log_file", "")

	viper.SetDefault("slack.channel", "#general")
	viper.SetDefault("slack.username", "Competitive Intel")
	viper.SetDefault("slack.icon_emoji", ":dart:")

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// FromViper snapshots the current viper state into a Config.
func FromViper() Config {
	return Config{
		ListenAddr:       viper.GetString("listen_addr"),
		SlackToken:       viper.GetString("slack.token"),
		SlackChannel:     viper.GetString("slack.channel"),
		SlackUsername:    viper.GetString("slack.username"),
		SlackIconEmoji:   viper.GetString("slack.icon_emoji"),
		MaxMessageLength: viper.GetInt("max_message_length"),
		Verbose:          viper.GetBool("verbose"),
		LogFile:          viper.GetString("log_file"),
	}
}

// Validate checks the fields required to reach Slack.
func (c Config) Validate() error {
	if c.SlackToken == "" {
		return fmt.Errorf("slack token is not configured (set INTELRELAY_SLACK_TOKEN or SLACK_BOT_TOKEN)")
	}
	if c.SlackChannel == "" {
		return fmt.Errorf("slack channel is not configured")
	}
	if c.MaxMessageLength <= 200 {
		return fmt.Errorf("max_message_length must be greater than 200, got %d", c.MaxMessageLength)
	}
	return nil
}
