package main

import (
	"github.com/slack-go/slack"
	"github.com/spf13/viper"
)

// slackOptions returns extra client options. slack.api_url points the
// client at an alternate endpoint, used by integration tests.
func slackOptions() []slack.Option {
	if u := viper.GetString("slack.api_url"); u != "" {
		return []slack.Option{slack.OptionAPIURL(u)}
	}
	return nil
}
