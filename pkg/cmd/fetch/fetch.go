package fetch

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/tyrelab/tyredeg/log"
	"github.com/tyrelab/tyredeg/pkg/cmd/util"
	"github.com/tyrelab/tyredeg/pkg/config"
	"github.com/tyrelab/tyredeg/pkg/openf1"
)

func NewFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "warm the raw data cache for an event",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch()
		},
	}
	util.AddEventFlags(cmd)
	return cmd
}

func runFetch() error {
	util.SetupLogger()
	ctx := context.Background()

	client := openf1.NewClient(
		openf1.WithBaseURL(config.APIBaseURL),
		openf1.WithCacheDir(config.CacheDir),
		openf1.WithTimeout(util.FetchTimeout()))

	sessions, err := client.Sessions(ctx,
		config.Country, config.SessionType, config.Year)
	if err != nil {
		return err
	}
	if len(sessions) > config.MaxSessions {
		sessions = sessions[:config.MaxSessions]
	}
	for _, session := range sessions {
		if _, err := client.Stints(ctx, session.SessionKey); err != nil {
			return err
		}
		if _, err := client.Laps(ctx, session.SessionKey); err != nil {
			return err
		}
		log.Info("session cached", log.Int("sessionKey", session.SessionKey))
	}
	log.Info("cache warmed", log.Int("sessions", len(sessions)))
	return nil
}
