package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ramunasnognys/offshore-mate-v3/internal/config"
	"github.com/ramunasnognys/offshore-mate-v3/internal/daemon"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/telebot.v3"
)

func daemonCmd() *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Send evening reminders before travel days, hitch starts and crossovers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rot, err := activeRotation(ctx)
			if err != nil {
				return err
			}

			dcfg := appConfig.Daemon
			opts := daemon.Options{
				CronSpec:  dcfg.CronSpec,
				Location:  dcfg.GetLocation(),
				Notifiers: []daemon.Notifier{daemon.NewLogNotifier(logger)},
			}

			var bot *telebot.Bot
			if dcfg.TelegramToken != "" {
				bot, err = daemon.NewTelegramBot(dcfg.TelegramToken, logger)
				if err != nil {
					return err
				}
				if dcfg.TelegramChatID != 0 {
					opts.Notifiers = append(opts.Notifiers, daemon.NewTelegramNotifier(bot, dcfg.TelegramChatID))
				}
				if dcfg.Commands && !once {
					opts.Bot = bot
				}
			}

			d, err := daemon.New(rot, opts, logger)
			if err != nil {
				return err
			}
			if opts.Bot != nil {
				daemon.RegisterCommands(bot, d, logger)
			}

			if once {
				sent, err := d.RunOnce(ctx)
				if err != nil {
					return err
				}
				if sent {
					fmt.Fprintln(cmd.OutOrStdout(), "Reminder sent")
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "No reminder due")
				}
				return nil
			}

			if flagsPinSchedule() {
				logger.Info("Schedule pinned by flags, config reload disabled")
			} else {
				watchConfig(ctx, d)
			}
			return d.Run(ctx)
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "Check tomorrow once and exit")
	return cmd
}

func flagsPinSchedule() bool {
	return startFlag != "" || patternFlag != "" || scheduleFlag != ""
}

// watchConfig swaps the daemon's rotation when the config file changes
func watchConfig(ctx context.Context, d *daemon.Daemon) {
	_, err := config.Watch(configPath,
		func(cfg *config.Config) {
			rot, err := rotationFromConfig(ctx, cfg)
			if err != nil {
				logger.Warn("Ignoring config change", zap.Error(err))
				return
			}
			d.SetConfig(rot)
		},
		func(err error) {
			logger.Warn("Config reload failed", zap.Error(err))
		})
	if err != nil {
		logger.Warn("Config watch disabled", zap.Error(err))
	}
}
