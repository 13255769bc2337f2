package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "QUIZ"

// Options are the values shared by every subcommand. Flags win over the environment,
// which wins over the config file.
type Options struct {
	ConfigPath string
	Port       string
	LogLevel   string
	LogFormat  string
}

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	opts := &Options{}
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:          "quiz-server",
		Short:        "Real-time multiplayer quiz rooms over WebSocket",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("load .env: %w", err)
			}
			return bindEnv(v, cmd.Flags())
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.ConfigPath, "config", "config/config.yaml", "path to YAML config (env: QUIZ_CONFIG, CONFIG_PATH)")
	flags.StringVar(&opts.Port, "port", "", "port to listen on, overrides server.port (env: QUIZ_PORT, PORT)")
	flags.StringVar(&opts.LogLevel, "log-level", "", "debug, info, warn or error (env: QUIZ_LOG_LEVEL)")
	flags.StringVar(&opts.LogFormat, "log-format", "", "text or json (env: QUIZ_LOG_FORMAT)")

	_ = v.BindEnv("port", envPrefix+"_PORT", "PORT")
	_ = v.BindEnv("config", envPrefix+"_CONFIG", "CONFIG_PATH")

	cmd.AddCommand(NewStartCmd(opts))
	cmd.AddCommand(NewMigrateCmd(opts))
	return cmd
}

// bindEnv copies environment values into flags the user did not set explicitly.
func bindEnv(v *viper.Viper, flags *pflag.FlagSet) error {
	var firstErr error
	flags.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		if f.Changed || !v.IsSet(f.Name) {
			return
		}
		if err := flags.Set(f.Name, v.GetString(f.Name)); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("flag --%s: %w", f.Name, err)
		}
	})
	return firstErr
}
