package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// These variables are set using -ldflags
	version string
	commit  string
	date    string
)

var (
	log   *zap.SugaredLogger
	cpath string
	debug bool
)

func main() {
	cobra.EnableCommandSorting = false

	rootCmd := &cobra.Command{
		Use:   "mongopipe",
		Short: buildDetails(),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log = newLogger(debug).Sugar()
		},
	}

	rootCmd.PersistentFlags().StringVar(&cpath,
		"path", ".", "path to config files")
	rootCmd.PersistentFlags().BoolVar(&debug,
		"debug", false, "enable debug logging")

	rootCmd.AddCommand(demoCmd())
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// readConfig loads the mongopipe config file, if any, and binds the
// MONGOPIPE_* environment variables over it.
func readConfig() *viper.Viper {
	v := viper.New()
	v.SetConfigName("mongopipe")
	v.AddConfigPath(cpath)
	v.SetEnvPrefix("MONGOPIPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("uri", "mongodb://localhost:27017")
	v.SetDefault("db", "sample_airbnb")
	v.SetDefault("collection", "listingsAndReviews")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Fatalf("config: %s", err)
		}
	}
	return v
}

func newLogger(debug bool) *zap.Logger {
	econf := zap.NewProductionEncoderConfig()
	econf.EncodeTime = zapcore.ISO8601TimeEncoder

	level := zap.InfoLevel
	if debug {
		level = zap.DebugLevel
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(econf),
		zapcore.Lock(os.Stderr),
		level,
	)
	return zap.New(core)
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(buildDetails())
		},
	}
}

func buildDetails() string {
	if version == "" {
		return "mongopipe (development build)"
	}
	return fmt.Sprintf("mongopipe %s (%s, %s)", version, commit, date)
}
