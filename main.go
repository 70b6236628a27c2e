package main

import (
	"fmt"
	"log"
	"os"

	"fyne.io/fyne/v2/app"
	"github.com/spf13/cobra"

	"RoMagic/internal/config"
	"RoMagic/internal/editor"
	"RoMagic/internal/ui"
)

const (
	AppID   = "com.ronasdev.romagic"
	Version = "0.3.0"
)

var (
	flagConfig string

	v   = config.New()
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:     "romagic [image]",
	Short:   "RoMagic Pro photo editor",
	Version: Version,
	Args:    cobra.MaximumNArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(v, flagConfig)
		if err != nil {
			return err
		}
		cfg = c
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		initial := ""
		if len(args) == 1 {
			initial = args[0]
		}
		runGUI(initial)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: $XDG_CONFIG_HOME/romagic/config.yaml)")
	rootCmd.PersistentFlags().String("api-key", "", "remove.bg API key")
	if err := v.BindPFlag(config.KeyAPIKey, rootCmd.PersistentFlags().Lookup("api-key")); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(removeBGCmd)
	rootCmd.AddCommand(versionCmd)
}

func newSession() *editor.Session {
	return editor.New(
		editor.WithHistoryDepth(cfg.History.MaxDepth),
		editor.WithRemover(cfg.RemoveBG.Client()),
	)
}

func runGUI(initial string) {
	log.Println("Starting RoMagic", Version)
	a := app.NewWithID(AppID)
	ui.RunApp(a, newSession(), cfg, initial)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
