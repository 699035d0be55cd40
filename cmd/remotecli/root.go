// cmd/remotecli/root.go
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"remote-client/internal/config"
	"remote-client/internal/utils"
	"remote-client/pkg/device"
)

var (
	cfgFile      string
	flagPort     string
	flagBaud     int
	flagModels   []int64
	flagSerials  []int64
	flagTryPorts []string
	flagDebug    bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "remotecli",
	Short:         "Drive remote devices over their serial command protocol",
	Long: `remotecli talks to devices that expose their command set over a serial
link. It discovers attached devices, lists the methods a device's
firmware reports, and invokes them.`,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		if flagDebug {
			cfg.Logging.Level = "debug"
		}

		logger, err = utils.NewLogger(&cfg.Logging)
		if err != nil {
			return err
		}

		// Best-effort close of open sessions when the process is
		// interrupted mid-call.
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-sigCh
			device.CloseAll()
			os.Exit(1)
		}()

		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	flags.StringVarP(&flagPort, "port", "p", "", "serial port of the device (default: discover)")
	flags.IntVarP(&flagBaud, "baud", "b", 0, "baud rate override")
	flags.Int64SliceVar(&flagModels, "model", nil, "acceptable model number(s) for discovery")
	flags.Int64SliceVar(&flagSerials, "serial", nil, "acceptable serial number(s) for discovery")
	flags.StringSliceVar(&flagTryPorts, "try-ports", nil, "restrict discovery to these ports")
	flags.BoolVar(&flagDebug, "debug", false, "log raw request/response traffic")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(methodsCmd)
	rootCmd.AddCommand(callCmd)
}

func sessionOptions() []device.Option {
	opts := []device.Option{
		device.WithConfig(cfg),
		device.WithLogger(logger),
	}
	if flagBaud > 0 {
		opts = append(opts, device.WithBaudRate(flagBaud))
	}
	return opts
}

func discoveryFilter() device.Filter {
	tryPorts := flagTryPorts
	if len(tryPorts) == 0 {
		tryPorts = cfg.Discovery.TryPorts
	}
	return device.Filter{
		ModelNumbers:  flagModels,
		SerialNumbers: flagSerials,
		TryPorts:      tryPorts,
	}
}

// openTarget resolves the target device: an explicit --port wins,
// otherwise discovery must match exactly one device.
func openTarget() (*device.Session, error) {
	if flagPort != "" {
		return device.Open(flagPort, sessionOptions()...)
	}
	dev, err := device.OpenMatching(discoveryFilter(), sessionOptions()...)
	if err != nil {
		return nil, fmt.Errorf("resolving device: %w", err)
	}
	return dev, nil
}
