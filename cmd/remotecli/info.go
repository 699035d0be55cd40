// cmd/remotecli/info.go
package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the device info of one device",
	RunE: func(cmd *cobra.Command, args []string) error {
		dev, err := openTarget()
		if err != nil {
			return err
		}
		defer dev.Close()

		out, err := json.MarshalIndent(dev.DeviceInfo(), "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}
