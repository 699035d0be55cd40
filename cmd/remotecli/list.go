// cmd/remotecli/list.go
package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"remote-client/pkg/device"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List attached remote devices",
	Long: `Scan the candidate serial ports, probe each one for a remote device
and print the port and identity of every device that answered.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		found, err := device.FindDevicePorts(discoveryFilter(), sessionOptions()...)
		if err != nil {
			return err
		}

		if len(found) == 0 {
			fmt.Println("No remote devices found")
			return nil
		}

		ports := make([]string, 0, len(found))
		for port := range found {
			ports = append(ports, port)
		}
		sort.Strings(ports)

		fmt.Printf("%-28s %-12s %-12s\n", "PORT", "MODEL", "SERIAL")
		for _, port := range ports {
			ident := found[port]
			fmt.Printf("%-28s %-12s %-12s\n", port,
				formatNumber(ident.ModelNumber), formatNumber(ident.SerialNumber))
		}
		return nil
	},
}

func formatNumber(n int64) string {
	if n == device.UnknownNumber {
		return "unknown"
	}
	return fmt.Sprintf("%d", n)
}
