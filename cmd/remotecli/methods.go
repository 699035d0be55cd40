// cmd/remotecli/methods.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var methodsCmd = &cobra.Command{
	Use:   "methods",
	Short: "List the methods a device's firmware reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		dev, err := openTarget()
		if err != nil {
			return err
		}
		defer dev.Close()

		for _, name := range dev.Methods() {
			fmt.Println(name)
		}
		return nil
	},
}
