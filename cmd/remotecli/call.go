// cmd/remotecli/call.go
package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var callCmd = &cobra.Command{
	Use:   "call <method> [args...]",
	Short: "Invoke a device method and print its result",
	Long: `Invoke a method by its exposed name. Arguments are passed positionally;
numbers are sent as numbers, everything else as plain text. A single
JSON-object argument is treated as a named-argument map.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dev, err := openTarget()
		if err != nil {
			return err
		}
		defer dev.Close()

		callArgs, err := parseCallArgs(args[1:])
		if err != nil {
			return err
		}

		result, err := dev.Call(args[0], callArgs...)
		if err != nil {
			return err
		}
		if result == nil {
			return nil
		}

		out, err := json.Marshal(result)
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

func parseCallArgs(raw []string) ([]any, error) {
	args := make([]any, len(raw))
	for i, arg := range raw {
		args[i] = parseCallArg(arg)
	}

	// A single JSON object is a named-argument map.
	if len(raw) == 1 && strings.HasPrefix(strings.TrimSpace(raw[0]), "{") {
		var named map[string]any
		if err := json.Unmarshal([]byte(raw[0]), &named); err != nil {
			return nil, fmt.Errorf("invalid named-argument map: %w", err)
		}
		return []any{named}, nil
	}
	return args, nil
}

func parseCallArg(arg string) any {
	if n, err := strconv.ParseInt(arg, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(arg, 64); err == nil {
		return f
	}
	return arg
}
