package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func init() {
	machinesCmd.AddCommand(machineMatchCmd)
	machinesCmd.AddCommand(canConfirmCmd)
	machinesCmd.AddCommand(assignCmd)
	machinesCmd.AddCommand(unassignCmd)
	machinesCmd.AddCommand(confirmMachineCmd)
	machinesCmd.AddCommand(favoriteCmd)
	machinesCmd.AddCommand(outOfOrderCmd)
	machinesCmd.AddCommand(qualityCmd)
	machinesCmd.AddCommand(countCmd)
}

var machinesCmd = &cobra.Command{
	Use:   "machines",
	Short: "List machines, or manage one with a subcommand",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/machines")
	},
}

// machineCommand builds a subcommand whose first argument is a machine number.
func machineCommand(use, short string, extra int, run func(id int, args []string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1 + extra),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseMachine(args[0])
			if err != nil {
				return err
			}
			return run(id, args[1:])
		},
	}
}

var machineMatchCmd = machineCommand("match <machine>", "Show the match on a machine", 0, func(id int, _ []string) error {
	return performGetRequest(fmt.Sprintf("/machines/%d/match", id))
})

var canConfirmCmd = machineCommand("can-confirm <machine>", "Check whether the machine's match can be confirmed", 0, func(id int, _ []string) error {
	return performGetRequest(fmt.Sprintf("/machines/%d/can-confirm", id))
})

var assignCmd = machineCommand("assign <machine> <match-id>", "Put a match on a machine", 1, func(id int, args []string) error {
	return performRequest("POST", fmt.Sprintf("/machines/%d/assign", id), map[string]any{"match_id": args[0]})
})

var unassignCmd = machineCommand("unassign <machine>", "Clear a machine", 0, func(id int, _ []string) error {
	return performRequest("POST", fmt.Sprintf("/machines/%d/assign", id), map[string]any{"match_id": nil})
})

var confirmMachineCmd = machineCommand("confirm <machine>", "Confirm the match on a machine", 0, func(id int, _ []string) error {
	return performRequest("POST", fmt.Sprintf("/machines/%d/confirm", id), nil)
})

var favoriteCmd = machineCommand("favorite <machine>", "Toggle a machine's favourite flag", 0, func(id int, _ []string) error {
	return performRequest("POST", fmt.Sprintf("/machines/%d/favorite", id), nil)
})

var outOfOrderCmd = machineCommand("out-of-order <machine>", "Toggle a machine's out-of-order flag", 0, func(id int, _ []string) error {
	return performRequest("POST", fmt.Sprintf("/machines/%d/out-of-order", id), nil)
})

var qualityCmd = machineCommand("quality <machine> <1-5>", "Set a machine's quality rating", 1, func(id int, args []string) error {
	quality, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("quality must be a number, got %q", args[0])
	}
	return performRequest("PUT", fmt.Sprintf("/machines/%d/quality", id), map[string]int{"quality": quality})
})

var countCmd = &cobra.Command{
	Use:   "count <1-10>",
	Short: "Resize the machine pool",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("count must be a number, got %q", args[0])
		}
		return performRequest("PUT", "/machines/count", map[string]int{"count": n})
	},
}
