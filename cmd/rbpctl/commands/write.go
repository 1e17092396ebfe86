package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var writeCmd = &cobra.Command{
	Use:   "write <path> <value>",
	Short: "Write one register",
	Args:  cobra.ExactArgs(2),
	RunE:  runWrite,
}

func runWrite(cmd *cobra.Command, args []string) error {
	value, err := strconv.ParseUint(args[1], 0, 32)
	if err != nil {
		return fmt.Errorf("rbpctl: invalid value %q: %w", args[1], err)
	}

	c, err := newClient()
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Write(context.Background(), args[0], uint32(value)); err != nil {
		return err
	}
	fmt.Printf("%s <- 0x%08x\n", args[0], value)
	return nil
}
