package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var readBlockCount int

var readCmd = &cobra.Command{
	Use:   "read <path>",
	Short: "Read one register (or a block with --count)",
	Args:  cobra.ExactArgs(1),
	RunE:  runRead,
}

func init() {
	readCmd.Flags().IntVar(&readBlockCount, "count", 0, "Read this many words as a block instead of a single register")
}

func runRead(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	defer c.Close()

	path := args[0]
	ctx := context.Background()

	if readBlockCount > 0 {
		data, err := c.ReadBlock(ctx, path, readBlockCount)
		if err != nil {
			return err
		}
		for i, v := range data {
			fmt.Printf("%s[%d] = 0x%08x\n", path, i, v)
		}
		return nil
	}

	v, err := c.Read(ctx, path)
	if err != nil {
		return err
	}
	fmt.Printf("%s = 0x%08x (%s)\n", path, v, strconv.FormatUint(uint64(v), 10))
	return nil
}
