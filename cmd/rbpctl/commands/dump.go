package commands

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ast0815/ipbus-software/internal/rbpinspector"
)

var (
	dumpMajor uint8
	dumpMinor uint8
	dumpReply bool
)

var dumpCmd = &cobra.Command{
	Use:   "dump <word>...",
	Short: "Decode a hex-word RBP packet and print it",
	Long: `dump parses a sequence of 32-bit hex words (e.g. "0x20000000 0x1000001f 0x00000010")
as one RBP packet. A reply (the default) is printed as a table on stdout;
with --reply=false the packet is decoded as a request and each transaction
is logged at debug level.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDump,
}

func init() {
	dumpCmd.Flags().Uint8Var(&dumpMajor, "major", 2, "RBP major version")
	dumpCmd.Flags().Uint8Var(&dumpMinor, "minor", 0, "RBP minor version")
	dumpCmd.Flags().BoolVar(&dumpReply, "reply", true, "Decode as a target-to-host reply (false decodes a host-to-target request)")
}

func runDump(cmd *cobra.Command, args []string) error {
	words := make([]uint32, 0, len(args))
	for _, a := range args {
		v, err := strconv.ParseUint(strings.TrimSpace(a), 0, 32)
		if err != nil {
			return fmt.Errorf("rbpctl: invalid word %q: %w", a, err)
		}
		words = append(words, uint32(v))
	}

	if dumpReply {
		v := &rbpinspector.TableReplyVisitor{}
		if err := rbpinspector.WalkReply(dumpMajor, dumpMinor, words, v); err != nil {
			return err
		}
		v.Flush(os.Stdout)
		return nil
	}

	v := &rbpinspector.LoggingRequestVisitor{}
	return rbpinspector.WalkRequest(dumpMajor, dumpMinor, words, v)
}
