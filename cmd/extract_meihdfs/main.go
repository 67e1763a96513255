// Command extract_meihdfs lists or extracts a MEIHDFS image per §6.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"panasonic-rec/meihdfs"
	"panasonic-rec/report"
	"panasonic-rec/storage"
)

var (
	seedFlag    string
	recoverFlag int
)

var rootCmd = &cobra.Command{
	Use:                   "extract_meihdfs [-s0x<hex-start>] [-r1] <image> [<output-dir>]",
	Short:                 "Lists or extracts a Panasonic MEIHDFS disk image",
	Args:                  cobra.RangeArgs(1, 2),
	DisableFlagsInUseLine: true,
	RunE:                  run,
}

func init() {
	rootCmd.Flags().StringVarP(&seedFlag, "seed", "s", "0x0", "seed offset for the header scan, hex (0x...) or decimal")
	rootCmd.Flags().IntVarP(&recoverFlag, "recover", "r", 0, "1 enables single-sector recovery reads")
}

func run(cmd *cobra.Command, args []string) error {
	image := args[0]
	list := len(args) < 2
	var outDir string
	if !list {
		outDir = args[1]
	}

	seed, err := parseSeed(seedFlag)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sink := report.NewStd()

	f, err := os.Open(image)
	if err != nil {
		return err
	}
	defer f.Close()

	reader := storage.NewReader(f)
	reader.Recover = recoverFlag != 0
	reader.OnWarn(sink.Warn)

	fs, err := meihdfs.Open(reader, seed, sink)
	if err != nil {
		return err
	}

	root, err := fs.Root()
	if err != nil {
		return err
	}

	if !list {
		if err := os.MkdirAll(outDir, 0775); err != nil {
			return err
		}
	}

	done := make(chan error, 1)
	go func() { done <- fs.Walk(root, outDir, list) }()

	select {
	case <-ctx.Done():
		sink.Warn("interrupted, exiting after the file in progress completes")
		return <-done
	case err := <-done:
		return err
	}
}

// parseSeed accepts both "0x..." hex and plain decimal, per §6's
// `-s0x<hex-start>` flag shape.
func parseSeed(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := strconv.ParseInt(s[2:], 16, 64)
		return v, err
	}
	return strconv.ParseInt(s, 10, 64)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
