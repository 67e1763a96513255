// Command udf_dump lists or extracts a Panasonic-authored UDF volume per
// §6.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"panasonic-rec/report"
	"panasonic-rec/storage"
	"panasonic-rec/udf"
)

var rootCmd = &cobra.Command{
	Use:                   "udf_dump <image> [<output-dir>]",
	Short:                 "Lists or extracts a UDF/ECMA-167 volume",
	Args:                  cobra.RangeArgs(1, 2),
	DisableFlagsInUseLine: true,
	RunE:                  run,
}

func run(cmd *cobra.Command, args []string) error {
	image := args[0]
	list := len(args) < 2
	var outDir string
	if !list {
		outDir = args[1]
	}

	sink := report.NewStd()

	f, err := os.Open(image)
	if err != nil {
		return err
	}
	defer f.Close()

	reader := storage.NewReader(f)
	reader.OnWarn(sink.Warn)

	fs, err := udf.Open(reader, sink)
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

	return fs.Walk(root, outDir, list)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
