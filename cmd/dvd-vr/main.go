// Command dvd-vr extracts programs from a DVD-VR VR_MANGR.IFO/VR_MOVIE.VRO
// pair per §6.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"panasonic-rec/dvdvr"
	"panasonic-rec/report"
)

var (
	programFlag int
	nameFlag    string
)

var rootCmd = &cobra.Command{
	Use:                   "dvd-vr [-p N] [-n NAME|-|[label]] <IFO> [<VRO>]",
	Short:                 "Extracts programs from a DVD-VR IFO/VRO pair",
	Args:                  cobra.RangeArgs(1, 2),
	DisableFlagsInUseLine: true,
	RunE:                  run,
}

func init() {
	rootCmd.Flags().IntVarP(&programFlag, "program", "p", 0, "restrict extraction to one program number, 0 for all")
	rootCmd.Flags().StringVarP(&nameFlag, "name", "n", "", `output naming: "-" for stdout, "[label]" to derive from disc labels, otherwise a prefix`)
}

func run(cmd *cobra.Command, args []string) error {
	ifoPath := args[0]
	vroPath := ""
	if len(args) == 2 {
		vroPath = args[1]
	} else {
		vroPath = filepath.Join(filepath.Dir(ifoPath), "VR_MOVIE.VRO")
	}

	sink := report.NewStd()

	ifoBuf, err := os.ReadFile(ifoPath)
	if err != nil {
		return err
	}
	ifo, err := dvdvr.ParseIFO(ifoBuf, sink)
	if err != nil {
		return err
	}

	vro, err := os.Open(vroPath)
	if err != nil {
		return err
	}
	defer vro.Close()

	for _, prog := range ifo.Programs {
		if programFlag != 0 && prog.Number != programFlag {
			continue
		}
		if err := extractOne(vro, ifo, prog, sink); err != nil {
			return err
		}
	}
	return nil
}

func extractOne(vro *os.File, ifo *dvdvr.IFO, prog dvdvr.Program, sink report.Sink) error {
	video := dvdvr.VideoAttr{Aspect: -1, Width: -1, Height: -1}
	if prog.FormatID >= 0 && prog.FormatID < len(ifo.VideoFormats) {
		video = ifo.VideoFormats[prog.FormatID]
	}

	name := dvdvr.NameProgram(".", nameFlag, prog)

	var out io.Writer
	if name == "-" {
		out = os.Stdout
	} else {
		f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0666)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	sink.Info("extracting program %d -> %s", prog.Number, displayName(name))
	return dvdvr.ExtractProgram(vro, prog, video, out, sink)
}

func displayName(name string) string {
	if name == "-" {
		return "stdout"
	}
	return name
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
