// SPDX-License-Identifier: EPL-2.0

package commands

import (
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info <input>",
	Short: "Print sample rate, channels and duration of an audio file",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	src, f, err := openSource(args[0])
	if err != nil {
		return err
	}
	defer f.Close()
	defer src.Close()

	var (
		buf    = make([]float32, 4096*src.Channels())
		frames int
		peak   float64
	)
	for {
		n, err := src.ReadSamples(buf)
		for _, v := range buf[:n] {
			peak = math.Max(peak, math.Abs(float64(v)))
		}
		frames += n / src.Channels()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
	}

	duration := time.Duration(frames) * time.Second / time.Duration(src.SampleRate())
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "File:        %s\n", args[0])
	fmt.Fprintf(out, "Sample rate: %d Hz\n", src.SampleRate())
	fmt.Fprintf(out, "Channels:    %d\n", src.Channels())
	fmt.Fprintf(out, "Frames:      %d\n", frames)
	fmt.Fprintf(out, "Duration:    %s\n", duration.Round(time.Millisecond))
	fmt.Fprintf(out, "Peak:        %.3f\n", peak)
	return nil
}
