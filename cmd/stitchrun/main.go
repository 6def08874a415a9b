// Command stitchrun stitches a folder of microscope tiles from the command
// line, without starting the viewer.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"scratch-view/internal/stitch"
)

func main() {
	dir := flag.String("dir", "", "Folder of numbered image tiles")
	macro := flag.String("macro", "", "Path to the stitching macro script")
	fiji := flag.String("fiji", stitch.DefaultFijiCommand, "Fiji/ImageJ executable")
	overlap := flag.Int("overlap", stitch.DefaultOverlapPct, "Tile overlap percentage")
	leftDown := flag.Bool("leftdown", false, "Tiles were captured right to left")
	dryRun := flag.Bool("n", false, "Print the plan without running the stitcher")
	timeout := flag.Duration("timeout", 30*time.Minute, "Give up after this long")
	flag.Parse()

	if *dir == "" {
		fmt.Println("Usage: stitchrun -dir <tile folder> -macro <script> [-fiji fiji] [-overlap 20] [-leftdown] [-n]")
		os.Exit(1)
	}

	order := stitch.RightDown
	if *leftDown {
		order = stitch.LeftDown
	}

	plan, err := stitch.PlanFolder(*dir, order, *overlap)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Planning failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Tiles:   %d (%s, first index %d)\n", plan.GridX, plan.Pattern, plan.FirstIndex)
	fmt.Printf("Order:   %s, overlap %d%%\n", plan.Order, plan.OverlapPct)
	fmt.Printf("Output:  %s\n", plan.OutputPath)
	if *dryRun {
		return
	}
	if *macro == "" {
		fmt.Fprintln(os.Stderr, "A -macro script is required to run the stitcher")
		os.Exit(1)
	}

	runner := stitch.NewRunner(*macro)
	runner.Command = *fiji
	runner.Log = logrus.StandardLogger()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	if err := runner.Run(ctx, plan); err != nil {
		fmt.Fprintf(os.Stderr, "Stitching failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Stitched image written to %s\n", plan.OutputPath)
}
