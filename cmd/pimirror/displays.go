package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/pimirror/internal/capture"
	"github.com/jmylchreest/pimirror/internal/display"
	"github.com/jmylchreest/pimirror/internal/fbdev"
)

var displaysOpts struct {
	jsonOut bool
}

// displayList is the JSON shape of the displays command output.
type displayList struct {
	Screens      []display.Info `json:"screens"`
	Framebuffers []display.Info `json:"framebuffers"`
}

var displaysCmd = &cobra.Command{
	Use:   "displays",
	Short: "List capture displays and framebuffer devices",
	Long: `List the displays pimirror can mirror between: the screens visible
to the capture backend and the framebuffer devices under /dev.`,
	RunE: runDisplays,
}

func init() {
	rootCmd.AddCommand(displaysCmd)

	displaysCmd.Flags().BoolVar(&displaysOpts.jsonOut, "json", false,
		"Output as JSON")
}

func runDisplays(cmd *cobra.Command, args []string) error {
	list := displayList{
		Screens:      capture.ListScreens(),
		Framebuffers: fbdev.List(),
	}

	if displaysOpts.jsonOut {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(list)
	}

	fmt.Println("Screens:")
	if len(list.Screens) == 0 {
		fmt.Println("  none")
	}
	for _, info := range list.Screens {
		fmt.Printf("  [%d] %dx%d %s\n", info.Display, info.Width, info.Height, info.Format)
	}

	fmt.Println("Framebuffers:")
	if len(list.Framebuffers) == 0 {
		fmt.Println("  none")
	}
	for _, info := range list.Framebuffers {
		fmt.Printf("  [%d] %s %dx%d %s\n", info.Display, info.Device, info.Width, info.Height, info.Format)
	}

	return nil
}
