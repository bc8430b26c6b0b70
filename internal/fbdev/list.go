package fbdev

import (
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/jmylchreest/pimirror/internal/display"
)

// List reports every framebuffer device that can be opened on this
// system. Devices that fail to open or report an unusable layout are
// skipped rather than failing the whole listing.
func List() []display.Info {
	paths, _ := filepath.Glob("/dev/fb[0-9]*")

	infos := make([]display.Info, 0, len(paths))
	for _, path := range paths {
		number, err := strconv.Atoi(strings.TrimPrefix(path, "/dev/fb"))
		if err != nil {
			continue
		}
		dev, err := OpenReadOnly(number)
		if err != nil {
			continue
		}
		infos = append(infos, dev.Info())
		dev.Close()
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Display < infos[j].Display })
	return infos
}
