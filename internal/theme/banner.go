package theme

import (
	"fmt"
)

// Banner returns the retro neon banner.
func Banner() string {
	const cyan = "\033[36m"
	const magenta = "\033[35m"
	const yellow = "\033[33m"
	const reset = "\033[0m"

	art := "" +
		"  ✦✵✷   " + magenta + "RESONANCE" + reset + "   ✷✵✦\n" +
		cyan + "   ▄██████▄   ▄▄   ▄▄   ▄██████▄\n" + reset +
		cyan + "  ▐██▀  ▀██▌ ███ ▐███ ▐██▀  ▀██▌\n" + reset +
		cyan + "   ▀██▄▄██▀  ▐███▌███▌ ▀██▄▄██▀\n" + reset +
		yellow + "     ────────────────────────────\n" + reset +
		"   a content resonance navigator for socialverse ✦\n"

	stars := magenta + "       ✦    ✧     ✦     ✧    ✦\n" + reset
	return art + stars
}

// PrintBanner prints the banner to stdout.
func PrintBanner() {
	fmt.Print(Banner())
}
