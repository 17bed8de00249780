package flavor

import (
	"strconv"
	"strings"
)

// Slugs the classifier hands out. They match what the BigWigs packager
// calls the game flavors, which is also what players expect to see in
// archive names.
const (
	Retail  = "retail"
	Classic = "classic"
	BCC     = "bcc"
	Wrath   = "wrath"
	Cata    = "cata"
)

// Classify maps a numeric TOC interface value to its game flavor. The
// leading digits decide: 5-digit values starting 11 are classic era,
// 20/30/40 are the expansion re-releases, everything else is retail.
func Classify(iface int) string {
	s := strconv.Itoa(iface)

	switch {
	case strings.HasPrefix(s, "11") && len(s) == 5:
		return Classic
	case strings.HasPrefix(s, "20"):
		return BCC
	case strings.HasPrefix(s, "30"):
		return Wrath
	case strings.HasPrefix(s, "40"):
		return Cata
	default:
		return Retail
	}
}

// ArchiveName is the local name for a downloaded build. Single-flavor
// builds get tagged with their slug so the archives for each flavor
// don't collide; a build spanning retail keeps its upstream name.
func ArchiveName(fileName, slug string) string {
	base := strings.TrimSuffix(fileName, ".zip")

	if slug != "" && !strings.HasSuffix(base, "-"+slug) {
		base += "-" + slug
	}

	return base + ".zip"
}
