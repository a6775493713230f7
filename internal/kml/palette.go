package kml

import (
	"fmt"
	"strings"
)

// Palette lists the icon colours (aabbggrr) given to combined source documents.
var Palette = [...]string{
	"ff0000ff", // red
	"ff00ff00", // green
	"ffff0000", // blue
	"ff00ffff", // yellow
	"ffff00ff", // magenta
	"ffffff00", // cyan
	"ff9900ff", // orange
}

const iconHref = "http://maps.google.com/mapfiles/kml/paddle/1.png"

// StyleIndex returns the palette slot used by the source document at position.
func StyleIndex(position int) int {
	return position % len(Palette)
}

// StyleID returns the id of the style shared by every placemark of the source document at position.
func StyleID(position int) string {
	return fmt.Sprintf("style%d", StyleIndex(position))
}

// writeStyles appends one icon style per palette colour.
func writeStyles(buf *strings.Builder) {
	for idx, color := range Palette {
		fmt.Fprintf(buf, "<Style id=\"%s\">\n", StyleID(idx))
		buf.WriteString("    <IconStyle>\n")
		fmt.Fprintf(buf, "        <color>%s</color>\n", color)
		buf.WriteString("        <Icon>\n")
		fmt.Fprintf(buf, "            <href>%s</href>\n", iconHref)
		buf.WriteString("        </Icon>\n")
		buf.WriteString("    </IconStyle>\n")
		buf.WriteString("</Style>\n")
	}
}
