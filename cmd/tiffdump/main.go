// Command tiffdump prints the IFD chain of a TIFF or BigTIFF file: every
// tag, its type, and its decoded value, one IFD per section.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/echoflaresat/tifflayout"
	"github.com/echoflaresat/tifflayout/container"
	"github.com/echoflaresat/tifflayout/ifd"
	"github.com/echoflaresat/tifflayout/ifdtype"
	"github.com/echoflaresat/tifflayout/source"
	"github.com/echoflaresat/tifflayout/tifftag"
)

func main() {
	strict := flag.Bool("strict", true, "require a well-formed TIFF header and offsets")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [-strict=false] <file.tif>\n", os.Args[0])
		os.Exit(2)
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	src, err := source.FromReadSeeker(f)
	if err != nil {
		log.Fatal(err)
	}

	opts := tifflayout.DefaultOptions()
	opts.RequireValidTiff = *strict
	opts.Logger = func(ev container.LogEvent) {
		fmt.Fprintf(os.Stderr, "warning: %s: %v\n", ev.Message, ev.Err)
	}

	p, err := tifflayout.NewParser(src, opts)
	if err != nil {
		log.Fatal(err)
	}

	ifds, err := p.IFDs()
	if err != nil {
		log.Fatal(err)
	}

	for i, d := range ifds {
		fmt.Printf("IFD %d:\n", i)
		dumpIFD(d)
		fmt.Println()
	}
}

func dumpIFD(d *ifd.Ifd) {
	for _, tag := range d.Tags() {
		entry, _ := d.Get(tag)
		fmt.Printf("  %-28s %-10s count=%-6d %s\n", tifftag.Tag(tag), entry.Type, entry.Count, formatValue(entry.Value))
	}
}

func formatValue(v ifdtype.Value) string {
	const maxShown = 8
	switch v.Type {
	case ifdtype.ASCII:
		return fmt.Sprintf("%q", v.Strings)
	case ifdtype.Byte, ifdtype.SByte, ifdtype.Undefined:
		if len(v.Bytes) > maxShown {
			return fmt.Sprintf("%v...", v.Bytes[:maxShown])
		}
		return fmt.Sprintf("%v", v.Bytes)
	case ifdtype.Short, ifdtype.Long, ifdtype.Long8, ifdtype.IFD, ifdtype.IFD8:
		if len(v.Uints) > maxShown {
			return fmt.Sprintf("%v...", v.Uints[:maxShown])
		}
		return fmt.Sprintf("%v", v.Uints)
	case ifdtype.SShort, ifdtype.SLong, ifdtype.SLong8:
		return fmt.Sprintf("%v", v.Ints)
	case ifdtype.Rational:
		return fmt.Sprintf("%v", v.Rationals)
	case ifdtype.SRational:
		return fmt.Sprintf("%v", v.SRationals)
	case ifdtype.Float:
		return fmt.Sprintf("%v", v.Floats)
	case ifdtype.Double:
		return fmt.Sprintf("%v", v.Doubles)
	default:
		return "?"
	}
}
