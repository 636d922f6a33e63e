// exrarray inspects and rewrites the channels of OpenEXR files.
//
// Usage:
//
//	exrarray [-v] [-profile cpu|mem] <command> [args]
//
// Commands:
//
//	info    -in a.exr [-json]
//	extract -in a.exr -out b.exr -channels R,G [-compression zip]
//	rename  -in a.exr -out b.exr -map B=R,R=B [-compression zip]
//	cast    -in a.exr -out b.exr -dtype float16 [-channels R,G] [-compression zip]
//
// Exit codes:
//
//	0: success
//	1: command failed
//	2: usage error
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mrjoshuak/go-openexr/exr"
	"github.com/pkg/profile"
	log "github.com/sirupsen/logrus"

	"github.com/mrjoshuak/go-exrarray/exrarray"
	"github.com/mrjoshuak/go-exrarray/ndarray"
)

var errUsage = errors.New("usage")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, stdout io.Writer) int {
	global := flag.NewFlagSet("exrarray", flag.ContinueOnError)
	verbose := global.Bool("v", false, "debug logging")
	prof := global.String("profile", "", "write a cpu or mem profile to the current directory")
	global.SetOutput(os.Stderr)
	global.Usage = usage
	if err := global.Parse(args); err != nil {
		return 2
	}
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}
	switch *prof {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.Quiet).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileHeap, profile.ProfilePath("."), profile.Quiet).Stop()
	default:
		fmt.Fprintf(os.Stderr, "Unknown profile mode: %s\n", *prof)
		return 2
	}

	rest := global.Args()
	if len(rest) == 0 {
		usage()
		return 2
	}

	var err error
	switch rest[0] {
	case "info":
		err = runInfo(rest[1:], stdout)
	case "extract":
		err = runExtract(rest[1:])
	case "rename":
		err = runRename(rest[1:])
	case "cast":
		err = runCast(rest[1:])
	case "help", "-h", "--help":
		usage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", rest[0])
		usage()
		return 2
	}
	if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
		usage()
		return 2
	}
	if err != nil {
		log.Errorf("%s: %v", rest[0], err)
		return 1
	}
	return 0
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: exrarray [-v] [-profile cpu|mem] <command> [args]")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  info    -in a.exr [-json]")
	fmt.Fprintln(os.Stderr, "  extract -in a.exr -out b.exr -channels R,G [-compression zip]")
	fmt.Fprintln(os.Stderr, "  rename  -in a.exr -out b.exr -map B=R,R=B [-compression zip]")
	fmt.Fprintln(os.Stderr, "  cast    -in a.exr -out b.exr -dtype float16 [-channels R,G] [-compression zip]")
}

func runInfo(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	in := fs.String("in", "", "input EXR file")
	asJSON := fs.Bool("json", false, "print JSON")
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if *in == "" {
		return fmt.Errorf("%w: -in is required", errUsage)
	}

	info, err := exrarray.Stat(*in)
	if err != nil {
		return err
	}
	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}

	fmt.Fprintf(stdout, "%s: %dx%d, %v compression", info.Path, info.Width, info.Height, info.Compression)
	if info.Tiled {
		fmt.Fprint(stdout, ", tiled")
	}
	if info.MultiPart {
		fmt.Fprint(stdout, ", multi-part (first part shown)")
	}
	fmt.Fprintln(stdout)
	for _, ch := range info.Channels {
		if ch.Subsampled() {
			fmt.Fprintf(stdout, "  %-16s %v (%dx%d subsampled)\n", ch.Name, ch.DType, ch.XSampling, ch.YSampling)
			continue
		}
		fmt.Fprintf(stdout, "  %-16s %v\n", ch.Name, ch.DType)
	}
	if info.Owner != "" {
		fmt.Fprintf(stdout, "  owner: %s\n", info.Owner)
	}
	if info.Comments != "" {
		fmt.Fprintf(stdout, "  comments: %s\n", info.Comments)
	}
	if len(info.Attributes) > 0 {
		fmt.Fprintf(stdout, "  attributes: %s\n", strings.Join(info.Attributes, ", "))
	}
	return nil
}

// ioFlags holds the flags shared by the rewriting commands.
type ioFlags struct {
	in          *string
	out         *string
	compression *string
}

func addIOFlags(fs *flag.FlagSet) ioFlags {
	return ioFlags{
		in:          fs.String("in", "", "input EXR file"),
		out:         fs.String("out", "", "output EXR file"),
		compression: fs.String("compression", "zip", "output compression: "+strings.Join(compressionNames(), ", ")),
	}
}

func (f ioFlags) check() (exr.Compression, error) {
	if *f.in == "" || *f.out == "" {
		return 0, fmt.Errorf("%w: -in and -out are required", errUsage)
	}
	return parseCompression(*f.compression)
}

func runExtract(args []string) error {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	files := addIOFlags(fs)
	channels := fs.String("channels", "", "comma-separated channel names")
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	comp, err := files.check()
	if err != nil {
		return err
	}
	names := splitList(*channels)
	if len(names) == 0 {
		return fmt.Errorf("%w: -channels is required", errUsage)
	}

	m, err := exrarray.Read(*files.in, exrarray.WithChannelNames(names...))
	if err != nil {
		return err
	}
	return exrarray.Write(*files.out, m, exrarray.WithCompression(comp))
}

func runRename(args []string) error {
	fs := flag.NewFlagSet("rename", flag.ContinueOnError)
	files := addIOFlags(fs)
	mapping := fs.String("map", "", "comma-separated old=new pairs")
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	comp, err := files.check()
	if err != nil {
		return err
	}
	renames, err := parseRenames(*mapping)
	if err != nil {
		return err
	}

	m, err := exrarray.Read(*files.in)
	if err != nil {
		return err
	}
	out, err := renameChannels(m, renames)
	if err != nil {
		return err
	}
	return exrarray.Write(*files.out, out, exrarray.WithCompression(comp))
}

func runCast(args []string) error {
	fs := flag.NewFlagSet("cast", flag.ContinueOnError)
	files := addIOFlags(fs)
	dtype := fs.String("dtype", "", "target dtype: float16, float32 or uint32")
	channels := fs.String("channels", "", "comma-separated channels to convert (default all)")
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	comp, err := files.check()
	if err != nil {
		return err
	}
	if *dtype == "" {
		return fmt.Errorf("%w: -dtype is required", errUsage)
	}
	target, err := ndarray.ParseDType(*dtype)
	if err != nil {
		return err
	}

	m, err := exrarray.Read(*files.in)
	if err != nil {
		return err
	}
	selected := splitList(*channels)
	if len(selected) == 0 {
		selected = m.Names()
	}
	if _, err := exrarray.SelectChannels(m.Names(), selected); err != nil {
		return err
	}
	for _, name := range selected {
		p, err := m.Get(name).Cast(target)
		if err != nil {
			return err
		}
		m.Set(name, p)
	}
	return exrarray.Write(*files.out, m, exrarray.WithCompression(comp))
}

// renameChannels applies old->new renames. Channels not named in renames
// keep their name. Two channels ending up with one name is an error.
func renameChannels(m *ndarray.ChannelMap, renames map[string]string) (*ndarray.ChannelMap, error) {
	for old := range renames {
		if !m.Has(old) {
			return nil, fmt.Errorf("%w: %q", exrarray.ErrChannelNotFound, old)
		}
	}
	out := ndarray.NewChannelMap()
	for _, name := range m.Names() {
		target := name
		if n, ok := renames[name]; ok {
			target = n
		}
		if out.Has(target) {
			return nil, fmt.Errorf("%w: two channels renamed to %q", exrarray.ErrInvalidChannelName, target)
		}
		out.Set(target, m.Get(name))
	}
	return out, nil
}

func parseRenames(s string) (map[string]string, error) {
	pairs := splitList(s)
	if len(pairs) == 0 {
		return nil, fmt.Errorf("%w: -map is required", errUsage)
	}
	renames := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		old, name, ok := strings.Cut(pair, "=")
		if !ok || old == "" || name == "" {
			return nil, fmt.Errorf("%w: bad rename %q, want old=new", errUsage, pair)
		}
		if _, dup := renames[old]; dup {
			return nil, fmt.Errorf("%w: %q renamed twice", errUsage, old)
		}
		renames[old] = name
	}
	return renames, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

var compressions = []struct {
	name string
	c    exr.Compression
}{
	{"none", exr.CompressionNone},
	{"rle", exr.CompressionRLE},
	{"zips", exr.CompressionZIPS},
	{"zip", exr.CompressionZIP},
	{"piz", exr.CompressionPIZ},
	{"pxr24", exr.CompressionPXR24},
	{"b44", exr.CompressionB44},
	{"b44a", exr.CompressionB44A},
	{"dwaa", exr.CompressionDWAA},
	{"dwab", exr.CompressionDWAB},
}

func compressionNames() []string {
	names := make([]string, len(compressions))
	for i, c := range compressions {
		names[i] = c.name
	}
	return names
}

func parseCompression(s string) (exr.Compression, error) {
	for _, c := range compressions {
		if strings.EqualFold(s, c.name) {
			return c.c, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown compression %q", errUsage, s)
}
