// uxnromstat is a small one-shot tool: given a ROM path, it reports the
// ROM's size; with --list it instead lists a directory inside the sandboxed
// filesystem root the way a running ROM's file device would see it.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"varvara/internal/fsdev"
)

func main() {
	root := pflag.StringP("root", "r", ".", "filesystem sandbox root to resolve paths against")
	listDir := pflag.StringP("list", "l", "", "list a directory inside the sandbox root instead of stat-ing a ROM")
	help := pflag.BoolP("help", "h", false, "display help text")
	pflag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: uxnromstat [flags] path/to/rom.rom")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *help {
		pflag.Usage()
		return
	}

	if *listDir != "" {
		if err := listDirectory(*root, *listDir); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if pflag.NArg() != 1 {
		pflag.Usage()
		os.Exit(1)
	}

	info, err := os.Stat(pflag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("%s\t%d bytes\n", pflag.Arg(0), info.Size())
}

func listDirectory(root, dir string) error {
	fs, err := fsdev.New(root)
	if err != nil {
		return err
	}
	entries, err := fs.ListDirForStat(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Println(e)
	}
	return nil
}
