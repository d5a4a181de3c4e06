package main

import (
	"fmt"
	"os"

	"github.com/brimdata/nibs/cmd/nibs/decode"
	"github.com/brimdata/nibs/cmd/nibs/encode"
	"github.com/brimdata/nibs/cmd/nibs/get"
	"github.com/brimdata/nibs/cmd/nibs/hash"
	"github.com/brimdata/nibs/cmd/nibs/root"
	"github.com/brimdata/nibs/pkg/charm"
)

func init() {
	root.Nibs.Add(encode.Cmd)
	root.Nibs.Add(decode.Cmd)
	root.Nibs.Add(get.Cmd)
	root.Nibs.Add(hash.Cmd)
	root.Nibs.Add(charm.Help)
}

func main() {
	if err := root.Nibs.ExecRoot(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}
