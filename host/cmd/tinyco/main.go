package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/golang/glog"

	"tinyco/host/cli"
)

func main() {
	// glog reads its flags from flag.CommandLine; cobra fills them in.
	flag.CommandLine.Parse(nil)

	cmd := cli.NewRootCommand()
	err := cmd.Execute()
	glog.Flush()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
