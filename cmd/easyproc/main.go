package main

import "github.com/rzbill/easyproc/pkg/cli/cmd"

func main() {
	cmd.Execute()
}
