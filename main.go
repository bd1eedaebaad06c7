package main

import (
	"github.com/sidkik/nosync/cmd"
	"github.com/sidkik/nosync/cmd/util"
)

func main() {
	defer util.HandlePanic()
	cmd.Execute()
}
