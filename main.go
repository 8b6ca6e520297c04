package main

import (
	"github.com/coursecast/coursecast/cmd"
	"github.com/coursecast/coursecast/config"
	"github.com/coursecast/coursecast/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	cmd.Execute()
}
