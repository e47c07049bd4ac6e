package main

import "github.com/bigpicturetv/bigpicturetv/internal/cli"

var (
	version = "0.1.0"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cli.Execute(cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	})
}
