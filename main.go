package main

import (
	cmd "github.com/rohmanhakim/news-harvester/internal/cli"
)

func main() {
	cmd.Execute()
}
