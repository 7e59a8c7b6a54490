package main

import "easyApply/internal/cli"

func main() {
	cli.Execute()
}
