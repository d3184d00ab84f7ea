package main

import "daily-report-go/internal/cli"

func main() {
	cli.Execute()
}
