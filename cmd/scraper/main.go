package main

import "github.com/user/speedsale-scraper/internal/cli"

func main() {
	cli.Execute()
}
