package main

import "github.com/Belphemur/MediaDownloader/internal/cli"

func main() {
	cli.Execute()
}
