package main

import (
	"context"

	"github.com/user/offer-scraper/cmd/scraper/commands"
)

func main() {
	commands.ExecuteContext(context.Background())
}
