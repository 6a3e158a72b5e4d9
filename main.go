package main

import (
	_ "git.nextdev.network/nextdev/nextdev/src/admintools"
	_ "git.nextdev.network/nextdev/nextdev/src/migration"
	_ "git.nextdev.network/nextdev/nextdev/src/nds3"
	"git.nextdev.network/nextdev/nextdev/src/website"
)

func main() {
	website.WebsiteCommand.Execute()
}
