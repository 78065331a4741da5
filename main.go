package main

import "github.com/glyphbot/glyph/cmd"

func main() {
	cmd.Execute()
}
