package main

import "social_post_generator/cmd"

func main() {
	cmd.Execute()
}
