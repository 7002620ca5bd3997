// Command trackerctl runs operator tasks against a Momentum deployment.
package main

import "momentum/internal/cli"

func main() {
	cli.Execute()
}
