// Command simnet sizes server pools against a p99.9 latency SLA by
// simulating Poisson arrivals over a short window. See cmd/ for subcommands.

package main

import (
	"github.com/shenango/bench/cmd"
)

func main() {
	cmd.Execute()
}
