/*
Honeycomb lays out a hexagonal grid of cells and animates a ripple across it whenever
a cell is tapped: every cell dips to a smaller scale and springs back, later the farther
it sits from the tapped cell. The grid can be served to browsers over a websocket or drawn
in a terminal, and several processes can share one wave through redis.
*/
package main

import "honeycomb/cmd"

func main() {
	cmd.Execute()
}
