// Command upsilon composes the Upsilon SoC, exports its address table and
// firmware headers, and runs simulations of it.
package main

func main() {
	Execute()
}
