// Command ctrldef compiles control tables and reports the resulting
// registry.
//
// Usage:
//
//	ctrldef compile controls.csv --format yaml
//	ctrldef check controls.csv
//	ctrldef watch controls.csv
package main

func main() {
	Execute()
}
