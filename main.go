// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/jarnest/jarnest/cmd/jarnest"

func main() {
	cmd.Execute()
}
