// SPDX-License-Identifier: AGPL-3.0-only
package main

import (
	"github.com/joho/godotenv"

	"github.com/softpaws/postharvest/internal/commands"
)

func main() {
	// Optional .env for local use; real deployments pass credentials
	// through the environment directly.
	godotenv.Load()

	commands.Execute()
}
