// Command siteprint identifies the WAF, CDN and bot-protection stack behind recorded HTTP
// responses.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/vulntor/siteprint/cmd/siteprint/commands"
	"github.com/vulntor/siteprint/cmd/siteprint/internal/format"
)

func main() {
	if err := commands.NewCommand().Execute(); err != nil {
		var reported *format.ReportedError
		if !errors.As(err, &reported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(commands.ExitCode(err))
	}
}
