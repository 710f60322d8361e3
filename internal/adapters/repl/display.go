package repl

import (
	"fmt"
	"io"
)

func printHelp(w io.Writer) {
	fmt.Fprintln(w, `Commands:
  /login                      Sign in with email and password
  /logout                     Sign out and forget the stored token
  /whoami                     Show the signed-in agent
  /dash [step] [search...]    Residences, optionally filtered by step (1, 1a, 2 ... 10)
  /steps                      List the processing steps
  /currencies                 List ledger currencies
  /ledger [currency-id]       Payment statement (first currency by default)
  /res <id>                   Residence details and timeline
  /passwd                     Change your password
  /sms <number> <message>     Send a test SMS
  /help                       Show this help
  /exit                       Leave the shell

Any other input searches residences by passenger, passport or company.`)
}
