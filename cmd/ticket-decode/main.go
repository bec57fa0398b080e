// Command ticket-decode prints the decoded form of ticket digit strings.
// Codes come from the arguments, or one per line on stdin.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/XavierBriggs/fortuna/services/ticket-scanner/pkg/models"
	"github.com/XavierBriggs/fortuna/services/ticket-scanner/pkg/ticketcode"
)

type output struct {
	Input  string                 `json:"input"`
	Error  string                 `json:"error,omitempty"`
	Result *models.DecodeResponse `json:"result,omitempty"`
}

func main() {
	compact := flag.Bool("compact", false, "one JSON document per line")
	flag.Parse()

	enc := json.NewEncoder(os.Stdout)
	if !*compact {
		enc.SetIndent("", "  ")
	}

	codes := flag.Args()
	if len(codes) == 0 {
		var err error
		if codes, err = readLines(os.Stdin); err != nil {
			fmt.Fprintf(os.Stderr, "read stdin: %v\n", err)
			os.Exit(1)
		}
	}

	failed := false
	for _, code := range codes {
		out := decode(code, time.Now())
		if out.Error != "" || !out.Result.Valid {
			failed = true
		}
		if err := enc.Encode(out); err != nil {
			fmt.Fprintf(os.Stderr, "encode: %v\n", err)
			os.Exit(1)
		}
	}

	if failed {
		os.Exit(2)
	}
}

func decode(code string, now time.Time) output {
	out := output{Input: code}

	ticket, err := ticketcode.Decode(code)
	if err != nil {
		out.Error = err.Error()
		return out
	}

	resp := &models.DecodeResponse{Ticket: ticket, Valid: true}
	if err := ticketcode.Validate(ticket); err != nil {
		resp.Valid = false
		resp.Problems = err.Error()
	} else {
		resp.Draft = models.DraftFromTicket(ticket, now)
	}
	out.Result = resp
	return out
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}
