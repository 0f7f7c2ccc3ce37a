package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/uhyunpark/venueorder/pkg/crypto"
	"github.com/uhyunpark/venueorder/pkg/order"
)

// Reads a raw order request (JSON) from a file or stdin and prints its
// message object, wire payload and payload digest.
//
//	echo '{"price":"50000","amount":"-0.5","type":"EXCHANGE_MARKET","symbol":"BTC.USDT"}' | order-payload
func main() {
	seskey1 := flag.String("seskey1", os.Getenv("SESKEY1"), "session key 1")
	seskey2 := flag.String("seskey2", os.Getenv("SESKEY2"), "session key 2")
	flag.Parse()

	if err := run(flag.Arg(0), order.Credentials{SesKey1: *seskey1, SesKey2: *seskey2}, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type output struct {
	Message order.MessageObject `json:"message"`
	Payload order.WirePayload   `json:"payload"`
	Digest  string              `json:"digest"`
}

func run(path string, creds order.Credentials, stdin io.Reader, stdout io.Writer) error {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("read order: %w", err)
	}

	raw, err := order.DecodeRawOrder(data)
	if err != nil {
		return err
	}

	o, err := order.New(raw, creds)
	if err != nil {
		var ve *order.ValidationError
		if errors.As(err, &ve) {
			return fmt.Errorf("order rejected (%s): %w", ve.Kind, err)
		}
		return err
	}

	payload := o.Serialize()
	encoded, err := payload.Encode()
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(output{
		Message: o.MessageObject(),
		Payload: payload,
		Digest:  crypto.DigestHex(encoded),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(stdout, string(out))
	return err
}
