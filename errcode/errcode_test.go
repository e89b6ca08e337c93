package errcode

import (
	"errors"
	"fmt"
	"testing"
)

func TestCodesAreStableStrings(t *testing.T) {
	cases := map[string]Code{
		"timeout":            Timeout,
		"no_response":        NoResponse,
		"checksum":           Checksum,
		"incorrect_response": IncorrectResponse,
		"send_failed":        SendFailed,
		"bus_fault":          BusFault,
		"bad_chip_id":        BadChipID,
	}
	for want, c := range cases {
		if c.Error() != want {
			t.Fatalf("code %q mismatch: got %q", want, c.Error())
		}
	}
}

func TestOfWalksWrappedChain(t *testing.T) {
	base := &E{C: IncorrectResponse, Op: "pms7003.sleep"}
	wrapped := fmt.Errorf("handshake: %w", base)
	if got := Of(wrapped); got != IncorrectResponse {
		t.Fatalf("Of(wrapped) = %q, want %q", got, IncorrectResponse)
	}
	if got := Of(fmt.Errorf("x: %w", NoResponse)); got != NoResponse {
		t.Fatalf("Of(bare code) = %q", got)
	}
	if got := Of(errors.New("boom")); got != Error {
		t.Fatalf("Of(plain) = %q, want %q", got, Error)
	}
	if Of(nil) != OK {
		t.Fatal("Of(nil) should be OK")
	}
}

func TestEErrorIncludesContext(t *testing.T) {
	err := Wrap(BusFault, "bme680.read", errors.New("nack"))
	if err.Error() != "bme680.read: bus_fault: nack" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if Wrap(BusFault, "op", nil) != nil {
		t.Fatal("Wrap(nil) should be nil")
	}
}
