package ledger

import (
	"context"
	"time"
)

// DemoBarcode is what the stand-in decoder reports for every frame.
const DemoBarcode = "7311041030424"

// Decoder turns a camera frame into a barcode.
type Decoder interface {
	Decode(ctx context.Context, frame []byte) (string, error)
}

// FixedDecoder ignores the frame and reports Barcode after Delay.
type FixedDecoder struct {
	Barcode string
	Delay   time.Duration
}

func NewFixedDecoder(delay time.Duration) *FixedDecoder {
	return &FixedDecoder{Barcode: DemoBarcode, Delay: delay}
}

func (d *FixedDecoder) Decode(ctx context.Context, _ []byte) (string, error) {
	if d.Delay > 0 {
		t := time.NewTimer(d.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-t.C:
		}
	}
	if d.Barcode == "" {
		return DemoBarcode, nil
	}
	return d.Barcode, nil
}
