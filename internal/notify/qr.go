package notify

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

const qrContentID = "confirm-qr"

// ConfirmationQR renders url as a PNG QR code attachment for inline display.
func ConfirmationQR(url string) (Attachment, error) {
	png, err := qrcode.Encode(url, qrcode.Medium, 256)
	if err != nil {
		return Attachment{}, fmt.Errorf("failed to encode QR code: %w", err)
	}
	return Attachment{
		Filename:    "confirm.png",
		ContentType: "image/png",
		ContentID:   qrContentID,
		Content:     png,
	}, nil
}
