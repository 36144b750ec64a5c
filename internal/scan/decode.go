package scan

import (
	"image"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// qrDecoder runs one decode pass per sampled frame.
type qrDecoder struct {
	reader gozxing.Reader
}

func newQRDecoder() *qrDecoder {
	return &qrDecoder{reader: qrcode.NewQRCodeReader()}
}

// Decode returns the text of a QR code in img, or an error when no code is
// found in this frame.
func (d *qrDecoder) Decode(img image.Image) (string, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", err
	}
	result, err := d.reader.Decode(bmp, nil)
	if err != nil {
		return "", err
	}
	return result.GetText(), nil
}
