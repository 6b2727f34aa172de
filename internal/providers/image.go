package providers

import (
	"encoding/base64"
	"net/http"
	"strings"
)

// imageDataURL encodes an image as a data URL, sniffing its MIME type.
// Unrecognized bytes are labelled image/png, the rasterizer's output format.
func imageDataURL(img []byte) string {
	mime := http.DetectContentType(img)
	if !strings.HasPrefix(mime, "image/") {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(img)
}
