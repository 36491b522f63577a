package attachment

import "encoding/base64"

// EncodeImageDataURI converts raw image bytes into a self-contained
// data:<mime>;base64,<...> string. Images never travel through the
// pipeline as storage references; the provider cannot dereference those
// at generation time.
func EncodeImageDataURI(data []byte, mediaType MediaType) string {
	return "data:" + string(mediaType) + ";base64," + base64.StdEncoding.EncodeToString(data)
}
