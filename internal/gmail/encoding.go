package gmail

import "encoding/base64"

// DecodeBase64URL decodes URL-safe base64 as delivered by the remote
// service, accepting both padded and unpadded forms.
func DecodeBase64URL(s string) ([]byte, error) {
	if b, err := base64.URLEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.RawURLEncoding.DecodeString(s)
}

// EncodeBase64URL encodes bytes in the URL-safe base64 form the remote
// service expects for raw outgoing documents.
func EncodeBase64URL(b []byte) string {
	return base64.URLEncoding.EncodeToString(b)
}
