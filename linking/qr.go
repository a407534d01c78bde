package linking

import "strings"

// EncodeQRPayload renders the QR wire format: "<parent_id>:<code>", ASCII,
// exactly one colon.
func EncodeQRPayload(parentID, code string) string {
	return parentID + ":" + code
}

// ParseQRPayload splits a QR payload into parent id and code. Anything that
// does not split on a colon into exactly two parts is malformed.
func ParseQRPayload(payload string) (parentID, code string, err error) {
	parts := strings.Split(payload, ":")
	if len(parts) != 2 {
		return "", "", ErrMalformedQRPayload
	}
	return parts[0], parts[1], nil
}
