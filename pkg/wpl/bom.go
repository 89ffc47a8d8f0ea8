package wpl

// DetectBOM reports the byte length of a byte-order mark at the start of
// data, or 0 if none is present. The 32-bit variants are checked before
// the 16-bit ones since FF FE 00 00 (UTF-32LE) shares its first two
// bytes with FF FE (UTF-16LE), and 00 00 FE FF (UTF-32BE) would
// otherwise be missed entirely by a 16-bit-first scan (P5).
func DetectBOM(b []byte) int {
	switch {
	case len(b) >= 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF:
		return 3
	case len(b) >= 4 && b[0] == 0xFF && b[1] == 0xFE && b[2] == 0x00 && b[3] == 0x00:
		return 4
	case len(b) >= 4 && b[0] == 0x00 && b[1] == 0x00 && b[2] == 0xFE && b[3] == 0xFF:
		return 4
	case len(b) >= 2 && b[0] == 0xFF && b[1] == 0xFE:
		return 2
	case len(b) >= 2 && b[0] == 0xFE && b[1] == 0xFF:
		return 2
	default:
		return 0
	}
}

// StripBOM removes a leading BOM from data, if any. It is idempotent
// (L2): a second call on the already-stripped result is a no-op since
// DetectBOM returns 0 once the mark is gone.
func StripBOM(data []byte) []byte {
	if n := DetectBOM(data); n > 0 {
		return data[n:]
	}
	return data
}
