package axpert

// crc16 computes the CRC-16/XMODEM (poly 0x1021, init 0) used by the
// Voltronic ASCII protocol.
func crc16(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// crcBytes returns the two CRC bytes in wire order (high, low), with the
// vendor quirk applied: a CRC byte that collides with '(' (0x28), CR (0x0D)
// or LF (0x0A) is incremented so it can never be mistaken for framing.
func crcBytes(data []byte) [2]byte {
	crc := crc16(data)
	high := byte(crc >> 8)
	low := byte(crc)
	if high == 0x28 || high == 0x0d || high == 0x0a {
		high++
	}
	if low == 0x28 || low == 0x0d || low == 0x0a {
		low++
	}
	return [2]byte{high, low}
}
