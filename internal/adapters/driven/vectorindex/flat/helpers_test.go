package flat

import (
	"encoding/binary"
	"hash/crc32"
)

// withCRC appends a valid checksum to body.
func withCRC(body []byte) []byte {
	return binary.LittleEndian.AppendUint32(body, crc32.ChecksumIEEE(body))
}
